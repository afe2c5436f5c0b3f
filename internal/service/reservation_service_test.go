package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go-ticket-core/internal/model"
	"go-ticket-core/internal/queue"
	apperrors "go-ticket-core/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInventory struct {
	mu    sync.Mutex
	units map[int]int
}

func newFakeInventory(initial map[int]int) *fakeInventory {
	units := make(map[int]int, len(initial))
	for id, n := range initial {
		units[id] = n
	}
	return &fakeInventory{units: units}
}

func (f *fakeInventory) WarmUpInventory(ctx context.Context, capacityID int, units int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.units[capacityID] = units
	return nil
}

func (f *fakeInventory) GetUnits(ctx context.Context, capacityID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.units[capacityID]
	if !ok {
		return -1, apperrors.ErrCapacityNotFound
	}
	return n, nil
}

func (f *fakeInventory) DecrementUnits(ctx context.Context, capacityID int, units int) (bool, error) {
	if units <= 0 {
		return false, apperrors.ErrInvalidQuantity
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.units[capacityID]
	if !ok {
		return false, apperrors.ErrCapacityNotFound
	}
	if n < units {
		return false, nil
	}
	f.units[capacityID] = n - units
	return true, nil
}

func (f *fakeInventory) RollbackUnits(ctx context.Context, capacityID int, units int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.units[capacityID] += units
	return nil
}

type failingQueue struct {
	err error
}

func (q *failingQueue) PublishReservation(ctx context.Context, pending *queue.PendingReservation) error {
	return q.err
}

func (q *failingQueue) SubscribeReservations(ctx context.Context) (<-chan queue.Delivery, error) {
	return nil, q.err
}

func TestReservationService_PrepareReservation(t *testing.T) {
	ctx := context.Background()

	req := model.ReservationRequest{
		OwnerID:    1,
		OwnerKey:   uuid.New().String(),
		OfferID:    1,
		CapacityID: 1,
		Units:      2,
	}

	t.Run("takes cached units and queues the request", func(t *testing.T) {
		inventory := newFakeInventory(map[int]int{1: 10})
		q := queue.NewMemoryReservationQueue(4)
		svc := NewReservationService(nil, nil, nil, nil, inventory, q)

		pending, err := svc.PrepareReservation(ctx, req)
		require.NoError(t, err)
		assert.NotEmpty(t, pending.RequestID)
		assert.Equal(t, req.Units, pending.Units)

		units, err := inventory.GetUnits(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 8, units)
	})

	t.Run("insufficient cached units", func(t *testing.T) {
		inventory := newFakeInventory(map[int]int{1: 1})
		q := queue.NewMemoryReservationQueue(4)
		svc := NewReservationService(nil, nil, nil, nil, inventory, q)

		_, err := svc.PrepareReservation(ctx, req)
		assert.ErrorIs(t, err, apperrors.ErrInsufficientCapacity)

		// Nothing was taken.
		units, err := inventory.GetUnits(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, units)
	})

	t.Run("rolls the cache back when publish fails", func(t *testing.T) {
		inventory := newFakeInventory(map[int]int{1: 10})
		q := &failingQueue{err: errors.New("broker down")}
		svc := NewReservationService(nil, nil, nil, nil, inventory, q)

		_, err := svc.PrepareReservation(ctx, req)
		assert.ErrorIs(t, err, apperrors.ErrInternalServerError)

		units, err := inventory.GetUnits(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 10, units)
	})

	t.Run("rejects bad input before touching the cache", func(t *testing.T) {
		inventory := newFakeInventory(map[int]int{1: 10})
		q := queue.NewMemoryReservationQueue(4)
		svc := NewReservationService(nil, nil, nil, nil, inventory, q)

		bad := req
		bad.Units = 0
		_, err := svc.PrepareReservation(ctx, bad)
		assert.ErrorIs(t, err, apperrors.ErrInvalidQuantity)

		bad = req
		bad.OwnerKey = ""
		_, err = svc.PrepareReservation(ctx, bad)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}
