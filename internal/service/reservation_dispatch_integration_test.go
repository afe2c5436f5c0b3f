package service

import (
	"context"
	"testing"
	"time"

	"go-ticket-core/internal/model"
	"go-ticket-core/internal/queue"
	"go-ticket-core/internal/repository"
	"go-ticket-core/internal/testutil"
	apperrors "go-ticket-core/pkg/app_errors"
	"go-ticket-core/pkg/clock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservationService_DispatchReservation(t *testing.T) {
	ctx := context.Background()

	pool := testutil.NewTestPool(t)
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	capRepo := repository.NewCapacityRepository(pool)
	clk := clock.NewSystem()
	ledger := NewCapacityLedger(capRepo, clk)
	tickets := NewTicketService(pool, repository.NewTicketRepository(pool), clk)
	svc := NewReservationService(pool, repository.NewReservationRepository(pool), ledger, tickets, nil, nil)

	capacityID := testutil.InsertCapacity(t, ctx, pool, "Main Hall", time.Now().Add(48*time.Hour).UTC(), 3)
	offerID := testutil.InsertOffer(t, ctx, pool, capacityID, "Solo", time.Now().Add(24*time.Hour).UTC(), model.OfferStatusAvailable)

	pendingFor := func(units int) *queue.PendingReservation {
		return &queue.PendingReservation{
			RequestID:  uuid.New().String(),
			OwnerID:    1,
			OwnerKey:   "owner-key-abc",
			OfferID:    offerID,
			CapacityID: capacityID,
			Units:      units,
		}
	}

	t.Run("fulfills and issues a ticket", func(t *testing.T) {
		pending := pendingFor(2)
		require.NoError(t, svc.DispatchReservation(ctx, pending))

		record, err := svc.GetByRequestID(ctx, pending.RequestID)
		require.NoError(t, err)
		assert.Equal(t, model.ReservationStatusFulfilled, record.Status)

		available, err := capRepo.GetAvailableUnits(ctx, capacityID)
		require.NoError(t, err)
		assert.Equal(t, 1, available)
	})

	t.Run("marks the request failed when capacity ran out", func(t *testing.T) {
		pending := pendingFor(5)
		require.NoError(t, svc.DispatchReservation(ctx, pending))

		record, err := svc.GetByRequestID(ctx, pending.RequestID)
		require.NoError(t, err)
		assert.Equal(t, model.ReservationStatusFailed, record.Status)

		// The failed request took nothing.
		available, err := capRepo.GetAvailableUnits(ctx, capacityID)
		require.NoError(t, err)
		assert.Equal(t, 1, available)
	})

	t.Run("redelivery of a settled request is a no-op", func(t *testing.T) {
		pending := pendingFor(1)
		require.NoError(t, svc.DispatchReservation(ctx, pending))
		require.NoError(t, svc.DispatchReservation(ctx, pending))

		available, err := capRepo.GetAvailableUnits(ctx, capacityID)
		require.NoError(t, err)
		assert.Equal(t, 0, available)
	})

	t.Run("unknown request id", func(t *testing.T) {
		_, err := svc.GetByRequestID(ctx, uuid.New().String())
		assert.ErrorIs(t, err, apperrors.ErrReservationNotFound)
	})
}
