package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go-ticket-core/internal/model"
	"go-ticket-core/internal/queue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReservationService struct {
	mu       sync.Mutex
	seen     []string
	failures map[string]int // request id -> remaining failures
}

func (f *fakeReservationService) PrepareReservation(ctx context.Context, req model.ReservationRequest) (*queue.PendingReservation, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeReservationService) DispatchReservation(ctx context.Context, pending *queue.PendingReservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, pending.RequestID)
	if f.failures[pending.RequestID] > 0 {
		f.failures[pending.RequestID]--
		return errors.New("transient store failure")
	}
	return nil
}

func (f *fakeReservationService) GetByRequestID(ctx context.Context, requestID string) (*model.ReservationRecord, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeReservationService) dispatchCount(requestID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, id := range f.seen {
		if id == requestID {
			n++
		}
	}
	return n
}

func TestReservationWorker_DispatchesAndAcks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := &fakeReservationService{failures: map[string]int{}}
	q := queue.NewMemoryReservationQueue(4)

	w := NewReservationWorker(svc, q)
	require.NoError(t, w.Start(ctx))

	require.NoError(t, q.PublishReservation(ctx, &queue.PendingReservation{RequestID: "req-ok", Units: 1}))

	assert.Eventually(t, func() bool {
		return svc.dispatchCount("req-ok") == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestReservationWorker_RetriesFailedDispatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// First attempt fails, the nack requeues, the retry succeeds.
	svc := &fakeReservationService{failures: map[string]int{"req-flaky": 1}}
	q := queue.NewMemoryReservationQueue(4)

	w := NewReservationWorker(svc, q)
	require.NoError(t, w.Start(ctx))

	require.NoError(t, q.PublishReservation(ctx, &queue.PendingReservation{RequestID: "req-flaky", Units: 1}))

	assert.Eventually(t, func() bool {
		return svc.dispatchCount("req-flaky") == 2
	}, 2*time.Second, 10*time.Millisecond)
}
