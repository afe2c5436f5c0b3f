package queue

import (
	"context"
)

// PendingReservation travels from the purchase endpoint to the dispatch
// worker. RequestID is assigned at prepare time and keeps the dispatch
// idempotent across redeliveries.
type PendingReservation struct {
	RequestID  string `json:"request_id"`
	OwnerID    int    `json:"owner_id"`
	OwnerKey   string `json:"owner_key"`
	OfferID    int    `json:"offer_id"`
	CapacityID int    `json:"capacity_id"`
	Units      int    `json:"units"`
}

type Delivery struct {
	Data *PendingReservation
	Ack  func()
	Nack func(requeue bool)
}

type ReservationQueue interface {
	PublishReservation(ctx context.Context, pending *PendingReservation) error
	SubscribeReservations(ctx context.Context) (<-chan Delivery, error)
}

// MemoryReservationQueue backs the queue with a Go channel, for tests and
// single-process deployments.
type MemoryReservationQueue struct {
	ch chan *PendingReservation
}

func NewMemoryReservationQueue(bufferSize int) ReservationQueue {
	return &MemoryReservationQueue{
		ch: make(chan *PendingReservation, bufferSize),
	}
}

func (q *MemoryReservationQueue) PublishReservation(ctx context.Context, pending *PendingReservation) error {
	select {
	case q.ch <- pending:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryReservationQueue) SubscribeReservations(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case pending, ok := <-q.ch:
				if !ok {
					return
				}

				out <- Delivery{
					Data: pending,
					Ack:  func() {},
					Nack: func(requeue bool) {
						if requeue {
							q.ch <- pending
						}
					},
				}
			}
		}
	}()

	return out, nil
}
