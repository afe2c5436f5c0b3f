package worker

import (
	"context"

	"go-ticket-core/internal/queue"
	"go-ticket-core/internal/service"
	"go-ticket-core/pkg/logger"

	"go.uber.org/zap"
)

// ReservationWorker drains the reservation queue and settles each request
// against the database.
type ReservationWorker interface {
	Start(ctx context.Context) error
}

type ReservationWorkerImpl struct {
	service service.ReservationService
	queue   queue.ReservationQueue
}

func NewReservationWorker(service service.ReservationService, queue queue.ReservationQueue) ReservationWorker {
	return &ReservationWorkerImpl{
		service: service,
		queue:   queue,
	}
}

func (w *ReservationWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.SubscribeReservations(ctx)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			err := w.service.DispatchReservation(ctx, msg.Data)
			if err != nil {
				// Transient store trouble: leave it for the retry path.
				logger.WithComponent("worker").Warn("dispatch failed, requeueing",
					zap.String("request_id", msg.Data.RequestID),
					zap.Error(err),
				)
				msg.Nack(true)
			} else {
				msg.Ack()
			}
		}
	}()
	return nil
}
