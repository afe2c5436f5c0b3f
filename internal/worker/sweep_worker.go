package worker

import (
	"context"
	"time"

	"go-ticket-core/internal/service"
	"go-ticket-core/pkg/logger"

	"go.uber.org/zap"
)

// SweepWorker periodically expires offers and purges dead tokens. Both sweeps
// are idempotent bulk statements, so overlapping runs from several instances
// are safe.
type SweepWorker interface {
	Start(ctx context.Context)
	RunOnce(ctx context.Context)
}

type SweepWorkerImpl struct {
	expiry   service.OfferExpiryService
	tokens   service.TokenService
	interval time.Duration
}

func NewSweepWorker(expiry service.OfferExpiryService, tokens service.TokenService, interval time.Duration) SweepWorker {
	return &SweepWorkerImpl{
		expiry:   expiry,
		tokens:   tokens,
		interval: interval,
	}
}

func (w *SweepWorkerImpl) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.RunOnce(ctx)
			}
		}
	}()
}

func (w *SweepWorkerImpl) RunOnce(ctx context.Context) {
	log := logger.WithComponent("sweeper")

	expired, err := w.expiry.SweepExpiredOffers(ctx)
	if err != nil {
		log.Error("offer expiry sweep failed", zap.Error(err))
	} else if expired > 0 {
		log.Info("offers expired", zap.Int64("count", expired))
	}

	purged, err := w.tokens.PurgeExpired(ctx)
	if err != nil {
		log.Error("token purge failed", zap.Error(err))
	} else if purged > 0 {
		log.Info("tokens purged", zap.Int64("count", purged))
	}
}
