package service

import (
	"context"

	"go-ticket-core/internal/repository"
	"go-ticket-core/pkg/clock"
)

// OfferExpiryService transitions offers AVAILABLE to EXPIRED once their own
// deadline or their capacity's scheduled date has passed. Expiry gates
// saleability only; it never touches quantities.
type OfferExpiryService interface {
	SweepExpiredOffers(ctx context.Context) (int64, error)
}

type OfferExpiryServiceImpl struct {
	repo  repository.OfferRepository
	clock clock.Clock
}

func NewOfferExpiryService(repo repository.OfferRepository, clk clock.Clock) OfferExpiryService {
	return &OfferExpiryServiceImpl{
		repo:  repo,
		clock: clk,
	}
}

func (s *OfferExpiryServiceImpl) SweepExpiredOffers(ctx context.Context) (int64, error) {
	return s.repo.MarkExpired(ctx, s.clock.Now())
}
