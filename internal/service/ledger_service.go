package service

import (
	"context"
	"errors"

	"go-ticket-core/internal/model"
	"go-ticket-core/internal/repository"
	apperrors "go-ticket-core/pkg/app_errors"
	"go-ticket-core/pkg/clock"

	"github.com/jackc/pgx/v5"
)

// CapacityLedger is the only writer of available_units. Reserve and Release
// go through the conditional statements in the repository; there is no
// pessimistic locking on the hot path.
type CapacityLedger interface {
	Reserve(ctx context.Context, capacityID int, units int) (*model.Reservation, error)
	// ReserveTx is Reserve inside a caller-owned transaction, used by the
	// dispatch flow so the decrement commits together with the ticket insert.
	ReserveTx(ctx context.Context, tx pgx.Tx, capacityID int, units int) (*model.Reservation, error)
	// Release compensates a reservation that failed downstream. Calling it at
	// most once per successful reservation is the caller's responsibility.
	Release(ctx context.Context, capacityID int, units int) error
}

type CapacityLedgerImpl struct {
	repo  repository.CapacityRepository
	clock clock.Clock
}

func NewCapacityLedger(repo repository.CapacityRepository, clk clock.Clock) CapacityLedger {
	return &CapacityLedgerImpl{
		repo:  repo,
		clock: clk,
	}
}

func (l *CapacityLedgerImpl) Reserve(ctx context.Context, capacityID int, units int) (*model.Reservation, error) {
	ok, err := l.repo.TryDecrementUnits(ctx, capacityID, units)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, l.rejectReserve(ctx, capacityID, units)
	}

	remaining, err := l.repo.GetAvailableUnits(ctx, capacityID)
	if err != nil {
		// The decrement went through; remaining is diagnostics only.
		remaining = -1
	}

	return &model.Reservation{
		CapacityID: capacityID,
		Units:      units,
		Remaining:  remaining,
		ReservedAt: l.clock.Now(),
	}, nil
}

func (l *CapacityLedgerImpl) ReserveTx(ctx context.Context, tx pgx.Tx, capacityID int, units int) (*model.Reservation, error) {
	ok, err := l.repo.TryDecrementUnitsTx(ctx, tx, capacityID, units)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, l.rejectReserve(ctx, capacityID, units)
	}

	return &model.Reservation{
		CapacityID: capacityID,
		Units:      units,
		Remaining:  -1,
		ReservedAt: l.clock.Now(),
	}, nil
}

// rejectReserve turns a failed conditional decrement into the right error:
// an unknown id is NotFound, a known id is exhausted capacity with the
// current count attached.
func (l *CapacityLedgerImpl) rejectReserve(ctx context.Context, capacityID int, units int) error {
	available, err := l.repo.GetAvailableUnits(ctx, capacityID)
	if err != nil {
		if errors.Is(err, apperrors.ErrCapacityNotFound) {
			return apperrors.ErrCapacityNotFound
		}
		return err
	}

	return &apperrors.InsufficientCapacityError{
		CapacityID: capacityID,
		Requested:  units,
		Available:  available,
	}
}

func (l *CapacityLedgerImpl) Release(ctx context.Context, capacityID int, units int) error {
	return l.repo.IncrementUnits(ctx, capacityID, units)
}
