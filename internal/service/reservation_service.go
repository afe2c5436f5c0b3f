package service

import (
	"context"
	"errors"

	"go-ticket-core/internal/cache"
	"go-ticket-core/internal/model"
	"go-ticket-core/internal/queue"
	"go-ticket-core/internal/repository"
	apperrors "go-ticket-core/pkg/app_errors"
	"go-ticket-core/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ReservationService is the purchase pipeline. PrepareReservation takes units
// from the Redis inventory and queues the request; DispatchReservation, run by
// the worker, settles it against Postgres and issues the ticket.
type ReservationService interface {
	PrepareReservation(ctx context.Context, req model.ReservationRequest) (*queue.PendingReservation, error)
	DispatchReservation(ctx context.Context, pending *queue.PendingReservation) error
	GetByRequestID(ctx context.Context, requestID string) (*model.ReservationRecord, error)
}

type ReservationServiceImpl struct {
	pool             *pgxpool.Pool
	repo             repository.ReservationRepository
	ledger           CapacityLedger
	tickets          TicketService
	inventoryManager cache.CapacityInventoryManager
	reservationQueue queue.ReservationQueue
}

func NewReservationService(
	pool *pgxpool.Pool,
	repo repository.ReservationRepository,
	ledger CapacityLedger,
	tickets TicketService,
	inventoryManager cache.CapacityInventoryManager,
	reservationQueue queue.ReservationQueue,
) ReservationService {
	return &ReservationServiceImpl{
		pool:             pool,
		repo:             repo,
		ledger:           ledger,
		tickets:          tickets,
		inventoryManager: inventoryManager,
		reservationQueue: reservationQueue,
	}
}

func (s *ReservationServiceImpl) PrepareReservation(ctx context.Context, req model.ReservationRequest) (*queue.PendingReservation, error) {
	if req.Units <= 0 {
		return nil, apperrors.ErrInvalidQuantity
	}
	if req.OwnerKey == "" {
		return nil, apperrors.ErrInvalidInput
	}

	ok, err := s.inventoryManager.DecrementUnits(ctx, req.CapacityID, req.Units)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrInsufficientCapacity
	}

	pending := &queue.PendingReservation{
		RequestID:  uuid.New().String(),
		OwnerID:    req.OwnerID,
		OwnerKey:   req.OwnerKey,
		OfferID:    req.OfferID,
		CapacityID: req.CapacityID,
		Units:      req.Units,
	}

	if err := s.reservationQueue.PublishReservation(ctx, pending); err != nil {
		logger.WithComponent("reservation").Error("publish reservation failed", zap.Error(err))
		// The cached units were taken but the request will never be
		// dispatched; put them back no matter what happens to ctx.
		if rbErr := s.inventoryManager.RollbackUnits(context.Background(), req.CapacityID, req.Units); rbErr != nil {
			logger.WithComponent("reservation").Error("inventory rollback failed",
				zap.Int("capacity_id", req.CapacityID),
				zap.Int("units", req.Units),
				zap.Error(rbErr),
			)
		}
		return nil, apperrors.ErrInternalServerError
	}

	return pending, nil
}

// DispatchReservation settles one queued request in a single transaction:
// reservation row, conditional capacity decrement, ticket insert. A request
// already settled under its request_id is acked as done, which makes
// redelivery harmless.
func (s *ReservationServiceImpl) DispatchReservation(ctx context.Context, pending *queue.PendingReservation) error {
	existing, err := s.repo.FindByRequestID(ctx, pending.RequestID)
	if err != nil && !errors.Is(err, apperrors.ErrReservationNotFound) {
		return err
	}
	if existing != nil {
		return nil
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	record := &model.ReservationRecord{
		RequestID:  pending.RequestID,
		OwnerID:    pending.OwnerID,
		OwnerKey:   pending.OwnerKey,
		OfferID:    pending.OfferID,
		CapacityID: pending.CapacityID,
		Units:      pending.Units,
		Status:     model.ReservationStatusPending,
	}

	record, err = s.repo.Create(ctx, tx, record)
	if err != nil {
		return err
	}

	_, err = s.ledger.ReserveTx(ctx, tx, pending.CapacityID, pending.Units)
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientCapacity) {
			// The cache overcommitted (warm-up drift, manual capacity edits).
			// Record the failure; no units were taken, nothing to release.
			logger.WithComponent("reservation").Warn("capacity exhausted at dispatch",
				zap.String("request_id", pending.RequestID),
				zap.Int("capacity_id", pending.CapacityID),
			)
			if err := s.repo.UpdateStatus(ctx, tx, record.ID, model.ReservationStatusFailed); err != nil {
				return err
			}
			return tx.Commit(ctx)
		}
		return err
	}

	if _, err := s.tickets.IssueTicket(ctx, tx, pending.OwnerID, pending.OwnerKey, pending.OfferID); err != nil {
		return err
	}

	if err := s.repo.UpdateStatus(ctx, tx, record.ID, model.ReservationStatusFulfilled); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *ReservationServiceImpl) GetByRequestID(ctx context.Context, requestID string) (*model.ReservationRecord, error) {
	return s.repo.FindByRequestID(ctx, requestID)
}
