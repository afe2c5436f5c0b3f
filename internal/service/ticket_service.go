package service

import (
	"context"
	"fmt"

	"go-ticket-core/internal/model"
	"go-ticket-core/internal/repository"
	apperrors "go-ticket-core/pkg/app_errors"
	"go-ticket-core/pkg/clock"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TicketService issues tickets and guards them against replay at the gate.
type TicketService interface {
	// IssueTicket creates the ticket inside a caller-owned transaction so it
	// commits together with the capacity decrement it proves.
	IssueTicket(ctx context.Context, tx pgx.Tx, ownerID int, ownerKey string, offerID int) (*model.Ticket, error)

	// VerifyAndScan flips scanned exactly once. Of two concurrent scans on
	// the same key one wins and gets the ticket, the other gets an
	// AlreadyScannedError carrying the winner's scan time.
	VerifyAndScan(ctx context.Context, finalKey string) (*model.Ticket, error)

	GetByFinalKey(ctx context.Context, finalKey string) (*model.Ticket, error)
	ListValidKeys(ctx context.Context) ([]string, error)
}

type TicketServiceImpl struct {
	pool  *pgxpool.Pool
	repo  repository.TicketRepository
	clock clock.Clock
}

func NewTicketService(pool *pgxpool.Pool, repo repository.TicketRepository, clk clock.Clock) TicketService {
	return &TicketServiceImpl{
		pool:  pool,
		repo:  repo,
		clock: clk,
	}
}

// BuildFinalKey derives the unique ticket key from the owner key and a fresh
// purchase key.
func BuildFinalKey(ownerKey string) string {
	return fmt.Sprintf("%s-%s", ownerKey, uuid.New().String())
}

func (s *TicketServiceImpl) IssueTicket(ctx context.Context, tx pgx.Tx, ownerID int, ownerKey string, offerID int) (*model.Ticket, error) {
	if ownerKey == "" {
		return nil, apperrors.ErrInvalidInput
	}

	ticket := &model.Ticket{
		FinalKey:    BuildFinalKey(ownerKey),
		OwnerID:     ownerID,
		OfferID:     offerID,
		PurchasedAt: s.clock.Now(),
	}

	return s.repo.Create(ctx, tx, ticket)
}

func (s *TicketServiceImpl) VerifyAndScan(ctx context.Context, finalKey string) (*model.Ticket, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Row lock, check and write happen in one transaction: the second of two
	// concurrent scans blocks on the lock and then observes scanned = true.
	ticket, err := s.repo.FindByFinalKeyWithLock(ctx, tx, finalKey)
	if err != nil {
		return nil, err
	}

	if ticket.Scanned {
		scannedAt := s.clock.Now()
		if ticket.ScannedAt != nil {
			scannedAt = *ticket.ScannedAt
		}
		return nil, &apperrors.AlreadyScannedError{
			FinalKey:  finalKey,
			ScannedAt: scannedAt,
		}
	}

	now := s.clock.Now()
	if err := s.repo.MarkScanned(ctx, tx, ticket.ID, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	ticket.Scanned = true
	ticket.ScannedAt = &now
	return ticket, nil
}

func (s *TicketServiceImpl) GetByFinalKey(ctx context.Context, finalKey string) (*model.Ticket, error) {
	return s.repo.FindByFinalKey(ctx, finalKey)
}

func (s *TicketServiceImpl) ListValidKeys(ctx context.Context) ([]string, error) {
	return s.repo.ListValidKeys(ctx)
}
