package repository

import (
	"context"
	"errors"
	"time"

	"go-ticket-core/internal/model"
	apperrors "go-ticket-core/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepository interface {
	FindByFinalKey(ctx context.Context, finalKey string) (*model.Ticket, error)
	ListValidKeys(ctx context.Context) ([]string, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, ticket *model.Ticket) (*model.Ticket, error)
	FindByFinalKeyWithLock(ctx context.Context, tx pgx.Tx, finalKey string) (*model.Ticket, error)
	MarkScanned(ctx context.Context, tx pgx.Tx, id int, at time.Time) error
}

type TicketRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &TicketRepositoryImpl{
		pool: pool,
	}
}

func (r *TicketRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, ticket *model.Ticket) (*model.Ticket, error) {
	query := `
		INSERT INTO tickets (final_key, owner_id, offer_id, scanned, purchased_at)
		VALUES ($1, $2, $3, FALSE, $4)
		RETURNING id, final_key, owner_id, offer_id, scanned, scanned_at, purchased_at
	`

	err := tx.QueryRow(ctx, query,
		ticket.FinalKey, ticket.OwnerID, ticket.OfferID, ticket.PurchasedAt,
	).Scan(
		&ticket.ID,
		&ticket.FinalKey,
		&ticket.OwnerID,
		&ticket.OfferID,
		&ticket.Scanned,
		&ticket.ScannedAt,
		&ticket.PurchasedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrInvalidInput
		}
		return nil, err
	}

	return ticket, nil
}

func (r *TicketRepositoryImpl) FindByFinalKey(ctx context.Context, finalKey string) (*model.Ticket, error) {
	query := `
		SELECT id, final_key, owner_id, offer_id, scanned, scanned_at, purchased_at
		FROM tickets
		WHERE final_key = $1
	`

	var ticket model.Ticket
	err := r.pool.QueryRow(ctx, query, finalKey).Scan(
		&ticket.ID,
		&ticket.FinalKey,
		&ticket.OwnerID,
		&ticket.OfferID,
		&ticket.Scanned,
		&ticket.ScannedAt,
		&ticket.PurchasedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}

	return &ticket, nil
}

func (r *TicketRepositoryImpl) FindByFinalKeyWithLock(ctx context.Context, tx pgx.Tx, finalKey string) (*model.Ticket, error) {
	query := `
		SELECT id, final_key, owner_id, offer_id, scanned, scanned_at, purchased_at
		FROM tickets
		WHERE final_key = $1
		FOR UPDATE
	`

	var ticket model.Ticket
	err := tx.QueryRow(ctx, query, finalKey).Scan(
		&ticket.ID,
		&ticket.FinalKey,
		&ticket.OwnerID,
		&ticket.OfferID,
		&ticket.Scanned,
		&ticket.ScannedAt,
		&ticket.PurchasedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}

	return &ticket, nil
}

func (r *TicketRepositoryImpl) MarkScanned(ctx context.Context, tx pgx.Tx, id int, at time.Time) error {
	query := `
		UPDATE tickets
		SET scanned = TRUE, scanned_at = $1
		WHERE id = $2
	`

	result, err := tx.Exec(ctx, query, at, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrTicketNotFound
	}

	return nil
}

// ListValidKeys returns the final keys of all unscanned tickets, for the
// offline gate-scanner sync.
func (r *TicketRepositoryImpl) ListValidKeys(ctx context.Context) ([]string, error) {
	query := `SELECT final_key FROM tickets WHERE scanned = FALSE`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return keys, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
