package repository

import (
	"context"
	"time"

	"go-ticket-core/internal/model"
	apperrors "go-ticket-core/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReservationRepository interface {
	FindByRequestID(ctx context.Context, requestID string) (*model.ReservationRecord, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, record *model.ReservationRecord) (*model.ReservationRecord, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id int, status model.ReservationStatus) error
}

type ReservationRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) ReservationRepository {
	return &ReservationRepositoryImpl{
		pool: pool,
	}
}

func (r *ReservationRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, record *model.ReservationRecord) (*model.ReservationRecord, error) {
	query := `
		INSERT INTO reservations (request_id, owner_id, owner_key, offer_id, capacity_id, units, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, request_id, owner_id, owner_key, offer_id, capacity_id, units, status, created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		record.RequestID, record.OwnerID, record.OwnerKey,
		record.OfferID, record.CapacityID, record.Units, record.Status,
	).Scan(
		&record.ID,
		&record.RequestID,
		&record.OwnerID,
		&record.OwnerKey,
		&record.OfferID,
		&record.CapacityID,
		&record.Units,
		&record.Status,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return record, nil
}

func (r *ReservationRepositoryImpl) FindByRequestID(ctx context.Context, requestID string) (*model.ReservationRecord, error) {
	query := `
		SELECT id, request_id, owner_id, owner_key, offer_id, capacity_id, units, status, created_at, updated_at
		FROM reservations
		WHERE request_id = $1
	`

	var record model.ReservationRecord
	err := r.pool.QueryRow(ctx, query, requestID).Scan(
		&record.ID,
		&record.RequestID,
		&record.OwnerID,
		&record.OwnerKey,
		&record.OfferID,
		&record.CapacityID,
		&record.Units,
		&record.Status,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrReservationNotFound
		}
		return nil, err
	}

	return &record, nil
}

func (r *ReservationRepositoryImpl) UpdateStatus(ctx context.Context, tx pgx.Tx, id int, status model.ReservationStatus) error {
	query := `
		UPDATE reservations
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := tx.Exec(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrReservationNotFound
	}

	return nil
}
