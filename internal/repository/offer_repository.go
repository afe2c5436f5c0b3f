package repository

import (
	"context"
	"time"

	"go-ticket-core/internal/model"
	apperrors "go-ticket-core/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OfferRepository interface {
	Create(ctx context.Context, offer *model.Offer) (*model.Offer, error)
	FindByID(ctx context.Context, id int) (*model.Offer, error)
	ListByStatus(ctx context.Context, status model.OfferStatus) ([]*model.Offer, error)

	// MarkExpired is the sweep statement: one bulk conditional update over
	// both expiry conditions. Rows already EXPIRED are excluded by the
	// predicate, so re-running it is free.
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
}

type OfferRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewOfferRepository(pool *pgxpool.Pool) OfferRepository {
	return &OfferRepositoryImpl{
		pool: pool,
	}
}

func (r *OfferRepositoryImpl) Create(ctx context.Context, offer *model.Offer) (*model.Offer, error) {
	query := `
		INSERT INTO offers (offer_id, capacity_id, name, price, remaining_quantity, expires_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, offer_id, capacity_id, name, price, remaining_quantity, expires_at, status, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		offer.OfferID, offer.CapacityID, offer.Name, offer.Price,
		offer.RemainingQuantity, offer.ExpiresAt, offer.Status,
	).Scan(
		&offer.ID,
		&offer.OfferID,
		&offer.CapacityID,
		&offer.Name,
		&offer.Price,
		&offer.RemainingQuantity,
		&offer.ExpiresAt,
		&offer.Status,
		&offer.CreatedAt,
		&offer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return offer, nil
}

func (r *OfferRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Offer, error) {
	query := `
		SELECT id, offer_id, capacity_id, name, price, remaining_quantity, expires_at, status, created_at, updated_at
		FROM offers
		WHERE id = $1
	`

	var offer model.Offer
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&offer.ID,
		&offer.OfferID,
		&offer.CapacityID,
		&offer.Name,
		&offer.Price,
		&offer.RemainingQuantity,
		&offer.ExpiresAt,
		&offer.Status,
		&offer.CreatedAt,
		&offer.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrOfferNotFound
		}
		return nil, err
	}

	return &offer, nil
}

func (r *OfferRepositoryImpl) ListByStatus(ctx context.Context, status model.OfferStatus) ([]*model.Offer, error) {
	query := `
		SELECT id, offer_id, capacity_id, name, price, remaining_quantity, expires_at, status, created_at, updated_at
		FROM offers
		WHERE status = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	offers := make([]*model.Offer, 0)
	for rows.Next() {
		var offer model.Offer
		err := rows.Scan(
			&offer.ID,
			&offer.OfferID,
			&offer.CapacityID,
			&offer.Name,
			&offer.Price,
			&offer.RemainingQuantity,
			&offer.ExpiresAt,
			&offer.Status,
			&offer.CreatedAt,
			&offer.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		offers = append(offers, &offer)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return offers, nil
}

func (r *OfferRepositoryImpl) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	// An offer cannot outlive the occurrence it grants access to, so the
	// capacity's scheduled date expires it as well as its own deadline.
	query := `
		UPDATE offers
		SET status = $1, updated_at = $2
		FROM capacities
		WHERE offers.capacity_id = capacities.id
		  AND offers.status = $3
		  AND (offers.expires_at < $4 OR capacities.scheduled_at < $4)
	`

	result, err := r.pool.Exec(ctx, query,
		model.OfferStatusExpired, now, model.OfferStatusAvailable, now,
	)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected(), nil
}
