package repository

import (
	"context"
	"time"

	"go-ticket-core/internal/model"
	apperrors "go-ticket-core/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CapacityRepository interface {
	Create(ctx context.Context, capacity *model.Capacity) (*model.Capacity, error)
	FindByID(ctx context.Context, id int) (*model.Capacity, error)
	GetAvailableUnits(ctx context.Context, id int) (int, error)

	// TryDecrementUnits is a single conditional statement: it succeeds iff the
	// row still holds at least n units at the moment of the update. There is
	// no read-then-write window for concurrent callers to race through.
	TryDecrementUnits(ctx context.Context, id int, n int) (bool, error)
	IncrementUnits(ctx context.Context, id int, n int) error

	// Transaction methods
	TryDecrementUnitsTx(ctx context.Context, tx pgx.Tx, id int, n int) (bool, error)
	IncrementUnitsTx(ctx context.Context, tx pgx.Tx, id int, n int) error
}

type CapacityRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewCapacityRepository(pool *pgxpool.Pool) CapacityRepository {
	return &CapacityRepositoryImpl{
		pool: pool,
	}
}

func (r *CapacityRepositoryImpl) Create(ctx context.Context, capacity *model.Capacity) (*model.Capacity, error) {
	query := `
		INSERT INTO capacities (capacity_id, name, scheduled_at, total_units, available_units)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, capacity_id, name, scheduled_at, total_units, available_units, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		capacity.CapacityID, capacity.Name, capacity.ScheduledAt,
		capacity.TotalUnits, capacity.AvailableUnits,
	).Scan(
		&capacity.ID,
		&capacity.CapacityID,
		&capacity.Name,
		&capacity.ScheduledAt,
		&capacity.TotalUnits,
		&capacity.AvailableUnits,
		&capacity.CreatedAt,
		&capacity.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return capacity, nil
}

func (r *CapacityRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Capacity, error) {
	query := `
		SELECT id, capacity_id, name, scheduled_at, total_units, available_units, created_at, updated_at
		FROM capacities
		WHERE id = $1
	`

	var capacity model.Capacity
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&capacity.ID,
		&capacity.CapacityID,
		&capacity.Name,
		&capacity.ScheduledAt,
		&capacity.TotalUnits,
		&capacity.AvailableUnits,
		&capacity.CreatedAt,
		&capacity.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrCapacityNotFound
		}
		return nil, err
	}

	return &capacity, nil
}

func (r *CapacityRepositoryImpl) GetAvailableUnits(ctx context.Context, id int) (int, error) {
	query := `SELECT available_units FROM capacities WHERE id = $1`

	var units int
	err := r.pool.QueryRow(ctx, query, id).Scan(&units)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, apperrors.ErrCapacityNotFound
		}
		return 0, err
	}

	return units, nil
}

func (r *CapacityRepositoryImpl) TryDecrementUnits(ctx context.Context, id int, n int) (bool, error) {
	if n <= 0 {
		return false, apperrors.ErrInvalidQuantity
	}

	query := `
		UPDATE capacities
		SET available_units = available_units - $1, updated_at = $2
		WHERE id = $3 AND available_units >= $1
	`

	result, err := r.pool.Exec(ctx, query, n, time.Now().UTC(), id)
	if err != nil {
		return false, err
	}

	return result.RowsAffected() > 0, nil
}

func (r *CapacityRepositoryImpl) IncrementUnits(ctx context.Context, id int, n int) error {
	if n <= 0 {
		return apperrors.ErrInvalidQuantity
	}

	query := `
		UPDATE capacities
		SET available_units = available_units + $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.pool.Exec(ctx, query, n, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrCapacityNotFound
	}

	return nil
}

func (r *CapacityRepositoryImpl) TryDecrementUnitsTx(ctx context.Context, tx pgx.Tx, id int, n int) (bool, error) {
	if n <= 0 {
		return false, apperrors.ErrInvalidQuantity
	}

	query := `
		UPDATE capacities
		SET available_units = available_units - $1, updated_at = $2
		WHERE id = $3 AND available_units >= $1
	`

	result, err := tx.Exec(ctx, query, n, time.Now().UTC(), id)
	if err != nil {
		return false, err
	}

	return result.RowsAffected() > 0, nil
}

func (r *CapacityRepositoryImpl) IncrementUnitsTx(ctx context.Context, tx pgx.Tx, id int, n int) error {
	if n <= 0 {
		return apperrors.ErrInvalidQuantity
	}

	query := `
		UPDATE capacities
		SET available_units = available_units + $1, updated_at = $2
		WHERE id = $3
	`

	result, err := tx.Exec(ctx, query, n, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrCapacityNotFound
	}

	return nil
}
