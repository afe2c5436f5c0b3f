package repository

import (
	"context"
	"time"

	"go-ticket-core/internal/model"
	apperrors "go-ticket-core/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TokenRepository interface {
	Create(ctx context.Context, token *model.AuthToken) (*model.AuthToken, error)
	FindByPublicID(ctx context.Context, publicID string) (*model.AuthToken, error)
	FindByID(ctx context.Context, id int) (*model.AuthToken, error)

	// DeleteActive removes the non-consumed, non-expired token of the given
	// owner and kind, keeping the single-active-token invariant before a new
	// insert.
	DeleteActive(ctx context.Context, ownerID int, kind model.TokenKind, now time.Time) error

	// MarkConsumed flips consumed exactly once; it reports false without
	// error when the token was already consumed.
	MarkConsumed(ctx context.Context, id int) (bool, error)

	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type TokenRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTokenRepository(pool *pgxpool.Pool) TokenRepository {
	return &TokenRepositoryImpl{
		pool: pool,
	}
}

func (r *TokenRepositoryImpl) Create(ctx context.Context, token *model.AuthToken) (*model.AuthToken, error) {
	query := `
		INSERT INTO auth_tokens (public_id, secret_hash, kind, owner_id, expires_at, consumed)
		VALUES ($1, $2, $3, $4, $5, FALSE)
		RETURNING id, public_id, secret_hash, kind, owner_id, expires_at, consumed, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		token.PublicID, token.SecretHash, token.Kind, token.OwnerID, token.ExpiresAt,
	).Scan(
		&token.ID,
		&token.PublicID,
		&token.SecretHash,
		&token.Kind,
		&token.OwnerID,
		&token.ExpiresAt,
		&token.Consumed,
		&token.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return token, nil
}

func (r *TokenRepositoryImpl) FindByPublicID(ctx context.Context, publicID string) (*model.AuthToken, error) {
	query := `
		SELECT id, public_id, secret_hash, kind, owner_id, expires_at, consumed, created_at
		FROM auth_tokens
		WHERE public_id = $1
	`

	var token model.AuthToken
	err := r.pool.QueryRow(ctx, query, publicID).Scan(
		&token.ID,
		&token.PublicID,
		&token.SecretHash,
		&token.Kind,
		&token.OwnerID,
		&token.ExpiresAt,
		&token.Consumed,
		&token.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTokenNotFound
		}
		return nil, err
	}

	return &token, nil
}

func (r *TokenRepositoryImpl) FindByID(ctx context.Context, id int) (*model.AuthToken, error) {
	query := `
		SELECT id, public_id, secret_hash, kind, owner_id, expires_at, consumed, created_at
		FROM auth_tokens
		WHERE id = $1
	`

	var token model.AuthToken
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&token.ID,
		&token.PublicID,
		&token.SecretHash,
		&token.Kind,
		&token.OwnerID,
		&token.ExpiresAt,
		&token.Consumed,
		&token.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTokenNotFound
		}
		return nil, err
	}

	return &token, nil
}

func (r *TokenRepositoryImpl) DeleteActive(ctx context.Context, ownerID int, kind model.TokenKind, now time.Time) error {
	query := `
		DELETE FROM auth_tokens
		WHERE owner_id = $1 AND kind = $2 AND consumed = FALSE AND expires_at > $3
	`

	_, err := r.pool.Exec(ctx, query, ownerID, kind, now)
	return err
}

func (r *TokenRepositoryImpl) MarkConsumed(ctx context.Context, id int) (bool, error) {
	query := `
		UPDATE auth_tokens
		SET consumed = TRUE
		WHERE id = $1 AND consumed = FALSE
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}

	if result.RowsAffected() > 0 {
		return true, nil
	}

	// Distinguish an already-consumed token from a missing row.
	if _, err := r.FindByID(ctx, id); err != nil {
		return false, err
	}

	return false, nil
}

func (r *TokenRepositoryImpl) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM auth_tokens WHERE expires_at < $1`

	result, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected(), nil
}
