package service

import (
	"context"
	"time"

	"go-ticket-core/internal/crypto"
	"go-ticket-core/internal/model"
	"go-ticket-core/internal/repository"
	apperrors "go-ticket-core/pkg/app_errors"
	"go-ticket-core/pkg/clock"
	"go-ticket-core/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenService issues and consumes single-use credentials. The raw public
// identifier leaves this service exactly once, as the return value of Issue;
// only its slow hash is stored.
type TokenService interface {
	Issue(ctx context.Context, ownerID int, kind model.TokenKind, validity time.Duration) (string, error)
	Validate(ctx context.Context, publicID string, expectedKind model.TokenKind) (*model.AuthToken, error)
	Consume(ctx context.Context, token *model.AuthToken) error
	PurgeExpired(ctx context.Context) (int64, error)
}

type TokenServiceImpl struct {
	repo   repository.TokenRepository
	hasher crypto.Hasher
	clock  clock.Clock
}

func NewTokenService(repo repository.TokenRepository, hasher crypto.Hasher, clk clock.Clock) TokenService {
	return &TokenServiceImpl{
		repo:   repo,
		hasher: hasher,
		clock:  clk,
	}
}

func (s *TokenServiceImpl) Issue(ctx context.Context, ownerID int, kind model.TokenKind, validity time.Duration) (string, error) {
	now := s.clock.Now()

	// At most one active token per (owner, kind): issuing supersedes any
	// prior one.
	if err := s.repo.DeleteActive(ctx, ownerID, kind, now); err != nil {
		return "", err
	}

	publicID := uuid.New().String()
	secretHash, err := s.hasher.Hash(publicID)
	if err != nil {
		return "", err
	}

	token := &model.AuthToken{
		PublicID:   publicID,
		SecretHash: secretHash,
		Kind:       kind,
		OwnerID:    ownerID,
		ExpiresAt:  now.Add(validity),
	}

	if _, err := s.repo.Create(ctx, token); err != nil {
		return "", err
	}

	return publicID, nil
}

// Validate checks consumed, expiry and kind in that fixed order so failures
// are deterministic.
func (s *TokenServiceImpl) Validate(ctx context.Context, publicID string, expectedKind model.TokenKind) (*model.AuthToken, error) {
	token, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	// The row was found by its identifier, so a hash mismatch means a hashing
	// bug or storage tampering, never a user error.
	if !s.hasher.Matches(publicID, token.SecretHash) {
		logger.WithComponent("token").Error("stored hash does not match its identifier",
			zap.Int("token_id", token.ID),
			zap.String("kind", string(token.Kind)),
		)
		return nil, apperrors.ErrSecurityInconsistency
	}

	if token.Consumed {
		return nil, apperrors.ErrTokenAlreadyUsed
	}

	if token.IsExpired(s.clock.Now()) {
		return nil, apperrors.ErrTokenExpired
	}

	if token.Kind != expectedKind {
		return nil, apperrors.ErrTokenWrongKind
	}

	return token, nil
}

// Consume flips the token through a conditional update, so calling it
// redundantly is harmless.
func (s *TokenServiceImpl) Consume(ctx context.Context, token *model.AuthToken) error {
	flipped, err := s.repo.MarkConsumed(ctx, token.ID)
	if err != nil {
		return err
	}

	if !flipped {
		logger.WithComponent("token").Info("consume on already consumed token",
			zap.Int("token_id", token.ID),
		)
	}

	return nil
}

func (s *TokenServiceImpl) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.clock.Now())
}
