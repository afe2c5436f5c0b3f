package repository

import (
	"context"
	"testing"
	"time"

	"go-ticket-core/internal/model"
	"go-ticket-core/internal/testutil"
	apperrors "go-ticket-core/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfferRepository_MarkExpired(t *testing.T) {
	ctx := context.Background()
	pool := testutil.NewTestPool(t)
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	repo := NewOfferRepository(pool)
	now := time.Now().UTC()

	futureCapacity := testutil.InsertCapacity(t, ctx, pool, "Upcoming", now.Add(48*time.Hour), 50)
	pastCapacity := testutil.InsertCapacity(t, ctx, pool, "Finished", now.Add(-time.Hour), 50)

	ownDeadline := testutil.InsertOffer(t, ctx, pool, futureCapacity, "Early Bird", now.Add(-time.Minute), model.OfferStatusAvailable)
	pastOccurrence := testutil.InsertOffer(t, ctx, pool, pastCapacity, "Solo", now.Add(24*time.Hour), model.OfferStatusAvailable)
	alive := testutil.InsertOffer(t, ctx, pool, futureCapacity, "Duo", now.Add(24*time.Hour), model.OfferStatusAvailable)
	alreadyExpired := testutil.InsertOffer(t, ctx, pool, pastCapacity, "Trio", now.Add(-time.Hour), model.OfferStatusExpired)

	count, err := repo.MarkExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	for id, want := range map[int]model.OfferStatus{
		ownDeadline:    model.OfferStatusExpired,
		pastOccurrence: model.OfferStatusExpired,
		alive:          model.OfferStatusAvailable,
		alreadyExpired: model.OfferStatusExpired,
	} {
		offer, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, offer.Status, "offer %d", id)
	}

	// Nothing left to expire on the second pass.
	count, err = repo.MarkExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestOfferRepository_ListByStatus(t *testing.T) {
	ctx := context.Background()
	pool := testutil.NewTestPool(t)
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	repo := NewOfferRepository(pool)
	now := time.Now().UTC()

	capacityID := testutil.InsertCapacity(t, ctx, pool, "Hall", now.Add(48*time.Hour), 50)
	available := testutil.InsertOffer(t, ctx, pool, capacityID, "Solo", now.Add(24*time.Hour), model.OfferStatusAvailable)
	testutil.InsertOffer(t, ctx, pool, capacityID, "Duo", now.Add(-time.Hour), model.OfferStatusExpired)

	offers, err := repo.ListByStatus(ctx, model.OfferStatusAvailable)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, available, offers[0].ID)

	_, err = repo.FindByID(ctx, 999999)
	assert.ErrorIs(t, err, apperrors.ErrOfferNotFound)
}
