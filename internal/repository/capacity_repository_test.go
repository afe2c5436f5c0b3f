package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go-ticket-core/internal/testutil"
	apperrors "go-ticket-core/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapacityRepository_TryDecrementUnits(t *testing.T) {
	ctx := context.Background()
	pool := testutil.NewTestPool(t)
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	repo := NewCapacityRepository(pool)

	t.Run("decrements while units remain", func(t *testing.T) {
		id := testutil.InsertCapacity(t, ctx, pool, "Hall A", time.Now().Add(time.Hour).UTC(), 3)

		ok, err := repo.TryDecrementUnits(ctx, id, 2)
		require.NoError(t, err)
		assert.True(t, ok)

		units, err := repo.GetAvailableUnits(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 1, units)

		// One unit left, two requested: the row is untouched.
		ok, err = repo.TryDecrementUnits(ctx, id, 2)
		require.NoError(t, err)
		assert.False(t, ok)

		units, err = repo.GetAvailableUnits(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 1, units)
	})

	t.Run("missing row reports no rows affected", func(t *testing.T) {
		ok, err := repo.TryDecrementUnits(ctx, 999999, 1)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("non-positive quantity rejected before touching the database", func(t *testing.T) {
		_, err := repo.TryDecrementUnits(ctx, 1, 0)
		assert.ErrorIs(t, err, apperrors.ErrInvalidQuantity)

		_, err = repo.TryDecrementUnits(ctx, 1, -3)
		assert.ErrorIs(t, err, apperrors.ErrInvalidQuantity)
	})

	t.Run("no oversell under concurrent decrements", func(t *testing.T) {
		const units = 5
		const attempts = 40
		id := testutil.InsertCapacity(t, ctx, pool, "Hall B", time.Now().Add(time.Hour).UTC(), units)

		var granted atomic.Int64
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := repo.TryDecrementUnits(ctx, id, 1)
				if err == nil && ok {
					granted.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int64(units), granted.Load())

		remaining, err := repo.GetAvailableUnits(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 0, remaining)
	})
}

func TestCapacityRepository_IncrementUnits(t *testing.T) {
	ctx := context.Background()
	pool := testutil.NewTestPool(t)
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	repo := NewCapacityRepository(pool)
	id := testutil.InsertCapacity(t, ctx, pool, "Hall C", time.Now().Add(time.Hour).UTC(), 2)

	ok, err := repo.TryDecrementUnits(ctx, id, 2)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, repo.IncrementUnits(ctx, id, 1))

	units, err := repo.GetAvailableUnits(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, units)

	assert.ErrorIs(t, repo.IncrementUnits(ctx, 999999, 1), apperrors.ErrCapacityNotFound)
	assert.ErrorIs(t, repo.IncrementUnits(ctx, id, 0), apperrors.ErrInvalidQuantity)
}

func TestCapacityRepository_FindByID(t *testing.T) {
	ctx := context.Background()
	pool := testutil.NewTestPool(t)
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	repo := NewCapacityRepository(pool)
	id := testutil.InsertCapacity(t, ctx, pool, "Hall D", time.Now().Add(time.Hour).UTC(), 7)

	capacity, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Hall D", capacity.Name)
	assert.Equal(t, 7, capacity.TotalUnits)
	assert.Equal(t, 7, capacity.AvailableUnits)

	_, err = repo.FindByID(ctx, 999999)
	assert.ErrorIs(t, err, apperrors.ErrCapacityNotFound)

	_, err = repo.GetAvailableUnits(ctx, 999999)
	assert.ErrorIs(t, err, apperrors.ErrCapacityNotFound)
}
