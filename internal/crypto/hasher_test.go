package crypto

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasherWithCost(4)

	secret := uuid.New().String()
	hash, err := hasher.Hash(secret)
	require.NoError(t, err)
	assert.NotEqual(t, secret, hash)

	assert.True(t, hasher.Matches(secret, hash))
	assert.False(t, hasher.Matches(uuid.New().String(), hash))
	assert.False(t, hasher.Matches(secret, "not-a-bcrypt-hash"))
}

func TestBcryptHasher_HashesAreSalted(t *testing.T) {
	hasher := NewBcryptHasherWithCost(4)

	secret := uuid.New().String()
	first, err := hasher.Hash(secret)
	require.NoError(t, err)
	second, err := hasher.Hash(secret)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Matches(secret, first))
	assert.True(t, hasher.Matches(secret, second))
}

func TestBcryptHasher_CostClamped(t *testing.T) {
	// Out-of-range costs fall back to sane bounds instead of failing at
	// hash time.
	for _, cost := range []int{-1, 0, 100} {
		hasher := NewBcryptHasherWithCost(cost)
		hash, err := hasher.Hash("secret")
		require.NoError(t, err)
		assert.True(t, hasher.Matches("secret", hash))
	}
}
