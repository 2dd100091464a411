package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(bcrypt.MinCost)

	first, err := h.Hash("pw123")
	require.NoError(t, err)
	second, err := h.Hash("pw123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "hashes must be salted")
	assert.NotContains(t, first, "pw123")
	assert.True(t, h.Verify("pw123", first))
	assert.True(t, h.Verify("pw123", second))
	assert.False(t, h.Verify("pw124", first))
	assert.False(t, h.Verify("pw123", "not-a-bcrypt-hash"))
}

func TestNewBcryptHasher_InvalidCost(t *testing.T) {
	t.Parallel()

	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99).cost)
	assert.Equal(t, 12, NewBcryptHasher(12).cost)
}
