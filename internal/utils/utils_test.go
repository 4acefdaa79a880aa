package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	assert.True(t, hasher.Verify("secret1", hash))
	assert.False(t, hasher.Verify("secret2", hash))
	assert.False(t, hasher.Verify("secret1", "not-a-hash"))
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"a@example.com", "first.last+tag@sub.example.org"}
	invalid := []string{"", "plain", "a@", "@example.com", "a b@example.com"}

	for _, e := range valid {
		assert.True(t, ValidateEmail(e), e)
	}
	for _, e := range invalid {
		assert.False(t, ValidateEmail(e), e)
	}
}

func TestValidatePassword(t *testing.T) {
	assert.False(t, ValidatePassword(""))
	assert.False(t, ValidatePassword("12345"))
	assert.True(t, ValidatePassword("123456"))

	// Six bytes but three characters.
	assert.False(t, ValidatePassword("ééé"))
	assert.True(t, ValidatePassword("éééééé"))
}

func TestSanitizeEmail(t *testing.T) {
	assert.Equal(t, "a@example.com", SanitizeEmail("  A@Example.COM "))
}

func TestGenerateRandomString(t *testing.T) {
	seen := make(map[string]struct{})
	for range 100 {
		s, err := GenerateRandomString(32)
		require.NoError(t, err)
		require.Len(t, s, 32)
		for _, c := range s {
			require.True(t, strings.ContainsRune(randomAlphabet, c), "unexpected rune %q", c)
		}
		_, dup := seen[s]
		require.False(t, dup)
		seen[s] = struct{}{}
	}
}
