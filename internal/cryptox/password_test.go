package cryptox

import (
	"strings"
	"testing"

	"github.com/dmitrijs2005/dreamcatcher/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_VerifyRoundTrip(t *testing.T) {
	hash, err := HashPassword([]byte("p"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	assert.True(t, VerifyPassword([]byte("p"), hash))
	assert.False(t, VerifyPassword([]byte("q"), hash))
}

func TestHashPassword_Salted(t *testing.T) {
	h1, err := HashPassword([]byte("same"))
	require.NoError(t, err)
	h2, err := HashPassword([]byte("same"))
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := HashPassword(nil)
	require.ErrorIs(t, err, common.ErrInvalidPassword)
}

func TestVerifyPassword_Malformed(t *testing.T) {
	tests := []string{
		"",
		"plain",
		"$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=x,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA",
		"$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$",
		"$argon2id$v=19$m=65536,t=1,p=0$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=0,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=100000,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=4294967295,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8,t=1,p=4$c2FsdA$aGFzaA",
	}
	for _, encoded := range tests {
		assert.False(t, VerifyPassword([]byte("p"), encoded), encoded)
	}
}
