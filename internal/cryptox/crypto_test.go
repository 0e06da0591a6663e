package cryptox

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt-16byt")

	key1 := DeriveKey(password, salt)
	key2 := DeriveKey(password, salt)

	require.Len(t, key1, 32)
	assert.True(t, bytes.Equal(key1, key2), "same inputs must give the same key")
}

func TestDeriveKey_DifferentSalts(t *testing.T) {
	password := []byte("secret-password")

	key1 := DeriveKey(password, []byte("salt-1"))
	key2 := DeriveKey(password, []byte("salt-2"))

	assert.False(t, bytes.Equal(key1, key2), "different salts must give different keys")
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	key := DeriveKey([]byte("pass"), []byte("salty-salty-salt"))
	snapshot := json.RawMessage(`{"journal":[{"title":"flying"}],"theme":"night"}`)

	ciphertext, nonce, err := EncryptEntry(snapshot, key)
	require.NoError(t, err)
	require.Len(t, nonce, 12)
	assert.NotContains(t, string(ciphertext), "flying")

	var got json.RawMessage
	require.NoError(t, DecryptEntry(ciphertext, nonce, key, &got))
	assert.JSONEq(t, string(snapshot), string(got))
}

func TestDecrypt_WrongKeyFails(t *testing.T) {
	key := DeriveKey([]byte("pass"), []byte("salty-salty-salt"))
	other := DeriveKey([]byte("other"), []byte("salty-salty-salt"))

	ciphertext, nonce, err := EncryptEntry(map[string]int{"a": 1}, key)
	require.NoError(t, err)

	var out map[string]int
	require.Error(t, DecryptEntry(ciphertext, nonce, other, &out))
}

func TestDecrypt_BadNonceLength(t *testing.T) {
	key := DeriveKey([]byte("pass"), []byte("salty-salty-salt"))
	ciphertext, nonce, err := EncryptEntry("x", key)
	require.NoError(t, err)

	for _, n := range [][]byte{nil, nonce[:1], append(nonce, 0)} {
		var out string
		require.ErrorIs(t, DecryptEntry(ciphertext, n, key, &out), ErrMalformedCiphertext)
	}
}

func TestEncrypt_BadKeyLength(t *testing.T) {
	_, _, err := EncryptEntry("x", []byte("short"))
	require.Error(t, err)
}
