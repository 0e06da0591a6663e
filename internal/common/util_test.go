package common

import (
	"encoding/hex"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeRandHexString_LengthAndHex(t *testing.T) {
	const n = 16
	s, err := MakeRandHexString(n)
	require.NoError(t, err)
	require.Len(t, s, n*2)

	_, err = hex.DecodeString(s)
	require.NoError(t, err, "string is not valid hex")
}

func TestMakeRandHexString_ZeroSize(t *testing.T) {
	s, err := MakeRandHexString(0)
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestGenerateRandByteArray_Basic(t *testing.T) {
	const n = 24
	buf := GenerateRandByteArray(n)
	require.Len(t, buf, n)

	other := GenerateRandByteArray(n)
	if string(buf) == string(other) {
		t.Logf("warning: two GenerateRandByteArray(%d) results are identical; extremely unlikely", n)
	}
}

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	WipeByteArray(buf)
	assert.Equal(t, []byte{0, 0, 0, 0, 0}, buf)
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	require.NotPanics(t, func() { WipeByteArray(nil) })
}

func TestSentinelErrors_MatchThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("signup: %w", ErrEmailTaken)
	assert.True(t, errors.Is(wrapped, ErrEmailTaken))
	assert.False(t, errors.Is(wrapped, ErrUsernameTaken))
}
