package clientid

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewProducesHexIdentifiers(t *testing.T) {
	a, err := New()
	require.NoError(t, err)
	b, err := New()
	require.NoError(t, err)

	require.Len(t, a, 48)
	require.NotEqual(t, a, b)
	_, err = hex.DecodeString(a)
	require.NoError(t, err)
	require.True(t, Valid(a))
}

func TestValid(t *testing.T) {
	require.False(t, Valid(""))
	require.False(t, Valid("   "))
	require.False(t, Valid("has space"))
	require.False(t, Valid(strings.Repeat("a", MaxLength+1)))
	require.True(t, Valid("legacy-client_01"))
}
