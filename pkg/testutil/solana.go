package testutil

import (
	"crypto/ed25519"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func GenerateSolanaKeypair(t *testing.T) ed25519.PrivateKey {
	_, p, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return p
}

func GenerateSolanaKeys(t *testing.T, n int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, n)
	for i := 0; i < n; i++ {
		p, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = p
	}
	return keys
}

// WriteKeypairFile stores key in the solana-keygen JSON format under a test
// temp dir and returns the path.
func WriteKeypairFile(t *testing.T, key ed25519.PrivateKey) string {
	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}

	encoded, err := json.Marshal(ints)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, os.WriteFile(path, encoded, 0600))
	return path
}
