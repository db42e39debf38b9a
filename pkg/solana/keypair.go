package solana

import (
	"crypto/ed25519"
	"os"
	"path/filepath"
	"strings"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

// DefaultKeypairPath is where the Solana CLI stores its default signer.
const DefaultKeypairPath = "~/.config/solana/id.json"

// LoadKeypairFile reads a keypair written by solana-keygen, a JSON array of
// the 64 secret key bytes. A leading ~ is expanded to the home directory.
func LoadKeypairFile(path string) (ed25519.PrivateKey, error) {
	expanded, err := expandHome(path)
	if err != nil {
		return nil, err
	}

	key, err := solanago.PrivateKeyFromSolanaKeygenFile(expanded)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load keypair from %s", expanded)
	}

	return toPrivateKey(key)
}

// ParseBase58Keypair decodes a base58 encoded 64 byte secret key.
func ParseBase58Keypair(encoded string) (ed25519.PrivateKey, error) {
	key, err := solanago.PrivateKeyFromBase58(encoded)
	if err != nil {
		return nil, errors.Wrap(err, "invalid base58 keypair")
	}

	return toPrivateKey(key)
}

// ParsePublicKey decodes a base58 encoded 32 byte public key.
func ParsePublicKey(encoded string) (ed25519.PublicKey, error) {
	decoded, err := base58.Decode(encoded)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid base58 public key %q", encoded)
	}
	if len(decoded) != ed25519.PublicKeySize {
		return nil, errors.Errorf("invalid public key length for %q: %d", encoded, len(decoded))
	}

	return decoded, nil
}

func toPrivateKey(key solanago.PrivateKey) (ed25519.PrivateKey, error) {
	if len(key) != ed25519.PrivateKeySize {
		return nil, errors.Errorf("invalid keypair length: %d", len(key))
	}

	priv := ed25519.PrivateKey(append([]byte(nil), key...))

	// solana-keygen stores seed || public key; reject files where the halves
	// disagree rather than signing with a mismatched key.
	derived := ed25519.NewKeyFromSeed(priv.Seed())
	if !derived.Equal(priv) {
		return nil, errors.New("keypair public key does not match secret key")
	}

	return priv, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve home directory")
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
