package divvy

import (
	"crypto/ed25519"

	"github.com/divvyexchange/bootstrap/pkg/solana"
)

// GetPoolAddress derives the program owned pool authority and its bump.
func GetPoolAddress(program ed25519.PublicKey, seed []byte) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(program, seed)
}
