package ledger

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"github.com/dmitrijs2005/sealdrop/internal/common"
)

// Signer signs transactions and names the identity they are submitted under.
// A nil Signer on the client routes uploads through the delegated endpoint.
type Signer interface {
	// Identity returns the normalized identity string of the signing key.
	Identity() string
	// PublicKey returns the raw public key embedded in the transaction.
	PublicKey() []byte
	// Sign signs the transaction digest.
	Sign(message []byte) ([]byte, error)
}

// KeySigner signs locally with an ed25519 private key. The identity is the
// lowercased hex encoding of the public key.
type KeySigner struct {
	priv ed25519.PrivateKey
}

func NewKeySigner(priv ed25519.PrivateKey) *KeySigner {
	return &KeySigner{priv: priv}
}

// NewKeySignerFromSeed builds a signer from a hex-encoded 32-byte seed, the
// form the CLI collects from the user.
func NewKeySignerFromSeed(seedHex string) (*KeySigner, error) {
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, fmt.Errorf("%w: seed is not hex", common.ErrInvalidArgument)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: seed must be %d bytes", common.ErrInvalidArgument, ed25519.SeedSize)
	}
	return &KeySigner{priv: ed25519.NewKeyFromSeed(seed)}, nil
}

func (s *KeySigner) Identity() string {
	return hex.EncodeToString(s.priv.Public().(ed25519.PublicKey))
}

func (s *KeySigner) PublicKey() []byte {
	return []byte(s.priv.Public().(ed25519.PublicKey))
}

func (s *KeySigner) Sign(message []byte) ([]byte, error) {
	return ed25519.Sign(s.priv, message), nil
}
