// Package cryptox implements the pairwise key derivation and envelope
// encryption scheme used for multi-recipient file distribution.
//
// A file is encrypted once under a random master key; the master key is then
// wrapped separately for the sender and each recipient under a key the two
// parties can each derive on their own (see DeriveKey). No key exchange takes
// place: knowing both identities and the document id is enough.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/dmitrijs2005/sealdrop/internal/common"
)

const (
	// KeySize is the AES-256 key length used throughout.
	KeySize = 32
	// NonceSize is the GCM nonce length; wrapped keys are stored as
	// nonce ∥ ciphertext with this prefix length.
	NonceSize = 12

	// derivationInfo is the fixed HKDF domain separation string.
	derivationInfo = "sealdrop/pairwise-key/v1"
	// MetaSaltSuffix is appended to the document id when deriving keys for
	// auxiliary metadata blobs, so metadata and payload keys never collide.
	MetaSaltSuffix = "_meta"
)

// DeriveKey computes the pairwise symmetric key for two identities and a
// salt (typically the per-file document id). Identities are normalized and
// sorted before hashing, so DeriveKey(a, b, s) == DeriveKey(b, a, s): sender
// and recipient each compute the same key independently.
func DeriveKey(idA, idB string, salt []byte) ([]byte, error) {
	a, err := common.NormalizeIdentity(idA)
	if err != nil {
		return nil, err
	}
	b, err := common.NormalizeIdentity(idB)
	if err != nil {
		return nil, err
	}
	if a > b {
		a, b = b, a
	}

	ikm := sha256.Sum256([]byte(a + b))

	key := make([]byte, KeySize)
	r := hkdf.New(sha256.New, ikm[:], salt, []byte(derivationInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("hkdf expand: %w", err)
	}
	return key, nil
}

// newGCM builds an AES-GCM AEAD for the given key.
func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// seal encrypts plaintext under key with a fresh nonce and returns
// nonce ∥ ciphertext.
func seal(plaintext, key []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := common.GenerateRandByteArray(NonceSize)
	return append(nonce, aead.Seal(nil, nonce, plaintext, nil)...), nil
}

// open splits a nonce ∥ ciphertext blob and decrypts it. An AEAD tag
// mismatch is reported as common.ErrDecryptionFailed.
func open(blob, key []byte) ([]byte, error) {
	if len(blob) < NonceSize {
		return nil, fmt.Errorf("%w: blob too short", common.ErrDecryptionFailed)
	}
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, blob[:NonceSize], blob[NonceSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDecryptionFailed, err)
	}
	return plaintext, nil
}
