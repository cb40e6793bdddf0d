package cryptox

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/sealdrop/internal/common"
)

// Envelope is the result of encrypting a file for a set of identities.
// Immutable once created.
//
// RecipientKeys holds exactly one entry per identity in
// {sender} ∪ recipients, keyed by normalized identity. Each value is
// nonce ∥ AEAD(masterKey) under the pairwise key of (sender, identity).
type Envelope struct {
	Ciphertext    []byte
	Nonce         []byte
	RecipientKeys map[string][]byte
	Hash          []byte
}

// EncryptEnvelope encrypts plaintext under a fresh random master key and
// wraps that key for the sender and every recipient. documentID is the salt
// for all pairwise derivations of this file.
func EncryptEnvelope(plaintext []byte, sender string, recipients []string, documentID string) (*Envelope, error) {
	senderID, err := common.NormalizeIdentity(sender)
	if err != nil {
		return nil, err
	}
	parties, err := common.NormalizeIdentities(append([]string{senderID}, recipients...))
	if err != nil {
		return nil, err
	}
	if len(parties) > common.MaxRecipients+1 {
		return nil, fmt.Errorf("%w: more than %d recipients", common.ErrInvalidArgument, common.MaxRecipients)
	}

	masterKey := common.GenerateRandByteArray(KeySize)
	nonce := common.GenerateRandByteArray(NonceSize)

	aead, err := newGCM(masterKey)
	if err != nil {
		return nil, err
	}
	ciphertext := aead.Seal(nil, nonce, plaintext, nil)

	keys := make(map[string][]byte, len(parties))
	for _, identity := range parties {
		pairwise, err := DeriveKey(senderID, identity, []byte(documentID))
		if err != nil {
			return nil, err
		}
		wrapped, err := seal(masterKey, pairwise)
		if err != nil {
			return nil, err
		}
		keys[identity] = wrapped
	}

	return &Envelope{
		Ciphertext:    ciphertext,
		Nonce:         nonce,
		RecipientKeys: keys,
		Hash:          Hash(ciphertext),
	}, nil
}

// DecryptEnvelope recovers the plaintext for one of the envelope's parties.
//
// The caller's wrapped key is looked up by normalized identity, with one
// defensive case-insensitive scan for records written before normalization
// was enforced. No entry means the caller is not a party:
// common.ErrPermissionDenied.
//
// The content hash is verified before the payload is opened; a mismatch is
// common.ErrIntegrity and no plaintext is returned.
func DecryptEnvelope(env *Envelope, sender, self, documentID string) ([]byte, error) {
	selfID, err := common.NormalizeIdentity(self)
	if err != nil {
		return nil, err
	}

	wrapped, ok := env.RecipientKeys[selfID]
	if !ok {
		for identity, blob := range env.RecipientKeys {
			if strings.EqualFold(identity, selfID) {
				wrapped, ok = blob, true
				break
			}
		}
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrPermissionDenied, selfID)
	}

	pairwise, err := DeriveKey(sender, selfID, []byte(documentID))
	if err != nil {
		return nil, err
	}
	masterKey, err := open(wrapped, pairwise)
	if err != nil {
		return nil, err
	}

	if err := VerifyHash(env.Ciphertext, env.Hash); err != nil {
		return nil, err
	}

	aead, err := newGCM(masterKey)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, env.Nonce, env.Ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

// DecryptLegacy opens a single-recipient record from the old wire format,
// where the payload was encrypted directly under the pairwise key with no
// master key indirection.
func DecryptLegacy(ciphertext, nonce []byte, sender, self, documentID string) ([]byte, error) {
	pairwise, err := DeriveKey(sender, self, []byte(documentID))
	if err != nil {
		return nil, err
	}
	aead, err := newGCM(pairwise)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDecryptionFailed, err)
	}
	return plaintext, nil
}
