package models

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/sealdrop/internal/common"
)

// EnvelopePayload is the opaque payload stored on the ledger, conceptually
// { ciphertext, iv, metadata: { identity -> encrypted blob } }. The metadata
// map carries each party's wrapped master key (and other private fields)
// encrypted for that party alone; everything public lives in the tags.
//
// Records written by the old single-recipient client have no metadata map:
// the ciphertext there was sealed directly under the pairwise key. IsLegacy
// distinguishes the two.
type EnvelopePayload struct {
	Ciphertext string            `json:"ciphertext"`
	IV         string            `json:"iv"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// PrivateMetadata is the per-recipient metadata blob content.
type PrivateMetadata struct {
	WrappedKey  []byte `json:"wrapped_key"`
	FileName    string `json:"file_name,omitempty"`
	Description string `json:"description,omitempty"`
}

func (p EnvelopePayload) IsLegacy() bool {
	return len(p.Metadata) == 0
}

// CiphertextBytes decodes the base64 ciphertext.
func (p EnvelopePayload) CiphertextBytes() ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(p.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decoding ciphertext: %w", err)
	}
	return b, nil
}

// IVBytes decodes the base64 nonce.
func (p EnvelopePayload) IVBytes() ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(p.IV)
	if err != nil {
		return nil, fmt.Errorf("decoding iv: %w", err)
	}
	return b, nil
}

// MetadataFor returns the decoded metadata blob for an identity. Lookup is
// by normalized identity.
func (p EnvelopePayload) MetadataFor(identity string) ([]byte, error) {
	id, err := common.NormalizeIdentity(identity)
	if err != nil {
		return nil, err
	}
	enc, ok := p.Metadata[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrPermissionDenied, id)
	}
	b, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return nil, fmt.Errorf("decoding metadata blob: %w", err)
	}
	return b, nil
}

// EncodePayload serializes an envelope payload for upload.
func EncodePayload(ciphertext, iv []byte, metadata map[string][]byte) ([]byte, error) {
	p := EnvelopePayload{
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
		IV:         base64.StdEncoding.EncodeToString(iv),
	}
	if len(metadata) > 0 {
		p.Metadata = make(map[string]string, len(metadata))
		for identity, blob := range metadata {
			p.Metadata[identity] = base64.StdEncoding.EncodeToString(blob)
		}
	}
	return json.Marshal(p)
}

// DecodePayload parses a stored payload, current or legacy format.
func DecodePayload(data []byte) (*EnvelopePayload, error) {
	var p EnvelopePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}
	if p.Ciphertext == "" {
		return nil, fmt.Errorf("%w: payload has no ciphertext", common.ErrInvalidArgument)
	}
	return &p, nil
}
