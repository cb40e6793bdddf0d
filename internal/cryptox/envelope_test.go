package cryptox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sealdrop/internal/common"
)

func TestEncryptEnvelope_RoundTripAllParties(t *testing.T) {
	plaintext := []byte("hello, recipients")

	env, err := EncryptEnvelope(plaintext, "S", []string{"R1", "R2"}, "doc1")
	require.NoError(t, err)
	require.Len(t, env.RecipientKeys, 3)

	for _, party := range []string{"S", "R1", "R2"} {
		got, err := DecryptEnvelope(env, "S", party, "doc1")
		require.NoError(t, err, "party %s", party)
		assert.Equal(t, plaintext, got)
	}
}

func TestEncryptEnvelope_DedupsParties(t *testing.T) {
	env, err := EncryptEnvelope([]byte("x"), "Alice", []string{"alice", "ALICE", "bob"}, "doc1")
	require.NoError(t, err)
	assert.Len(t, env.RecipientKeys, 2)
	assert.Contains(t, env.RecipientKeys, "alice")
	assert.Contains(t, env.RecipientKeys, "bob")
}

func TestDecryptEnvelope_UnrelatedIdentity(t *testing.T) {
	env, err := EncryptEnvelope([]byte("secret"), "s", []string{"r1", "r2"}, "doc1")
	require.NoError(t, err)

	_, err = DecryptEnvelope(env, "s", "r3", "doc1")
	require.ErrorIs(t, err, common.ErrPermissionDenied)
}

func TestDecryptEnvelope_TamperedCiphertext(t *testing.T) {
	env, err := EncryptEnvelope([]byte("payload to protect"), "s", []string{"r1"}, "doc1")
	require.NoError(t, err)

	env.Ciphertext[3] ^= 0xff

	_, err = DecryptEnvelope(env, "s", "r1", "doc1")
	require.ErrorIs(t, err, common.ErrIntegrity)
}

func TestDecryptEnvelope_TamperedWrappedKey(t *testing.T) {
	env, err := EncryptEnvelope([]byte("payload"), "s", []string{"r1"}, "doc1")
	require.NoError(t, err)

	wrapped := env.RecipientKeys["r1"]
	wrapped[len(wrapped)-1] ^= 0x01

	_, err = DecryptEnvelope(env, "s", "r1", "doc1")
	require.ErrorIs(t, err, common.ErrDecryptionFailed)
}

func TestDecryptEnvelope_WrongDocumentID(t *testing.T) {
	env, err := EncryptEnvelope([]byte("payload"), "s", []string{"r1"}, "doc1")
	require.NoError(t, err)

	_, err = DecryptEnvelope(env, "s", "r1", "doc2")
	require.ErrorIs(t, err, common.ErrDecryptionFailed)
}

// Mirrors the full multi-recipient scenario: 3 MB payload, three parties,
// unauthorized read, and corruption detected as an integrity failure.
func TestEncryptEnvelope_LargePayloadScenario(t *testing.T) {
	payload := bytes.Repeat([]byte{0xa5}, 3*1024*1024)

	env, err := EncryptEnvelope(payload, "S", []string{"R1", "R2"}, "doc1")
	require.NoError(t, err)
	require.Len(t, env.RecipientKeys, 3)

	got, err := DecryptEnvelope(env, "S", "R2", "doc1")
	require.NoError(t, err)
	require.True(t, bytes.Equal(payload, got))

	_, err = DecryptEnvelope(env, "S", "R3", "doc1")
	require.ErrorIs(t, err, common.ErrPermissionDenied)

	env.Ciphertext[1024] ^= 0x01
	_, err = DecryptEnvelope(env, "S", "R1", "doc1")
	require.ErrorIs(t, err, common.ErrIntegrity)
}

func TestDecryptLegacy_RoundTrip(t *testing.T) {
	key, err := DeriveKey("s", "r1", []byte("doc1"))
	require.NoError(t, err)

	blob, err := seal([]byte("old format"), key)
	require.NoError(t, err)

	got, err := DecryptLegacy(blob[NonceSize:], blob[:NonceSize], "s", "r1", "doc1")
	require.NoError(t, err)
	assert.Equal(t, []byte("old format"), got)
}

func TestVerifyHash(t *testing.T) {
	data := []byte("content")
	require.NoError(t, VerifyHash(data, Hash(data)))
	require.ErrorIs(t, VerifyHash(data, Hash([]byte("other"))), common.ErrIntegrity)
	require.ErrorIs(t, VerifyHash(data, nil), common.ErrIntegrity)
}
