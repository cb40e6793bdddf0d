// Package common defines shared constants and sentinel errors used across
// sealdrop components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Argument validation errors.
	ErrInvalidArgument = errors.New("invalid argument")

	// Crypto errors. ErrDecryptionFailed covers an AEAD tag mismatch while
	// unwrapping or opening; ErrIntegrity means the content hash recorded at
	// write time no longer matches the stored ciphertext. Both are fatal to
	// the read and the plaintext must never be released.
	ErrPermissionDenied = errors.New("no key for identity")
	ErrDecryptionFailed = errors.New("decryption failed")
	ErrIntegrity        = errors.New("integrity check failed")

	// Ledger errors.
	ErrNotFound            = errors.New("not found")
	ErrRetrievalFailed     = errors.New("retrieval failed on all gateways")
	ErrConfirmationTimeout = errors.New("confirmation timed out")

	// ErrSignerUnavailable switches the upload path over to the delegated
	// upload endpoint.
	ErrSignerUnavailable = errors.New("signer unavailable")
)
