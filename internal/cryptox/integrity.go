package cryptox

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/dmitrijs2005/sealdrop/internal/common"
)

// Hash computes the content digest stored alongside a record at write time.
func Hash(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// VerifyHash recomputes the digest of data and compares it against the one
// recorded at write time. It must be called before any plaintext derived from
// data is released to a caller; a mismatch means corruption or tampering.
func VerifyHash(data, digest []byte) error {
	if len(digest) == 0 {
		return fmt.Errorf("%w: missing digest", common.ErrIntegrity)
	}
	if !bytes.Equal(Hash(data), digest) {
		return fmt.Errorf("%w: sha256 mismatch", common.ErrIntegrity)
	}
	return nil
}
