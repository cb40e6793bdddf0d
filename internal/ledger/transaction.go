package ledger

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
)

// transaction is the wire header submitted to the ledger. The payload itself
// follows in chunks; DataSize and DataHash bind it to the signature.
type transaction struct {
	ID        string `json:"id"`
	Owner     string `json:"owner"` // base64url public key
	Tags      []Tag  `json:"tags"`
	DataSize  int64  `json:"data_size"`
	DataHash  string `json:"data_hash"` // base64url sha256 of the payload
	Signature string `json:"signature"` // base64url
}

// signingMessage is the digest the owner signs: a hash over the owner, the
// tag set and the payload hash, so none of them can change after signing.
func signingMessage(owner []byte, tags []Tag, dataSize int64, dataHash []byte) []byte {
	h := sha256.New()
	h.Write(owner)
	enc, _ := json.Marshal(tags)
	h.Write(enc)
	var size [8]byte
	for i := 0; i < 8; i++ {
		size[i] = byte(dataSize >> (8 * i))
	}
	h.Write(size[:])
	h.Write(dataHash)
	return h.Sum(nil)
}

func sha256Sum(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// transactionID derives the content id the ledger assigns: the hash of the
// signature, which in turn commits to the payload and tags.
func transactionID(signature []byte) string {
	sum := sha256.Sum256(signature)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// chunkUpload is one payload chunk submission.
type chunkUpload struct {
	ID     string `json:"id"`
	Offset int64  `json:"offset"`
	Data   string `json:"data"` // base64
}

// txStatus is the confirmation status response.
type txStatus struct {
	Confirmed *struct {
		BlockHeight int64 `json:"block_height"`
	} `json:"confirmed"`
}
