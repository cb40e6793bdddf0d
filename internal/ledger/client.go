package ledger

import (
	"context"
	"time"
)

// ProgressFunc receives the percentage of payload bytes submitted so far.
type ProgressFunc func(percent int)

// Client is the minimal ledger surface the rest of the system depends on.
// HTTPClient is the production implementation; tests provide fakes.
type Client interface {
	// Upload signs and submits a payload with its tags and returns the
	// assigned content id. A confirmation-poll timeout after a successful
	// submission is non-fatal: the id is returned anyway and a warning is
	// logged, since the write may still land.
	Upload(ctx context.Context, payload []byte, tags []Tag, onProgress ProgressFunc) (string, error)

	// Fetch retrieves a transaction's payload and tags, trying each gateway
	// in order. If every gateway fails the error matches
	// common.ErrRetrievalFailed and carries the last underlying cause.
	Fetch(ctx context.Context, contentID string) ([]byte, []Tag, error)

	// WaitForConfirmation polls the transaction status until it is confirmed
	// or timeout elapses, in which case the error matches
	// common.ErrConfirmationTimeout. The caller decides whether that is fatal.
	WaitForConfirmation(ctx context.Context, contentID string, timeout, interval time.Duration) error

	// Search runs one page of a tag-filter query.
	Search(ctx context.Context, query SearchQuery) (*SearchResult, error)
}

// FallbackPolicy controls how many rounds of the ordered gateway list a read
// walks through and how long to pause between rounds. Within a round the
// endpoints are tried back to back: they are alternatives for the same data,
// not the same resource, so there is nothing to back off from.
type FallbackPolicy struct {
	Rounds  uint64
	Backoff time.Duration
}

// DefaultFallbackPolicy does a single immediate pass over the gateway list.
func DefaultFallbackPolicy() FallbackPolicy {
	return FallbackPolicy{Rounds: 1}
}
