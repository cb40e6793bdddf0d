// Package services wires the crypto, ledger, index and cache layers into the
// send and read paths the CLI consumes.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sealdrop/internal/cache"
	"github.com/dmitrijs2005/sealdrop/internal/client/models"
	"github.com/dmitrijs2005/sealdrop/internal/common"
	"github.com/dmitrijs2005/sealdrop/internal/index"
	"github.com/dmitrijs2005/sealdrop/internal/logging"
)

// AliasResolver maps an identity to the full set of names it is known under.
// The ledger indexes exact tag values, so queries must match every alias.
// Implementations are external; a nil resolver means "no aliases".
type AliasResolver interface {
	Resolve(ctx context.Context, identity string) ([]string, error)
}

// ListingOptions tunes the cache behaviour of a ListingService. Listings
// change more often than aliases, so their TTL is the shorter of the two.
type ListingOptions struct {
	ListingTTL time.Duration
	AliasTTL   time.Duration
	MaxEntries int
}

func (o *ListingOptions) defaults() {
	if o.ListingTTL == 0 {
		o.ListingTTL = time.Minute
	}
	if o.AliasTTL == 0 {
		o.AliasTTL = 5 * time.Minute
	}
	if o.MaxEntries == 0 {
		o.MaxEntries = 1024
	}
}

// ListingService answers "files addressed to me" and "files I sent" without
// re-walking the whole ledger on every call: results are cached per identity
// with a TTL and concurrent misses are coalesced.
type ListingService struct {
	index      *index.Query
	resolver   AliasResolver
	listings   *cache.Layer[*index.Listing]
	aliases    *cache.Layer[[]string]
	listingTTL time.Duration
	aliasTTL   time.Duration
	log        logging.Logger
}

func NewListingService(idx *index.Query, resolver AliasResolver, opts ListingOptions, log logging.Logger) *ListingService {
	opts.defaults()
	return &ListingService{
		index:      idx,
		resolver:   resolver,
		listings:   cache.New[*index.Listing](opts.MaxEntries),
		aliases:    cache.New[[]string](opts.MaxEntries),
		listingTTL: opts.ListingTTL,
		aliasTTL:   opts.AliasTTL,
		log:        log,
	}
}

// Received lists records addressed to the identity. Private-vault records are
// filtered out unless includeVault is set. The bool result reports whether
// the listing is a truncated best-effort one (pagination safety cap).
func (s *ListingService) Received(ctx context.Context, identity string, includeVault bool) ([]models.FileRecord, bool, error) {
	id, err := common.NormalizeIdentity(identity)
	if err != nil {
		return nil, false, err
	}
	listing, err := s.listings.GetOrFetch(ctx, "received:"+id, s.listingTTL, func(ctx context.Context) (*index.Listing, error) {
		ids, err := s.identities(ctx, id)
		if err != nil {
			return nil, err
		}
		return s.index.FindByRecipient(ctx, ids)
	})
	if err != nil {
		return nil, false, fmt.Errorf("listing received files: %w", err)
	}
	return filterVault(listing.Records, includeVault), listing.Truncated, nil
}

// Sent lists records the identity uploaded, same caching and filtering rules
// as Received.
func (s *ListingService) Sent(ctx context.Context, identity string, includeVault bool) ([]models.FileRecord, bool, error) {
	id, err := common.NormalizeIdentity(identity)
	if err != nil {
		return nil, false, err
	}
	listing, err := s.listings.GetOrFetch(ctx, "sent:"+id, s.listingTTL, func(ctx context.Context) (*index.Listing, error) {
		ids, err := s.identities(ctx, id)
		if err != nil {
			return nil, err
		}
		return s.index.FindBySender(ctx, ids)
	})
	if err != nil {
		return nil, false, fmt.Errorf("listing sent files: %w", err)
	}
	return filterVault(listing.Records, includeVault), listing.Truncated, nil
}

// Snapshot builds the sent+received view the monitor diffs against. Vault
// records are always excluded here.
func (s *ListingService) Snapshot(ctx context.Context, identity string) (*models.ListingSnapshot, error) {
	received, _, err := s.Received(ctx, identity, false)
	if err != nil {
		return nil, err
	}
	sent, _, err := s.Sent(ctx, identity, false)
	if err != nil {
		return nil, err
	}
	return &models.ListingSnapshot{Sent: sent, Received: received}, nil
}

// Invalidate drops the cached listings for an identity so the next read sees
// the post-write state. Alias cache entries survive: names change on a much
// slower clock than listings.
func (s *ListingService) Invalidate(identity string) {
	id, err := common.NormalizeIdentity(identity)
	if err != nil {
		return
	}
	s.listings.Invalidate("received:" + id)
	s.listings.Invalidate("sent:" + id)
}

// identities returns the identity plus its resolved aliases, cached under
// the longer alias TTL.
func (s *ListingService) identities(ctx context.Context, id string) ([]string, error) {
	if s.resolver == nil {
		return []string{id}, nil
	}
	return s.aliases.GetOrFetch(ctx, "alias:"+id, s.aliasTTL, func(ctx context.Context) ([]string, error) {
		aliases, err := s.resolver.Resolve(ctx, id)
		if err != nil {
			// aliases broaden a query, they are not required for it
			s.log.Warn(ctx, "alias resolution failed, querying bare identity", "identity", id, "error", err)
			return []string{id}, nil
		}
		return append([]string{id}, aliases...), nil
	})
}

func filterVault(records []models.FileRecord, includeVault bool) []models.FileRecord {
	if includeVault {
		return records
	}
	out := make([]models.FileRecord, 0, len(records))
	for _, r := range records {
		if r.IsVault() {
			continue
		}
		out = append(out, r)
	}
	return out
}
