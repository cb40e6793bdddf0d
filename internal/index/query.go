// Package index enumerates file records by walking the ledger's tag search
// endpoint page by page.
package index

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/sealdrop/internal/client/models"
	"github.com/dmitrijs2005/sealdrop/internal/common"
	"github.com/dmitrijs2005/sealdrop/internal/ledger"
	"github.com/dmitrijs2005/sealdrop/internal/logging"
)

const (
	// DefaultPageSize is the page size requested from the search endpoint.
	DefaultPageSize = 100
	// DefaultMaxRecords caps a single enumeration. When the cap is hit the
	// walk stops and the listing is returned marked Truncated instead of
	// pretending to be complete.
	DefaultMaxRecords = 50000
)

// Searcher is the slice of the ledger client the index needs.
type Searcher interface {
	Search(ctx context.Context, query ledger.SearchQuery) (*ledger.SearchResult, error)
}

// Listing is the outcome of one enumeration. Truncated marks a best-effort
// partial result (safety cap reached).
type Listing struct {
	Records   []models.FileRecord
	Truncated bool
}

// Query walks tag-filter searches against the ledger.
type Query struct {
	searcher   Searcher
	log        logging.Logger
	pageSize   int
	maxRecords int
}

func New(searcher Searcher, log logging.Logger) *Query {
	return &Query{
		searcher:   searcher,
		log:        log,
		pageSize:   DefaultPageSize,
		maxRecords: DefaultMaxRecords,
	}
}

// FindBySender enumerates records sent by any of the caller's identities
// (the identity itself plus its resolved aliases).
func (q *Query) FindBySender(ctx context.Context, identities []string) (*Listing, error) {
	ids, err := common.NormalizeIdentities(identities)
	if err != nil {
		return nil, err
	}
	listing := &Listing{}
	seen := map[string]struct{}{}
	if err := q.walk(ctx, q.filters(common.TagSender, ids), listing, seen); err != nil {
		return nil, err
	}
	return listing, nil
}

// FindByRecipient enumerates records addressed to any of the caller's
// identities. The ledger indexes recipients positionally, one tag per slot,
// so each slot is walked as its own query and the hits are merged,
// deduplicated by content id.
func (q *Query) FindByRecipient(ctx context.Context, identities []string) (*Listing, error) {
	ids, err := common.NormalizeIdentities(identities)
	if err != nil {
		return nil, err
	}
	listing := &Listing{}
	seen := map[string]struct{}{}
	for slot := 0; slot < common.MaxRecipients; slot++ {
		tag := common.TagRecipient + strconv.Itoa(slot)
		if err := q.walk(ctx, q.filters(tag, ids), listing, seen); err != nil {
			return nil, err
		}
		if listing.Truncated {
			break
		}
	}
	return listing, nil
}

func (q *Query) filters(roleTag string, identities []string) []ledger.TagFilter {
	return []ledger.TagFilter{
		{Name: common.TagAppName, Values: []string{common.AppName}},
		{Name: roleTag, Values: identities},
	}
}

// walk follows the cursor chain until the backend reports no further pages
// or the safety cap is reached.
func (q *Query) walk(ctx context.Context, filters []ledger.TagFilter, listing *Listing, seen map[string]struct{}) error {
	cursor := ""
	for {
		result, err := q.searcher.Search(ctx, ledger.SearchQuery{
			Filters:  filters,
			PageSize: q.pageSize,
			Cursor:   cursor,
		})
		if err != nil {
			return fmt.Errorf("searching ledger: %w", err)
		}

		for _, hit := range result.Records {
			if _, ok := seen[hit.ID]; ok {
				continue
			}
			seen[hit.ID] = struct{}{}
			listing.Records = append(listing.Records, models.RecordFromTags(hit.ID, hit.Tags))
			if len(listing.Records) >= q.maxRecords {
				q.log.Warn(ctx, "record cap reached, returning partial listing", "cap", q.maxRecords)
				listing.Truncated = true
				return nil
			}
		}

		if !result.HasNextPage || result.Cursor == "" {
			return nil
		}
		cursor = result.Cursor
	}
}
