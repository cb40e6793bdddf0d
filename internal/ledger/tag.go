// Package ledger implements the client of the external append-only,
// content-addressed, tag-queryable store. Payloads are opaque to the ledger;
// the key/value tags attached to a transaction are the only indexed surface.
package ledger

// Tag is a key/value pair attached to a transaction.
type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// FindTag returns the value of the first tag with the given name.
func FindTag(tags []Tag, name string) (string, bool) {
	for _, t := range tags {
		if t.Name == name {
			return t.Value, true
		}
	}
	return "", false
}

// TagFilter matches records whose tag name carries any of the values.
type TagFilter struct {
	Name   string   `json:"name"`
	Values []string `json:"acceptableValues"`
}

// SearchQuery is one page request against the ledger's tag search endpoint.
type SearchQuery struct {
	Filters  []TagFilter `json:"filters"`
	PageSize int         `json:"pageSize"`
	Cursor   string      `json:"cursor,omitempty"`
}

// SearchRecord is one search hit: the content id plus the record's tags.
type SearchRecord struct {
	ID     string `json:"id"`
	Tags   []Tag  `json:"tags"`
	Cursor string `json:"cursor"`
}

// SearchResult is one page of search hits. Cursor is opaque; HasNextPage
// reports whether another page exists.
type SearchResult struct {
	Records     []SearchRecord `json:"records"`
	Cursor      string         `json:"cursor,omitempty"`
	HasNextPage bool           `json:"hasNextPage"`
}
