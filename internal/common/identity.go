package common

import (
	"fmt"
	"strings"
)

// NormalizeIdentity lowercases and trims an identity string. Identities are
// compared case-insensitively everywhere, so this is applied uniformly at
// ingest and at lookup instead of ad hoc fallback chains at each call site.
func NormalizeIdentity(identity string) (string, error) {
	id := strings.ToLower(strings.TrimSpace(identity))
	if id == "" {
		return "", fmt.Errorf("%w: empty identity", ErrInvalidArgument)
	}
	return id, nil
}

// NormalizeIdentities normalizes every identity and removes duplicates,
// preserving first-seen order.
func NormalizeIdentities(identities []string) ([]string, error) {
	seen := make(map[string]struct{}, len(identities))
	result := make([]string, 0, len(identities))
	for _, identity := range identities {
		id, err := NormalizeIdentity(identity)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result, nil
}
