// Package lookup provides bounded tag-name suggestions for interactive
// autocomplete.
package lookup

import (
	"context"
	"fmt"
	"strings"

	"github.com/nhle/tagbot/internal/store"
)

// DefaultLimit is the suggestion page size when the caller passes no limit.
const DefaultLimit = 25

// Lookup serves partial-name tag suggestions.
type Lookup struct {
	store store.Store
}

// New creates a Lookup backed by the given store.
func New(s store.Store) *Lookup {
	return &Lookup{store: s}
}

// Suggest returns up to limit tag names from the server whose name contains
// query, compared case-insensitively. The candidate page is the first limit
// tags by creation order and the filter is applied to that page only, so a
// server holding more tags than limit may omit true matches. That
// truncation is deliberate and mirrors how the suggestion surface pages.
func (l *Lookup) Suggest(
	ctx context.Context,
	serverID int64,
	query string,
	limit int,
) ([]string, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	tags, err := l.store.ListTags(ctx, serverID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing tags for suggestions: %w", err)
	}

	q := strings.ToLower(query)

	var names []string
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag.Name), q) {
			names = append(names, tag.Name)
		}
	}
	return names, nil
}
