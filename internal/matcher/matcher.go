// Package matcher scans a server's autoresponses against inbound message
// text and resolves the first satisfied trigger to its tag content.
package matcher

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/nhle/tagbot/internal/model"
	"github.com/nhle/tagbot/internal/store"
)

// Matcher finds the single autoresponse to emit for a message, if any.
// It is safe for concurrent use.
type Matcher struct {
	store store.Store

	// Compiled pattern triggers, keyed by trigger source. A nil entry
	// records a trigger that failed to compile so it is not retried on
	// every message.
	mu       sync.Mutex
	patterns map[string]*regexp.Regexp
}

// New creates a Matcher backed by the given store.
func New(s store.Store) *Matcher {
	return &Matcher{
		store:    s,
		patterns: make(map[string]*regexp.Regexp),
	}
}

// FindResponse scans the server's autoresponses in creation order and
// returns the content of the referenced tag for the first trigger satisfied
// by text. Entries whose tag has been deleted (orphans) and pattern
// triggers that fail to compile are skipped so they never hide a valid
// later match. ok is false when nothing matched.
func (m *Matcher) FindResponse(
	ctx context.Context,
	serverID int64,
	text string,
) (content string, ok bool, err error) {
	responses, err := m.store.ListAutoresponses(ctx, serverID)
	if err != nil {
		return "", false, fmt.Errorf("listing autoresponses: %w", err)
	}

	for _, ar := range responses {
		if !m.triggered(ar, text) {
			continue
		}

		tag, err := m.store.GetTagByID(ctx, ar.TagID)
		if errors.Is(err, store.ErrNotFound) {
			// Orphaned reference; keep scanning.
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("resolving tag for autoresponse %d: %w", ar.ID, err)
		}
		if tag.ServerID != ar.ServerID {
			// The tag moved out from under the binding; treat as orphaned.
			continue
		}

		return tag.Content, true, nil
	}

	return "", false, nil
}

// triggered reports whether text satisfies the autoresponse's trigger.
func (m *Matcher) triggered(ar model.Autoresponse, text string) bool {
	switch ar.MatchType {
	case model.MatchPattern:
		re := m.compile(ar.Trigger)
		return re != nil && re.MatchString(text)
	default:
		return strings.Contains(text, ar.Trigger)
	}
}

// compile returns the cached compiled pattern for trigger, compiling it on
// first use. Returns nil for patterns that do not compile.
func (m *Matcher) compile(trigger string) *regexp.Regexp {
	m.mu.Lock()
	defer m.mu.Unlock()

	re, cached := m.patterns[trigger]
	if cached {
		return re
	}

	re, err := regexp.Compile(trigger)
	if err != nil {
		re = nil
	}
	m.patterns[trigger] = re
	return re
}
