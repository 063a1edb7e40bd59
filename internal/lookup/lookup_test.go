package lookup_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/nhle/tagbot/internal/lookup"
	"github.com/nhle/tagbot/tests/testutil"
)

func TestSuggestCaseInsensitive(t *testing.T) {
	s := testutil.NewTestStore(t)
	l := lookup.New(s)
	ctx := context.Background()

	for _, name := range []string{"Rules", "ruler", "welcome"} {
		if _, err := s.CreateTag(ctx, 1, name, 1, name); err != nil {
			t.Fatalf("creating tag %q: %v", name, err)
		}
	}

	names, err := l.Suggest(ctx, 1, "RUL", 0)
	if err != nil {
		t.Fatalf("suggesting: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("names = %v, want the two rul* tags", names)
	}
	if names[0] != "Rules" || names[1] != "ruler" {
		t.Errorf("names = %v, want creation order with original casing", names)
	}
}

func TestSuggestScopedToServer(t *testing.T) {
	s := testutil.NewTestStore(t)
	l := lookup.New(s)
	ctx := context.Background()

	if _, err := s.CreateTag(ctx, 1, "rules", 1, "x"); err != nil {
		t.Fatalf("creating tag: %v", err)
	}
	if _, err := s.CreateTag(ctx, 2, "rules-two", 1, "x"); err != nil {
		t.Fatalf("creating tag: %v", err)
	}

	names, err := l.Suggest(ctx, 1, "rules", 0)
	if err != nil {
		t.Fatalf("suggesting: %v", err)
	}
	if len(names) != 1 || names[0] != "rules" {
		t.Errorf("names = %v, want only server 1's tag", names)
	}
}

func TestSuggestEmptyQueryReturnsPage(t *testing.T) {
	s := testutil.NewTestStore(t)
	l := lookup.New(s)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		name := fmt.Sprintf("tag-%d", i)
		if _, err := s.CreateTag(ctx, 1, name, 1, name); err != nil {
			t.Fatalf("creating tag %q: %v", name, err)
		}
	}

	names, err := l.Suggest(ctx, 1, "", 0)
	if err != nil {
		t.Fatalf("suggesting: %v", err)
	}
	if len(names) != 3 {
		t.Errorf("names = %v, want all three", names)
	}
}

// The candidate page is bounded before filtering, so matches beyond the
// page are silently omitted. That truncation is part of the contract.
func TestSuggestFiltersWithinBoundedPage(t *testing.T) {
	s := testutil.NewTestStore(t)
	l := lookup.New(s)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		name := fmt.Sprintf("filler-%d", i)
		if _, err := s.CreateTag(ctx, 1, name, 1, name); err != nil {
			t.Fatalf("creating tag %q: %v", name, err)
		}
	}
	if _, err := s.CreateTag(ctx, 1, "target", 1, "x"); err != nil {
		t.Fatalf("creating tag: %v", err)
	}

	names, err := l.Suggest(ctx, 1, "target", 3)
	if err != nil {
		t.Fatalf("suggesting: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("names = %v, want none: the match lies outside the page", names)
	}

	names, err = l.Suggest(ctx, 1, "target", 10)
	if err != nil {
		t.Fatalf("suggesting: %v", err)
	}
	if len(names) != 1 || names[0] != "target" {
		t.Errorf("names = %v, want the match inside a wider page", names)
	}
}
