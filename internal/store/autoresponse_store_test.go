package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nhle/tagbot/internal/model"
	"github.com/nhle/tagbot/internal/store"
	"github.com/nhle/tagbot/tests/testutil"
)

func TestCreateAutoresponse(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	tag, err := s.CreateTag(ctx, 1, "greet", 1, "hi there")
	if err != nil {
		t.Fatalf("creating tag: %v", err)
	}

	ar, err := s.CreateAutoresponse(ctx, 1, "hello", model.MatchLiteral, 1, tag.ID)
	if err != nil {
		t.Fatalf("creating autoresponse: %v", err)
	}
	if ar.ID == 0 {
		t.Error("expected a non-zero surrogate id")
	}
	if ar.MatchType != model.MatchLiteral {
		t.Errorf("match_type = %q, want literal", ar.MatchType)
	}
}

func TestCreateAutoresponseDefaultsToLiteral(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	tag, err := s.CreateTag(ctx, 1, "greet", 1, "hi")
	if err != nil {
		t.Fatalf("creating tag: %v", err)
	}

	ar, err := s.CreateAutoresponse(ctx, 1, "hello", "", 1, tag.ID)
	if err != nil {
		t.Fatalf("creating autoresponse: %v", err)
	}
	if ar.MatchType != model.MatchLiteral {
		t.Errorf("match_type = %q, want literal default", ar.MatchType)
	}
}

func TestCreateAutoresponseMissingTag(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	_, err := s.CreateAutoresponse(ctx, 1, "hello", model.MatchLiteral, 1, 999)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateAutoresponseWrongServer(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	tag, err := s.CreateTag(ctx, 1, "greet", 1, "hi")
	if err != nil {
		t.Fatalf("creating tag: %v", err)
	}

	// The tag lives in server 1; binding it from server 2 must fail.
	_, err = s.CreateAutoresponse(ctx, 2, "hello", model.MatchLiteral, 1, tag.ID)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for cross-server reference", err)
	}
}

func TestCreateAutoresponseInvalidPattern(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	tag, err := s.CreateTag(ctx, 1, "greet", 1, "hi")
	if err != nil {
		t.Fatalf("creating tag: %v", err)
	}

	if _, err := s.CreateAutoresponse(ctx, 1, "(unclosed", model.MatchPattern, 1, tag.ID); err == nil {
		t.Error("expected error for invalid pattern trigger")
	}
}

func TestListAutoresponsesCreationOrder(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	tag, err := s.CreateTag(ctx, 1, "greet", 1, "hi")
	if err != nil {
		t.Fatalf("creating tag: %v", err)
	}

	for _, trigger := range []string{"first", "second", "third"} {
		if _, err := s.CreateAutoresponse(ctx, 1, trigger, model.MatchLiteral, 1, tag.ID); err != nil {
			t.Fatalf("creating autoresponse %q: %v", trigger, err)
		}
	}

	responses, err := s.ListAutoresponses(ctx, 1)
	if err != nil {
		t.Fatalf("listing autoresponses: %v", err)
	}
	if len(responses) != 3 {
		t.Fatalf("len = %d, want 3", len(responses))
	}
	for i, want := range []string{"first", "second", "third"} {
		if responses[i].Trigger != want {
			t.Errorf("responses[%d].Trigger = %q, want %q", i, responses[i].Trigger, want)
		}
	}
}

func TestDeleteAutoresponseScopedToServer(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	tag, err := s.CreateTag(ctx, 1, "greet", 1, "hi")
	if err != nil {
		t.Fatalf("creating tag: %v", err)
	}
	ar, err := s.CreateAutoresponse(ctx, 1, "hello", model.MatchLiteral, 1, tag.ID)
	if err != nil {
		t.Fatalf("creating autoresponse: %v", err)
	}

	deleted, err := s.DeleteAutoresponse(ctx, 2, ar.ID)
	if err != nil {
		t.Fatalf("deleting from wrong server: %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted = %d, want 0 from another server", deleted)
	}

	deleted, err = s.DeleteAutoresponse(ctx, 1, ar.ID)
	if err != nil {
		t.Fatalf("deleting autoresponse: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
}

func TestPruneOrphanAutoresponses(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	keep, err := s.CreateTag(ctx, 1, "keep", 1, "kept")
	if err != nil {
		t.Fatalf("creating tag: %v", err)
	}
	doomed, err := s.CreateTag(ctx, 1, "doomed", 1, "going away")
	if err != nil {
		t.Fatalf("creating tag: %v", err)
	}

	if _, err := s.CreateAutoresponse(ctx, 1, "a", model.MatchLiteral, 1, keep.ID); err != nil {
		t.Fatalf("creating autoresponse: %v", err)
	}
	if _, err := s.CreateAutoresponse(ctx, 1, "b", model.MatchLiteral, 1, doomed.ID); err != nil {
		t.Fatalf("creating autoresponse: %v", err)
	}

	if _, err := s.DeleteTag(ctx, 1, "doomed"); err != nil {
		t.Fatalf("deleting tag: %v", err)
	}

	pruned, err := s.PruneOrphanAutoresponses(ctx, 1)
	if err != nil {
		t.Fatalf("pruning: %v", err)
	}
	if pruned != 1 {
		t.Errorf("pruned = %d, want 1", pruned)
	}

	responses, err := s.ListAutoresponses(ctx, 1)
	if err != nil {
		t.Fatalf("listing autoresponses: %v", err)
	}
	if len(responses) != 1 || responses[0].TagID != keep.ID {
		t.Errorf("expected only the live binding to survive, got %+v", responses)
	}
}
