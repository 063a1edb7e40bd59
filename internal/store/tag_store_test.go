package store_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/nhle/tagbot/internal/store"
	"github.com/nhle/tagbot/tests/testutil"
)

func TestCreateAndGetTag(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	created, err := s.CreateTag(ctx, 1, "rules", 42, "Be nice")
	if err != nil {
		t.Fatalf("creating tag: %v", err)
	}
	if created.ID == 0 {
		t.Error("expected a non-zero surrogate id")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	got, err := s.GetTag(ctx, 1, "rules")
	if err != nil {
		t.Fatalf("getting tag: %v", err)
	}
	if got.Content != "Be nice" {
		t.Errorf("content = %q, want %q", got.Content, "Be nice")
	}
	if got.AuthorID != 42 {
		t.Errorf("author_id = %d, want 42", got.AuthorID)
	}
}

func TestCreateTagDuplicateName(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateTag(ctx, 1, "rules", 1, "first"); err != nil {
		t.Fatalf("creating tag: %v", err)
	}

	_, err := s.CreateTag(ctx, 1, "rules", 2, "second")
	if !errors.Is(err, store.ErrDuplicateName) {
		t.Fatalf("err = %v, want ErrDuplicateName", err)
	}

	// The same name in another server is a different key.
	if _, err := s.CreateTag(ctx, 2, "rules", 2, "other server"); err != nil {
		t.Fatalf("creating tag in another server: %v", err)
	}
}

func TestCreateTagConcurrentSameKey(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	const racers = 8

	var wg sync.WaitGroup
	errCh := make(chan error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateTag(ctx, 1, "contested", 1, "mine")
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	successes := 0
	for err := range errCh {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, store.ErrDuplicateName):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Errorf("successes = %d, want exactly 1", successes)
	}

	count, err := s.CountTags(ctx, 1)
	if err != nil {
		t.Fatalf("counting tags: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestCreateTagValidation(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateTag(ctx, 1, "   ", 1, "x"); err == nil {
		t.Error("expected error for blank name")
	}
	if _, err := s.CreateTag(ctx, 1, strings.Repeat("n", 101), 1, "x"); err == nil {
		t.Error("expected error for oversized name")
	}
	if _, err := s.CreateTag(ctx, 1, "big", 1, strings.Repeat("c", 2001)); err == nil {
		t.Error("expected error for oversized content")
	}
}

func TestGetTagNotFound(t *testing.T) {
	s := testutil.NewTestStore(t)

	_, err := s.GetTag(context.Background(), 1, "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateTagContent(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	created, err := s.CreateTag(ctx, 1, "rules", 1, "old")
	if err != nil {
		t.Fatalf("creating tag: %v", err)
	}

	updated, err := s.UpdateTagContent(ctx, 1, "rules", "new")
	if err != nil {
		t.Fatalf("updating tag: %v", err)
	}
	if updated.Content != "new" {
		t.Errorf("content = %q, want %q", updated.Content, "new")
	}
	if updated.UpdatedAt.Before(created.UpdatedAt) {
		t.Errorf(
			"updated_at went backwards: %v -> %v",
			created.UpdatedAt, updated.UpdatedAt,
		)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("created_at changed on update")
	}
}

func TestUpdateTagContentMissingKey(t *testing.T) {
	s := testutil.NewTestStore(t)

	_, err := s.UpdateTagContent(context.Background(), 1, "missing", "x")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteTagIdempotent(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateTag(ctx, 1, "rules", 1, "Be nice"); err != nil {
		t.Fatalf("creating tag: %v", err)
	}

	deleted, err := s.DeleteTag(ctx, 1, "rules")
	if err != nil {
		t.Fatalf("deleting tag: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	if _, err := s.GetTag(ctx, 1, "rules"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound after delete", err)
	}

	deleted, err = s.DeleteTag(ctx, 1, "rules")
	if err != nil {
		t.Fatalf("re-deleting tag: %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted = %d, want 0 for missing key", deleted)
	}
}

func TestDeleteTagCascade(t *testing.T) {
	s := testutil.NewTestStore(t)
	s.SetCascadeDelete(true)
	ctx := context.Background()

	tag, err := s.CreateTag(ctx, 1, "greet", 1, "hi")
	if err != nil {
		t.Fatalf("creating tag: %v", err)
	}
	if _, err := s.CreateAutoresponse(ctx, 1, "hello", "", 1, tag.ID); err != nil {
		t.Fatalf("creating autoresponse: %v", err)
	}

	deleted, err := s.DeleteTag(ctx, 1, "greet")
	if err != nil {
		t.Fatalf("deleting tag: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	responses, err := s.ListAutoresponses(ctx, 1)
	if err != nil {
		t.Fatalf("listing autoresponses: %v", err)
	}
	if len(responses) != 0 {
		t.Errorf("autoresponses remaining = %d, want 0 after cascade", len(responses))
	}
}

func TestListTagsOrderAndLimit(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"alpha", "bravo", "charlie"} {
		if _, err := s.CreateTag(ctx, 1, name, 1, name); err != nil {
			t.Fatalf("creating tag %q: %v", name, err)
		}
	}
	if _, err := s.CreateTag(ctx, 2, "other", 1, "other"); err != nil {
		t.Fatalf("creating tag in server 2: %v", err)
	}

	tags, err := s.ListTags(ctx, 1, 2)
	if err != nil {
		t.Fatalf("listing tags: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("len = %d, want 2", len(tags))
	}
	if tags[0].Name != "alpha" || tags[1].Name != "bravo" {
		t.Errorf("order = [%s, %s], want creation order", tags[0].Name, tags[1].Name)
	}

	all, err := s.ListTags(ctx, 1, 0)
	if err != nil {
		t.Fatalf("listing all tags: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("len = %d, want 3 scoped to server 1", len(all))
	}
}
