// Package workflow coordinates the two-phase create/edit flows for tags:
// a form is opened now and submitted later, possibly much later, so the
// existence check at open time is advisory only. The store call at submit
// time is the authority.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/tagbot/internal/model"
	"github.com/nhle/tagbot/internal/store"
)

// sessionTTL bounds how long an open form stays submittable. Abandoned
// forms expire and their submission resolves to OutcomeGone.
const sessionTTL = 15 * time.Minute

// Mode distinguishes create sessions from edit sessions.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// Outcome is the terminal result of a submitted workflow.
type Outcome int

const (
	// OutcomeCreated: the tag was inserted.
	OutcomeCreated Outcome = iota

	// OutcomeConflict: another tag claimed the name first.
	OutcomeConflict

	// OutcomeUpdated: the tag content was replaced.
	OutcomeUpdated

	// OutcomeGone: the target vanished between form-open and submit, or
	// the form session itself expired.
	OutcomeGone

	// OutcomeFailed: the storage layer failed for reasons unrelated to
	// the workflow; the operation was not retried.
	OutcomeFailed
)

// Session is an open form awaiting submission, addressed by an opaque token.
type Session struct {
	Token    string
	Mode     Mode
	ServerID int64
	AuthorID int64
	Name     string
	Content  string // current content, prefilled for edit forms
	OpenedAt time.Time
}

// Result is the outcome of a submit, with the affected tag on success and
// a short user-facing acknowledgment for every path.
type Result struct {
	Outcome Outcome
	Tag     *model.Tag
	Err     error
}

// Message returns the user-facing acknowledgment for the result. Failure
// messages are specific enough to tell the user whether to retry with a
// different name, abandon the edit, or just try again.
func (r Result) Message() string {
	switch r.Outcome {
	case OutcomeCreated:
		return "Your tag was created successfully."
	case OutcomeConflict:
		return "This tag already exists."
	case OutcomeUpdated:
		return "Your tag was updated successfully."
	case OutcomeGone:
		return "This tag no longer exists."
	default:
		return "Something went wrong. Please try again."
	}
}

// Controller orchestrates form sessions over the store.
type Controller struct {
	store store.Store

	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

// New creates a Controller backed by the given store.
func New(s store.Store) *Controller {
	return &Controller{
		store:    s,
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// BeginCreate opens a create form for the given name. The existence
// pre-check here only avoids presenting a useless form; SubmitCreate
// re-validates uniqueness atomically. Returns store.ErrDuplicateName when
// the name is already taken.
func (c *Controller) BeginCreate(
	ctx context.Context,
	serverID int64,
	authorID int64,
	name string,
) (*Session, error) {
	_, err := c.store.GetTag(ctx, serverID, name)
	if err == nil {
		return nil, fmt.Errorf("tag %q: %w", name, store.ErrDuplicateName)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("checking tag %q: %w", name, err)
	}

	return c.openSession(&Session{
		Mode:     ModeCreate,
		ServerID: serverID,
		AuthorID: authorID,
		Name:     name,
	}), nil
}

// BeginEdit opens an edit form prefilled with the tag's current content.
// Returns store.ErrNotFound when the tag does not exist.
func (c *Controller) BeginEdit(
	ctx context.Context,
	serverID int64,
	authorID int64,
	name string,
) (*Session, error) {
	tag, err := c.store.GetTag(ctx, serverID, name)
	if err != nil {
		return nil, err
	}

	return c.openSession(&Session{
		Mode:     ModeEdit,
		ServerID: serverID,
		AuthorID: authorID,
		Name:     tag.Name,
		Content:  tag.Content,
	}), nil
}

// SubmitCreate resolves a create session. The submitted name may differ
// from the one the form was opened with; the store insert is the authority
// on uniqueness either way.
func (c *Controller) SubmitCreate(
	ctx context.Context,
	token string,
	name string,
	content string,
) Result {
	sess := c.takeSession(token, ModeCreate)
	if sess == nil {
		return Result{Outcome: OutcomeGone}
	}

	tag, err := c.store.CreateTag(ctx, sess.ServerID, name, sess.AuthorID, content)
	if errors.Is(err, store.ErrDuplicateName) {
		return Result{Outcome: OutcomeConflict, Err: err}
	}
	if err != nil {
		return Result{Outcome: OutcomeFailed, Err: err}
	}

	return Result{Outcome: OutcomeCreated, Tag: tag}
}

// SubmitEdit resolves an edit session. A tag deleted between form-open and
// submit resolves to OutcomeGone, never a raw storage error.
func (c *Controller) SubmitEdit(
	ctx context.Context,
	token string,
	content string,
) Result {
	sess := c.takeSession(token, ModeEdit)
	if sess == nil {
		return Result{Outcome: OutcomeGone}
	}

	tag, err := c.store.UpdateTagContent(ctx, sess.ServerID, sess.Name, content)
	if errors.Is(err, store.ErrNotFound) {
		return Result{Outcome: OutcomeGone, Err: err}
	}
	if err != nil {
		return Result{Outcome: OutcomeFailed, Err: err}
	}

	return Result{Outcome: OutcomeUpdated, Tag: tag}
}

// Abandon discards an open session, e.g. when the user cancels the form.
// Unknown tokens are ignored.
func (c *Controller) Abandon(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, token)
}

// openSession assigns a token, records the session, and sweeps out any
// expired ones while the lock is held.
func (c *Controller) openSession(sess *Session) *Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for token, s := range c.sessions {
		if now.Sub(s.OpenedAt) > sessionTTL {
			delete(c.sessions, token)
		}
	}

	sess.Token = uuid.New().String()
	sess.OpenedAt = now
	c.sessions[sess.Token] = sess
	return sess
}

// takeSession removes and returns the session for token if it exists, has
// not expired, and matches the expected mode. Returns nil otherwise.
func (c *Controller) takeSession(token string, mode Mode) *Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, ok := c.sessions[token]
	if !ok {
		return nil
	}
	delete(c.sessions, token)

	if sess.Mode != mode || c.now().Sub(sess.OpenedAt) > sessionTTL {
		return nil
	}
	return sess
}
