package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/tagbot/internal/model"
)

// CreateAutoresponse inserts a new trigger-to-tag binding. The referenced
// tag must exist in the same server at insert time, otherwise ErrNotFound.
// Pattern triggers must be valid regular expressions.
func (s *SQLiteStore) CreateAutoresponse(
	ctx context.Context,
	serverID int64,
	trigger string,
	matchType model.MatchType,
	authorID int64,
	tagID int64,
) (*model.Autoresponse, error) {
	if strings.TrimSpace(trigger) == "" {
		return nil, fmt.Errorf("trigger must not be empty")
	}
	if len(trigger) > model.MaxTriggerLen {
		return nil, fmt.Errorf("trigger exceeds %d characters", model.MaxTriggerLen)
	}
	if matchType == "" {
		matchType = model.MatchLiteral
	}
	if !matchType.Valid() {
		return nil, fmt.Errorf("unknown match type %q", matchType)
	}
	if matchType == model.MatchPattern {
		if _, err := regexp.Compile(trigger); err != nil {
			return nil, fmt.Errorf("compiling trigger pattern: %w", err)
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var tagServerID int64
	err = tx.GetContext(ctx, &tagServerID, "SELECT server_id FROM tags WHERE id = ?", tagID)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && tagServerID != serverID) {
		return nil, fmt.Errorf("tag %d in server %d: %w", tagID, serverID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("resolving tag %d: %w", tagID, err)
	}

	now := time.Now().UTC()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO autoresponses (server_id, "trigger", match_type, author_id, tag_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		serverID, trigger, string(matchType), authorID, tagID, now,
	)
	if err != nil {
		return nil, fmt.Errorf("creating autoresponse: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading new autoresponse id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing autoresponse: %w", err)
	}

	return &model.Autoresponse{
		ID:        id,
		ServerID:  serverID,
		Trigger:   trigger,
		MatchType: matchType,
		AuthorID:  authorID,
		TagID:     tagID,
		CreatedAt: now,
	}, nil
}

// ListAutoresponses retrieves all autoresponses for a server in creation
// order. The matcher relies on this ordering for first-match stability.
func (s *SQLiteStore) ListAutoresponses(
	ctx context.Context,
	serverID int64,
) ([]model.Autoresponse, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT * FROM autoresponses WHERE server_id = ? ORDER BY id",
		serverID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying autoresponses: %w", err)
	}
	defer rows.Close()

	var responses []model.Autoresponse
	for rows.Next() {
		ar, err := scanAutoresponse(rows)
		if err != nil {
			return nil, err
		}
		responses = append(responses, ar)
	}
	return responses, rows.Err()
}

// DeleteAutoresponse removes an autoresponse by id, scoped to a server so
// one community cannot delete another's bindings. Returns the number of
// rows deleted (0 or 1); deleting a non-existent id is not an error.
func (s *SQLiteStore) DeleteAutoresponse(
	ctx context.Context,
	serverID int64,
	id int64,
) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM autoresponses WHERE server_id = ? AND id = ?",
		serverID, id,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting autoresponse %d: %w", id, err)
	}
	return res.RowsAffected()
}

// PruneOrphanAutoresponses removes autoresponses whose referenced tag no
// longer exists and returns the number removed. Orphans are harmless to
// the matcher; this is housekeeping, not a correctness requirement.
func (s *SQLiteStore) PruneOrphanAutoresponses(
	ctx context.Context,
	serverID int64,
) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM autoresponses
		WHERE server_id = ?
		  AND tag_id NOT IN (SELECT id FROM tags)`,
		serverID,
	)
	if err != nil {
		return 0, fmt.Errorf("pruning orphan autoresponses: %w", err)
	}
	return res.RowsAffected()
}

// scanAutoresponse scans an autoresponse row from a sqlx.Rows result set.
func scanAutoresponse(rows *sqlx.Rows) (model.Autoresponse, error) {
	var (
		ar        model.Autoresponse
		matchType string
	)
	err := rows.Scan(
		&ar.ID, &ar.ServerID, &ar.Trigger, &matchType,
		&ar.AuthorID, &ar.TagID, &ar.CreatedAt,
	)
	if err != nil {
		return model.Autoresponse{}, fmt.Errorf("scanning autoresponse row: %w", err)
	}
	ar.MatchType = model.MatchType(matchType)
	return ar, nil
}
