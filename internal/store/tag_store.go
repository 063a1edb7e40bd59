package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/tagbot/internal/model"
)

// CreateTag inserts a new tag. The UNIQUE(server_id, name) constraint is the
// authority on uniqueness: concurrent creators racing on the same key see at
// most one success, the rest get ErrDuplicateName.
func (s *SQLiteStore) CreateTag(
	ctx context.Context,
	serverID int64,
	name string,
	authorID int64,
	content string,
) (*model.Tag, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("tag name must not be empty")
	}
	if len(name) > model.MaxTagNameLen {
		return nil, fmt.Errorf("tag name exceeds %d characters", model.MaxTagNameLen)
	}
	if len(content) > model.MaxTagContentLen {
		return nil, fmt.Errorf("tag content exceeds %d characters", model.MaxTagContentLen)
	}

	now := time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tags (server_id, name, author_id, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		serverID, name, authorID, content, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("creating tag %q: %w", name, ErrDuplicateName)
		}
		return nil, fmt.Errorf("creating tag %q: %w", name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading new tag id: %w", err)
	}

	return &model.Tag{
		ID:        id,
		ServerID:  serverID,
		Name:      name,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// GetTag retrieves a tag by its (server_id, name) key.
func (s *SQLiteStore) GetTag(
	ctx context.Context,
	serverID int64,
	name string,
) (*model.Tag, error) {
	row := s.db.QueryRowxContext(ctx,
		"SELECT * FROM tags WHERE server_id = ? AND name = ? LIMIT 1",
		serverID, name,
	)

	tag, err := scanTagRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("tag %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("getting tag %q: %w", name, err)
	}

	return &tag, nil
}

// GetTagByID retrieves a tag by its surrogate id.
func (s *SQLiteStore) GetTagByID(ctx context.Context, id int64) (*model.Tag, error) {
	row := s.db.QueryRowxContext(ctx, "SELECT * FROM tags WHERE id = ?", id)

	tag, err := scanTagRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("tag %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("getting tag %d: %w", id, err)
	}

	return &tag, nil
}

// UpdateTagContent atomically replaces a tag's content and refreshes
// updated_at. Returns ErrNotFound if the key vanished before the update,
// e.g. deleted between form-open and form-submit.
func (s *SQLiteStore) UpdateTagContent(
	ctx context.Context,
	serverID int64,
	name string,
	content string,
) (*model.Tag, error) {
	if len(content) > model.MaxTagContentLen {
		return nil, fmt.Errorf("tag content exceeds %d characters", model.MaxTagContentLen)
	}

	now := time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		"UPDATE tags SET content = ?, updated_at = ? WHERE server_id = ? AND name = ?",
		content, now, serverID, name,
	)
	if err != nil {
		return nil, fmt.Errorf("updating tag %q: %w", name, err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return nil, fmt.Errorf("tag %q: %w", name, ErrNotFound)
	}

	return s.GetTag(ctx, serverID, name)
}

// DeleteTag removes a tag by its (server_id, name) key and returns the
// number of rows deleted (0 or 1). Deleting a non-existent key is not an
// error. With cascade enabled, autoresponses referencing the tag are
// removed in the same transaction; otherwise they are left orphaned.
func (s *SQLiteStore) DeleteTag(
	ctx context.Context,
	serverID int64,
	name string,
) (int64, error) {
	if !s.cascade {
		res, err := s.db.ExecContext(ctx,
			"DELETE FROM tags WHERE server_id = ? AND name = ?",
			serverID, name,
		)
		if err != nil {
			return 0, fmt.Errorf("deleting tag %q: %w", name, err)
		}
		return res.RowsAffected()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var tagID int64
	err = tx.GetContext(ctx, &tagID,
		"SELECT id FROM tags WHERE server_id = ? AND name = ?",
		serverID, name,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("resolving tag %q: %w", name, err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM autoresponses WHERE server_id = ? AND tag_id = ?",
		serverID, tagID,
	); err != nil {
		return 0, fmt.Errorf("cascading autoresponse delete for tag %q: %w", name, err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM tags WHERE id = ?", tagID)
	if err != nil {
		return 0, fmt.Errorf("deleting tag %q: %w", name, err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted rows: %w", err)
	}

	return deleted, tx.Commit()
}

// ListTags retrieves up to limit tags for a server in creation order.
// A limit of 0 or less returns all tags.
func (s *SQLiteStore) ListTags(
	ctx context.Context,
	serverID int64,
	limit int,
) ([]model.Tag, error) {
	query := "SELECT * FROM tags WHERE server_id = ? ORDER BY id"
	args := []interface{}{serverID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tags: %w", err)
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// CountTags returns the number of tags in a server.
func (s *SQLiteStore) CountTags(ctx context.Context, serverID int64) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM tags WHERE server_id = ?", serverID,
	)
	if err != nil {
		return 0, fmt.Errorf("counting tags: %w", err)
	}
	return count, nil
}

// scanTag scans a tag row from a sqlx.Rows result set.
func scanTag(rows *sqlx.Rows) (model.Tag, error) {
	var tag model.Tag
	err := rows.Scan(
		&tag.ID, &tag.ServerID, &tag.Name, &tag.AuthorID,
		&tag.Content, &tag.CreatedAt, &tag.UpdatedAt,
	)
	if err != nil {
		return model.Tag{}, fmt.Errorf("scanning tag row: %w", err)
	}
	return tag, nil
}

// scanTagRow scans a single tag row from a sqlx.Row.
func scanTagRow(row *sqlx.Row) (model.Tag, error) {
	var tag model.Tag
	err := row.Scan(
		&tag.ID, &tag.ServerID, &tag.Name, &tag.AuthorID,
		&tag.Content, &tag.CreatedAt, &tag.UpdatedAt,
	)
	if err != nil {
		return model.Tag{}, err
	}
	return tag, nil
}
