package model

import "time"

// Limits applied to tag and trigger fields before they reach storage. These
// mirror the CHECK constraints in the schema.
const (
	MaxTagNameLen    = 100
	MaxTagContentLen = 2000
	MaxTriggerLen    = 4000
)

// Tag is a named, community-scoped text snippet. Names are unique within a
// server; the surrogate ID is unique globally and never reused.
type Tag struct {
	ID        int64     `json:"id" db:"id"`
	ServerID  int64     `json:"server_id" db:"server_id"`
	Name      string    `json:"name" db:"name"`
	AuthorID  int64     `json:"author_id" db:"author_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
