package model

import "time"

// MatchType selects how an autoresponse trigger is tested against message text.
type MatchType string

const (
	// MatchLiteral treats the trigger as a case-sensitive substring.
	MatchLiteral MatchType = "literal"

	// MatchPattern treats the trigger as a regular expression.
	MatchPattern MatchType = "pattern"
)

// Valid reports whether mt is a known match type.
func (mt MatchType) Valid() bool {
	return mt == MatchLiteral || mt == MatchPattern
}

// Autoresponse binds a trigger to a tag within a server. When an inbound
// message satisfies the trigger, the referenced tag's content is emitted.
// TagID is a soft reference: the tag may have been deleted since, in which
// case the row is orphaned and must be skipped, never dereferenced.
type Autoresponse struct {
	ID        int64     `json:"id" db:"id"`
	ServerID  int64     `json:"server_id" db:"server_id"`
	Trigger   string    `json:"trigger" db:"trigger"`
	MatchType MatchType `json:"match_type" db:"match_type"`
	AuthorID  int64     `json:"author_id" db:"author_id"`
	TagID     int64     `json:"tag_id" db:"tag_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
