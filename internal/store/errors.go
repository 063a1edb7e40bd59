package store

import (
	"errors"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Sentinel errors returned by Store operations. Callers test them with
// errors.Is; the workflow layer maps them to user-facing outcomes.
var (
	// ErrDuplicateName is returned when a tag create collides with an
	// existing (server_id, name) pair.
	ErrDuplicateName = errors.New("tag name already exists in this server")

	// ErrNotFound is returned when an operation targets a key that does
	// not exist at execution time.
	ErrNotFound = errors.New("record not found")
)

// isUniqueViolation reports whether err is a SQLite unique-constraint
// failure, using the driver's typed error.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return false
}
