package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
//
// autoresponses.tag_id deliberately carries no foreign key: deleting a tag
// may orphan rows, and orphans are skipped by the matcher rather than
// blocked at delete time.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS tags (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	server_id  INTEGER NOT NULL,
	name       TEXT NOT NULL CHECK(length(name) <= 100),
	author_id  INTEGER NOT NULL,
	content    TEXT NOT NULL DEFAULT '' CHECK(length(content) <= 2000),
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE(server_id, name)
);

CREATE INDEX IF NOT EXISTS idx_tags_server_id ON tags(server_id);

CREATE TABLE IF NOT EXISTS autoresponses (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	server_id  INTEGER NOT NULL,
	"trigger"  TEXT NOT NULL CHECK(length("trigger") <= 4000),
	match_type TEXT NOT NULL DEFAULT 'literal' CHECK(match_type IN ('literal', 'pattern')),
	author_id  INTEGER NOT NULL,
	tag_id     INTEGER NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_autoresponses_server_id ON autoresponses(server_id);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
