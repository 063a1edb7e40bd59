package store

import (
	"context"

	"github.com/nhle/tagbot/internal/model"
)

// Store defines the persistence interface for tags and autoresponses.
// All name-addressed operations are scoped by server ID; names are unique
// per server, enforced at commit time by the storage engine.
type Store interface {
	// === Tags ===

	CreateTag(ctx context.Context, serverID int64, name string, authorID int64, content string) (*model.Tag, error)
	GetTag(ctx context.Context, serverID int64, name string) (*model.Tag, error)
	GetTagByID(ctx context.Context, id int64) (*model.Tag, error)
	UpdateTagContent(ctx context.Context, serverID int64, name string, content string) (*model.Tag, error)
	DeleteTag(ctx context.Context, serverID int64, name string) (int64, error)
	ListTags(ctx context.Context, serverID int64, limit int) ([]model.Tag, error)
	CountTags(ctx context.Context, serverID int64) (int, error)

	// === Autoresponses ===

	CreateAutoresponse(ctx context.Context, serverID int64, trigger string, matchType model.MatchType, authorID int64, tagID int64) (*model.Autoresponse, error)
	ListAutoresponses(ctx context.Context, serverID int64) ([]model.Autoresponse, error)
	DeleteAutoresponse(ctx context.Context, serverID int64, id int64) (int64, error)
	PruneOrphanAutoresponses(ctx context.Context, serverID int64) (int64, error)
}
