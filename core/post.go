package core

import (
	"context"
	"time"
)

// A Post is a draft if Published is false. Published never goes back to false.
type Post struct {
	ID         string
	Title      string
	Body       string // markdown
	Published  bool
	OwnerID    string // immutable
	AuthorName string // read only, joined from the owner
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PostDB is the durable storage of posts. It returns ErrNotFound if a post does not exist.
// Lists are ordered by creation time, most recent first.
type PostDB interface {
	DeletePost(ctx context.Context, id string) error // ErrNotFound if no row was deleted
	GetPost(ctx context.Context, id string) (*Post, error)
	InsertPost(ctx context.Context, p *Post) error
	ListDrafts(ctx context.Context, ownerID string) ([]*Post, error)
	ListPublished(ctx context.Context) ([]*Post, error)
	SetPublished(ctx context.Context, id string, ts time.Time) error // no-op if already published, ErrNotFound if absent
}
