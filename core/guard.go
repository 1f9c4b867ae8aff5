package core

import (
	"context"
)

// Guard decides whether an identity may mutate a post. It never mutates anything itself.
type Guard struct {
	Posts PostDB
}

// Authorize returns nil if the identity owns the post. Otherwise it returns the first applicable denial:
//
//	ErrUnauthenticated  identity is anonymous, the store is not asked
//	ErrNotFound         no post with that id exists
//	ErrForbidden        the post is owned by someone else
//
// Store faults match ErrStoreUnavailable.
func (g *Guard) Authorize(ctx context.Context, id Identity, postID string) error {
	_, err := g.authorize(ctx, id, postID)
	return err
}

// authorize returns the post it looked up, so callers don't need a second read.
func (g *Guard) authorize(ctx context.Context, id Identity, postID string) (*Post, error) {
	if id.IsAnonymous() {
		return nil, ErrUnauthenticated
	}
	p, err := g.Posts.GetPost(ctx, postID)
	if err != nil {
		return nil, StoreFault("authorize", err)
	}
	if !id.Owns(p) {
		return nil, ErrForbidden
	}
	return p, nil
}
