package core

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// memPostDB implements PostDB in memory.
type memPostDB struct {
	mu    sync.Mutex
	posts map[string]Post
	fail  error // returned by every call if not nil
}

func newMemPostDB() *memPostDB {
	return &memPostDB{posts: make(map[string]Post)}
}

func (db *memPostDB) DeletePost(_ context.Context, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.fail != nil {
		return db.fail
	}
	if _, ok := db.posts[id]; !ok {
		return ErrNotFound
	}
	delete(db.posts, id)
	return nil
}

func (db *memPostDB) GetPost(_ context.Context, id string) (*Post, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.fail != nil {
		return nil, db.fail
	}
	p, ok := db.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (db *memPostDB) InsertPost(_ context.Context, p *Post) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.fail != nil {
		return db.fail
	}
	if _, ok := db.posts[p.ID]; ok {
		return errors.New("duplicate id")
	}
	db.posts[p.ID] = *p
	return nil
}

func (db *memPostDB) list(keep func(Post) bool) ([]*Post, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.fail != nil {
		return nil, db.fail
	}
	var result = []*Post{}
	for _, p := range db.posts {
		if keep(p) {
			p := p
			result = append(result, &p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (db *memPostDB) ListDrafts(_ context.Context, ownerID string) ([]*Post, error) {
	return db.list(func(p Post) bool {
		return !p.Published && p.OwnerID == ownerID
	})
}

func (db *memPostDB) ListPublished(_ context.Context) ([]*Post, error) {
	return db.list(func(p Post) bool {
		return p.Published
	})
}

func (db *memPostDB) SetPublished(_ context.Context, id string, ts time.Time) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.fail != nil {
		return db.fail
	}
	p, ok := db.posts[id]
	if !ok {
		return ErrNotFound
	}
	if !p.Published {
		p.Published = true
		p.UpdatedAt = ts
		db.posts[id] = p
	}
	return nil
}
