package sqldb

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wansing/blogr/core"
)

func openTestDB(t *testing.T) (*UserDB, *PostDB) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1) // each connection would get its own in-memory database
	t.Cleanup(func() { db.Close() })
	return NewUserDB(db, SQLite3), NewPostDB(db, SQLite3)
}

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func insertUser(t *testing.T, users *UserDB, id, email, name string) {
	require.NoError(t, users.InsertUser(context.Background(), &core.User{
		ID:        id,
		Email:     email,
		Name:      name,
		CreatedAt: epoch,
	}))
}

func insertPost(t *testing.T, posts *PostDB, id, owner string, published bool, age time.Duration) {
	require.NoError(t, posts.InsertPost(context.Background(), &core.Post{
		ID:        id,
		Title:     "title " + id,
		Body:      "body " + id,
		Published: published,
		OwnerID:   owner,
		CreatedAt: epoch.Add(-age),
		UpdatedAt: epoch.Add(-age),
	}))
}

func ids(posts []*core.Post) []string {
	var result = []string{}
	for _, p := range posts {
		result = append(result, p.ID)
	}
	return result
}

func TestRebind(t *testing.T) {
	var query = "UPDATE posts SET published = ? WHERE id = ? AND published = ?"
	assert.Equal(t, query, SQLite3.rebind(query))
	assert.Equal(t, query, MySQL.rebind(query))
	assert.Equal(t, "UPDATE posts SET published = $1 WHERE id = $2 AND published = $3", Postgres.rebind(query))
}

func TestUserDB(t *testing.T) {
	var ctx = context.Background()
	users, _ := openTestDB(t)

	insertUser(t, users, "u1", "alice@prisma.io", "Alice")

	u, err := users.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice@prisma.io", u.Email)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, "", u.PasswordHash)
	assert.True(t, epoch.Equal(u.CreatedAt))

	u, err = users.GetUserByEmail(ctx, "alice@prisma.io")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = users.GetUser(ctx, "nobody")
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = users.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, users.SetPasswordHash(ctx, "u1", "hash"))
	u, err = users.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "hash", u.PasswordHash)
	assert.ErrorIs(t, users.SetPasswordHash(ctx, "nobody", "hash"), core.ErrNotFound)

	// email is unique
	assert.Error(t, users.InsertUser(ctx, &core.User{ID: "u2", Email: "alice@prisma.io"}))
}

func TestPostDB(t *testing.T) {
	var ctx = context.Background()
	users, posts := openTestDB(t)

	insertUser(t, users, "alice", "alice@example.com", "Alice")
	insertUser(t, users, "bob", "bob@example.com", "Bob")

	insertPost(t, posts, "old", "alice", true, 3*time.Hour)
	insertPost(t, posts, "new", "bob", true, time.Hour)
	insertPost(t, posts, "draft-a", "alice", false, 2*time.Hour)
	insertPost(t, posts, "draft-a2", "alice", false, 0)
	insertPost(t, posts, "draft-b", "bob", false, 0)

	t.Run("get", func(t *testing.T) {
		p, err := posts.GetPost(ctx, "draft-a")
		require.NoError(t, err)
		assert.Equal(t, "title draft-a", p.Title)
		assert.Equal(t, "body draft-a", p.Body)
		assert.False(t, p.Published)
		assert.Equal(t, "alice", p.OwnerID)
		assert.Equal(t, "Alice", p.AuthorName)
		assert.True(t, epoch.Add(-2*time.Hour).Equal(p.CreatedAt))

		_, err = posts.GetPost(ctx, "missing")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("list published", func(t *testing.T) {
		list, err := posts.ListPublished(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"new", "old"}, ids(list))
	})

	t.Run("list drafts", func(t *testing.T) {
		list, err := posts.ListDrafts(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, []string{"draft-a2", "draft-a"}, ids(list))

		list, err = posts.ListDrafts(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("set published", func(t *testing.T) {
		var ts = epoch.Add(time.Minute)
		require.NoError(t, posts.SetPublished(ctx, "draft-a", ts))

		p, err := posts.GetPost(ctx, "draft-a")
		require.NoError(t, err)
		assert.True(t, p.Published)
		assert.True(t, ts.Equal(p.UpdatedAt))

		// second call is a no-op and keeps the timestamp
		require.NoError(t, posts.SetPublished(ctx, "draft-a", ts.Add(time.Hour)))
		p, err = posts.GetPost(ctx, "draft-a")
		require.NoError(t, err)
		assert.True(t, ts.Equal(p.UpdatedAt))

		assert.ErrorIs(t, posts.SetPublished(ctx, "missing", ts), core.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, posts.DeletePost(ctx, "draft-b"))
		_, err := posts.GetPost(ctx, "draft-b")
		assert.ErrorIs(t, err, core.ErrNotFound)
		assert.ErrorIs(t, posts.DeletePost(ctx, "draft-b"), core.ErrNotFound)
	})
}

func TestLifecycleOnSQLite(t *testing.T) {
	var ctx = context.Background()
	users, posts := openTestDB(t)
	insertUser(t, users, "alice", "alice@example.com", "Alice")

	var alice = core.Identity{UserID: "alice", Name: "Alice"}
	var lifecycle = core.NewLifecycle(posts, nil)

	p, err := lifecycle.Create(ctx, alice, "Hello", "World")
	require.NoError(t, err)

	p, err = lifecycle.Publish(ctx, alice, p.ID)
	require.NoError(t, err)
	assert.True(t, p.Published)
	assert.Equal(t, "Alice", p.AuthorName)

	list, err := lifecycle.ListPublished(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{p.ID}, ids(list))

	require.NoError(t, lifecycle.Delete(ctx, alice, p.ID))
	_, err = lifecycle.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}
