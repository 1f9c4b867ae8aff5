package core

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/norm"
)

var validate = validator.New()

// draftInput is validated before a post is created.
type draftInput struct {
	Title string `validate:"required"`
}

// Lifecycle governs posts: Draft --Publish--> Published, Draft|Published --Delete--> absent.
// There is no way back from Published to Draft.
type Lifecycle struct {
	Guard *Guard
	Posts PostDB
	Log   logrus.FieldLogger
	Now   func() time.Time // defaults to time.Now
}

// NewLifecycle wires a Lifecycle and its Guard to the same PostDB.
func NewLifecycle(posts PostDB, log logrus.FieldLogger) *Lifecycle {
	return &Lifecycle{
		Guard: &Guard{Posts: posts},
		Posts: posts,
		Log:   log,
		Now:   time.Now,
	}
}

func (l *Lifecycle) now() time.Time {
	if l.Now == nil {
		return time.Now().UTC()
	}
	return l.Now().UTC()
}

func (l *Lifecycle) log() logrus.FieldLogger {
	if l.Log == nil {
		return logrus.StandardLogger()
	}
	return l.Log
}

// Create stores a new draft owned by the identity.
func (l *Lifecycle) Create(ctx context.Context, id Identity, title, body string) (*Post, error) {

	if id.IsAnonymous() {
		return nil, ErrUnauthenticated
	}

	title = norm.NFC.String(strings.TrimSpace(title))
	if err := validate.Struct(draftInput{Title: title}); err != nil {
		return nil, Invalid("title can't be empty")
	}

	var now = l.now()
	var p = &Post{
		ID:         uuid.New().String(),
		Title:      title,
		Body:       body,
		Published:  false,
		OwnerID:    id.UserID,
		AuthorName: id.Name,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := l.Posts.InsertPost(ctx, p); err != nil {
		return nil, StoreFault("create post", err)
	}

	l.log().WithFields(logrus.Fields{"post": p.ID, "user": id.UserID}).Info("draft created")
	return p, nil
}

// ListPublished returns all published posts, most recent first.
func (l *Lifecycle) ListPublished(ctx context.Context) ([]*Post, error) {
	posts, err := l.Posts.ListPublished(ctx)
	if err != nil {
		return nil, StoreFault("list published", err)
	}
	return posts, nil
}

// ListOwnDrafts returns the unpublished posts of the identity, most recent first.
func (l *Lifecycle) ListOwnDrafts(ctx context.Context, id Identity) ([]*Post, error) {
	if id.IsAnonymous() {
		return nil, ErrUnauthenticated
	}
	posts, err := l.Posts.ListDrafts(ctx, id.UserID)
	if err != nil {
		return nil, StoreFault("list drafts", err)
	}
	return posts, nil
}

// GetByID returns a post regardless of its state. Use GetVisible for callers outside of the service.
func (l *Lifecycle) GetByID(ctx context.Context, postID string) (*Post, error) {
	p, err := l.Posts.GetPost(ctx, postID)
	if err != nil {
		return nil, StoreFault("get post", err)
	}
	return p, nil
}

// GetVisible is like GetByID, but reports a draft as ErrNotFound unless the identity owns it.
func (l *Lifecycle) GetVisible(ctx context.Context, id Identity, postID string) (*Post, error) {
	p, err := l.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !p.Published && !id.Owns(p) {
		return nil, ErrNotFound
	}
	return p, nil
}

// Publish makes a draft of the identity visible to everyone. Publishing a published post is a no-op.
func (l *Lifecycle) Publish(ctx context.Context, id Identity, postID string) (*Post, error) {

	p, err := l.Guard.authorize(ctx, id, postID)
	if err != nil {
		return nil, err
	}

	if p.Published {
		return p, nil
	}

	// the update is conditional, so concurrent publishes converge
	if err := l.Posts.SetPublished(ctx, postID, l.now()); err != nil {
		return nil, StoreFault("publish post", err)
	}

	// re-read, a concurrent delete yields ErrNotFound
	p, err = l.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	l.log().WithFields(logrus.Fields{"post": postID, "user": id.UserID}).Info("post published")
	return p, nil
}

// Delete removes a post of the identity permanently.
func (l *Lifecycle) Delete(ctx context.Context, id Identity, postID string) error {

	if _, err := l.Guard.authorize(ctx, id, postID); err != nil {
		return err
	}

	if err := l.Posts.DeletePost(ctx, postID); err != nil {
		return StoreFault("delete post", err)
	}

	l.log().WithFields(logrus.Fields{"post": postID, "user": id.UserID}).Info("post deleted")
	return nil
}
