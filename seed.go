package main

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wansing/blogr/core"
)

type seedPost struct {
	title     string
	body      string
	published bool
}

var seedEmail = "alice@prisma.io"

var seedPosts = []seedPost{
	{"Prisma macht Datenbankzugriff einfach", "Prisma ist ein modernes ORM für Node.js und TypeScript. Es vereinfacht den Zugriff auf Datenbanken erheblich.", true},
	{"Next.js und Vercel - Das perfekte Team", "Next.js bietet server-side rendering und Vercel macht das Deployment kinderleicht.", true},
	{"Mein erster Draft", "Das ist noch nicht fertig...", false},
}

// seed inserts a demo user with two published posts and one draft. It does nothing if the user exists.
// The user has no password, set one with "init -insert -user alice@prisma.io".
func seed(ctx context.Context, users core.UserDB, posts core.PostDB, now time.Time) (bool, error) {

	_, err := users.GetUserByEmail(ctx, seedEmail)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, core.ErrNotFound):
		return false, err
	}

	now = now.UTC()

	var alice = &core.User{
		ID:        uuid.New().String(),
		Email:     seedEmail,
		Name:      "Alice",
		CreatedAt: now,
	}
	if err := users.InsertUser(ctx, alice); err != nil {
		return false, err
	}

	for i, sp := range seedPosts {
		var created = now.Add(time.Duration(i) * time.Second) // keeps the order
		var p = &core.Post{
			ID:        uuid.New().String(),
			Title:     sp.title,
			Body:      sp.body,
			Published: sp.published,
			OwnerID:   alice.ID,
			CreatedAt: created,
			UpdatedAt: created,
		}
		if err := posts.InsertPost(ctx, p); err != nil {
			return false, err
		}
	}

	return true, nil
}
