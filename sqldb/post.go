package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/wansing/blogr/core"
)

const selectPost = `SELECT p.id, p.title, p.body, p.published, p.owner, COALESCE(u.name, ''), p.created, p.updated
	FROM posts p LEFT JOIN users u ON u.id = p.owner `

type PostDB struct {
	*sql.DB
	delete        *sql.Stmt
	exists        *sql.Stmt
	get           *sql.Stmt
	insert        *sql.Stmt
	listDrafts    *sql.Stmt
	listPublished *sql.Stmt
	setPublished  *sql.Stmt
}

func NewPostDB(db *sql.DB, dialect Dialect) *PostDB {

	createTables(db)

	var postDB = &PostDB{}
	postDB.DB = db
	postDB.delete = mustPrepare(db, dialect, "DELETE FROM posts WHERE id = ?")
	postDB.exists = mustPrepare(db, dialect, "SELECT 1 FROM posts WHERE id = ?")
	postDB.get = mustPrepare(db, dialect, selectPost+"WHERE p.id = ?")
	postDB.insert = mustPrepare(db, dialect, "INSERT INTO posts (id, title, body, published, owner, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?)")
	postDB.listDrafts = mustPrepare(db, dialect, selectPost+"WHERE p.published = ? AND p.owner = ? ORDER BY p.created DESC, p.id DESC")
	postDB.listPublished = mustPrepare(db, dialect, selectPost+"WHERE p.published = ? ORDER BY p.created DESC, p.id DESC")
	postDB.setPublished = mustPrepare(db, dialect, "UPDATE posts SET published = ?, updated = ? WHERE id = ? AND published = ?") // conditional, so concurrent publishes converge
	return postDB
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row scanner) (*core.Post, error) {
	var p = &core.Post{}
	var created, updated int64
	if err := row.Scan(&p.ID, &p.Title, &p.Body, &p.Published, &p.OwnerID, &p.AuthorName, &created, &updated); err != nil {
		return nil, err
	}
	p.CreatedAt = time.Unix(0, created).UTC()
	p.UpdatedAt = time.Unix(0, updated).UTC()
	return p, nil
}

func (db *PostDB) DeletePost(ctx context.Context, id string) error {
	result, err := db.delete.ExecContext(ctx, id)
	if err != nil {
		return err
	}
	return mustAffect(result)
}

func (db *PostDB) GetPost(ctx context.Context, id string) (*core.Post, error) {
	p, err := scanPost(db.get.QueryRowContext(ctx, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	return p, err
}

func (db *PostDB) InsertPost(ctx context.Context, p *core.Post) error {
	_, err := db.insert.ExecContext(ctx, p.ID, p.Title, p.Body, p.Published, p.OwnerID, p.CreatedAt.UnixNano(), p.UpdatedAt.UnixNano())
	return err
}

func (db *PostDB) ListDrafts(ctx context.Context, ownerID string) ([]*core.Post, error) {
	return listPosts(db.listDrafts.QueryContext(ctx, false, ownerID))
}

func (db *PostDB) ListPublished(ctx context.Context) ([]*core.Post, error) {
	return listPosts(db.listPublished.QueryContext(ctx, true))
}

func listPosts(rows *sql.Rows, err error) ([]*core.Post, error) {

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all = []*core.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, p)
	}
	return all, rows.Err()
}

func (db *PostDB) SetPublished(ctx context.Context, id string, ts time.Time) error {

	result, err := db.setPublished.ExecContext(ctx, true, ts.UnixNano(), id, false)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	// nothing changed: either published already or absent
	var one int
	err = db.exists.QueryRowContext(ctx, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	return err
}
