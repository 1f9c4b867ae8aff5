package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/wansing/blogr/core"
)

type UserDB struct {
	*sql.DB
	get         *sql.Stmt
	getByEmail  *sql.Stmt
	insert      *sql.Stmt
	setPassword *sql.Stmt
}

func NewUserDB(db *sql.DB, dialect Dialect) *UserDB {

	createTables(db)

	var userDB = &UserDB{}
	userDB.DB = db
	userDB.get = mustPrepare(db, dialect, "SELECT id, email, name, image, password, created FROM users WHERE id = ?")
	userDB.getByEmail = mustPrepare(db, dialect, "SELECT id, email, name, image, password, created FROM users WHERE email = ?")
	userDB.insert = mustPrepare(db, dialect, "INSERT INTO users (id, email, name, image, password, created) VALUES (?, ?, ?, ?, ?, ?)") // empty password never matches
	userDB.setPassword = mustPrepare(db, dialect, "UPDATE users SET password = ? WHERE id = ?")
	return userDB
}

func scanUser(row *sql.Row) (*core.User, error) {
	var u = &core.User{}
	var created int64
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Image, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = time.Unix(0, created).UTC()
	return u, nil
}

func (db *UserDB) GetUser(ctx context.Context, id string) (*core.User, error) {
	return scanUser(db.get.QueryRowContext(ctx, id))
}

func (db *UserDB) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	return scanUser(db.getByEmail.QueryRowContext(ctx, email))
}

func (db *UserDB) InsertUser(ctx context.Context, u *core.User) error {
	_, err := db.insert.ExecContext(ctx, u.ID, u.Email, u.Name, u.Image, u.PasswordHash, u.CreatedAt.UnixNano())
	return err
}

func (db *UserDB) SetPasswordHash(ctx context.Context, id string, hash string) error {
	result, err := db.setPassword.ExecContext(ctx, hash, id)
	if err != nil {
		return err
	}
	return mustAffect(result)
}

// mustAffect returns core.ErrNotFound if no row was affected.
func mustAffect(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
