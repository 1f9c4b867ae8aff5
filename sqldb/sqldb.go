// Package sqldb implements core.PostDB and core.UserDB on top of database/sql.
//
// The schema is portable across SQLite, MySQL and PostgreSQL. Timestamps are stored as unix nanoseconds.
package sqldb

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// Dialect is the name of the database/sql driver, as returned by dburl.
type Dialect string

const (
	MySQL    Dialect = "mysql"
	Postgres Dialect = "postgres"
	SQLite3  Dialect = "sqlite3"
)

// rebind replaces the question mark placeholders for dialects which use numbered ones.
func (d Dialect) rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	var n = 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func mustPrepare(db *sql.DB, dialect Dialect, query string) *sql.Stmt {
	stmt, err := db.Prepare(dialect.rebind(query))
	if err != nil {
		panic(fmt.Sprintf("error preparing %q: %v", query, err))
	}
	return stmt
}

// createTables creates the schema. Errors are ignored, the subsequent prepared statements would fail anyway.
func createTables(db *sql.DB) {

	db.Exec(
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(36) PRIMARY KEY,
			email VARCHAR(128) NOT NULL,
			name VARCHAR(128) NOT NULL,
			image VARCHAR(512) NOT NULL,
			password VARCHAR(128) NOT NULL,
			created BIGINT NOT NULL,
			UNIQUE(email)
		)`)

	db.Exec(
		`CREATE TABLE IF NOT EXISTS posts (
			id VARCHAR(36) PRIMARY KEY,
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			published BOOLEAN NOT NULL,
			owner VARCHAR(36) NOT NULL REFERENCES users (id),
			created BIGINT NOT NULL,
			updated BIGINT NOT NULL
		)`)

	db.Exec(`CREATE INDEX posts_owner_idx ON posts (owner)`) // fails if it exists
}
