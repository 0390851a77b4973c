package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"database/sql"

	_ "modernc.org/sqlite"
)

const (
	busyTimeout  = 5 * time.Second
	maxOpenConns = 10
	maxIdleConns = 5
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	body       TEXT NOT NULL,
	PRIMARY KEY (collection, id)
);`

var (
	// ErrNotFound is returned when no document matches the given identifier.
	ErrNotFound = errors.New("document not found")

	// ErrConflict is returned when inserting a document whose identifier is
	// already taken.
	ErrConflict = errors.New("document already exists")
)

// Db represents a connection to the document store
type Db struct {
	session Session
}

// NewDb opens the document store at the given file path, creating it when
// absent.
func NewDb(path string) (*Db, error) {
	if path == "" {
		return nil, errors.New("a database path is required")
	}

	ref, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	ref.SetMaxOpenConns(maxOpenConns)
	ref.SetMaxIdleConns(maxIdleConns)

	session := &sqlSession{ref: ref}
	ctx := context.Background()

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeout.Milliseconds()),
	}
	for _, pragma := range pragmas {
		if _, err := session.Execute(ctx, pragma); err != nil {
			_ = session.Close()
			return nil, err
		}
	}

	if _, err := session.Execute(ctx, schema); err != nil {
		_ = session.Close()
		return nil, err
	}

	return &Db{session: session}, nil
}

// NewDbWithSession gets a Db backed by the given session, used in tests
func NewDbWithSession(session Session) *Db {
	return &Db{session: session}
}

func (db *Db) Close() error {
	return db.session.Close()
}

// Collection gets a handle to the named document collection. Collections
// need no declaration; an empty collection simply matches no documents.
func (db *Db) Collection(name string) *Collection {
	return &Collection{db: db, name: name}
}
