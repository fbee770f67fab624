/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package sqlite persists JSON-LD context documents and remote provider records in an SQLite database,
// so that contexts fetched from the network survive process restarts.
package sqlite

import (
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/goccy/go-json"
	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/piprate/json-gold/ld"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/ldcommon/jsonld-common-go/pkg/doc/ldcontext"
	"github.com/ldcommon/jsonld-common-go/pkg/ld/store"
)

// InMemory opens a private in-memory database.
const InMemory = ":memory:"

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS ldcontexts (
	url      TEXT PRIMARY KEY,
	document BLOB NOT NULL
)`
	selectSQL = `SELECT document FROM ldcontexts WHERE url = ?`
	upsertSQL = `INSERT INTO ldcontexts (url, document) VALUES (?, ?)
	ON CONFLICT(url) DO UPDATE SET document = excluded.document`
	deleteSQL = `DELETE FROM ldcontexts WHERE url = ?`
)

var (
	logger            = log.New("jsonld-common/ldstore/sqlite")
	inMemoryDBCounter atomic.Int64
)

// Store is a store.ContextStore backed by SQLite.
type Store struct {
	db *sql.DB
}

// New opens (and creates when missing) the context database at path.
func New(path string) (*Store, error) {
	if path == InMemory {
		id := inMemoryDBCounter.Add(1)
		path = fmt.Sprintf("file:ldcontexts_%d?mode=memory&cache=shared", id)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}

	if _, err = db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		closeDB(db)

		return nil, errors.Wrap(err, "set busy timeout")
	}

	if _, err = db.Exec(createTableSQL); err != nil {
		closeDB(db)

		return nil, errors.Wrap(err, "create contexts table")
	}

	if _, err = db.Exec(createProvidersTableSQL); err != nil {
		closeDB(db)

		return nil, errors.Wrap(err, "create remote providers table")
	}

	return &Store{db: db}, nil
}

// Get returns the remote document stored under u. A missing document yields an error wrapping
// store.ErrNotFound.
func (s *Store) Get(u string) (*ld.RemoteDocument, error) {
	var b []byte

	err := s.db.QueryRow(selectSQL, u).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get context from store: %w", store.ErrNotFound)
	}

	if err != nil {
		return nil, errors.Wrapf(err, "get context %s", u)
	}

	var rd ld.RemoteDocument

	if err := json.Unmarshal(b, &rd); err != nil {
		return nil, errors.Wrap(err, "unmarshal context document")
	}

	return &rd, nil
}

// Put saves rd under u, replacing any previous document.
func (s *Store) Put(u string, rd *ld.RemoteDocument) error {
	b, err := json.Marshal(rd)
	if err != nil {
		return errors.Wrap(err, "marshal remote document")
	}

	if _, err = s.db.Exec(upsertSQL, u, b); err != nil {
		return errors.Wrapf(err, "put context %s", u)
	}

	return nil
}

// Import stores all documents in a single transaction.
func (s *Store) Import(documents []ldcontext.Document) error {
	if len(documents) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin import")
	}

	for _, d := range documents {
		b, err := store.MarshalDocument(d)
		if err != nil {
			rollback(tx)

			return err
		}

		if _, err = tx.Exec(upsertSQL, d.URL, b); err != nil {
			rollback(tx)

			return errors.Wrapf(err, "import context %s", d.URL)
		}
	}

	return errors.Wrap(tx.Commit(), "commit import")
}

// Delete removes the given documents. Unknown URLs are ignored.
func (s *Store) Delete(documents []ldcontext.Document) error {
	for _, d := range documents {
		if _, err := s.db.Exec(deleteSQL, d.URL); err != nil {
			return errors.Wrapf(err, "delete context %s", d.URL)
		}
	}

	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil {
		logger.Warnf("Failed to roll back context import: %s", err)
	}
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		logger.Errorf("Failed to close sqlite database: %s", err)
	}
}
