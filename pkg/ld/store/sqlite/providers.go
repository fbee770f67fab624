/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/ldcommon/jsonld-common-go/pkg/ld/store"
)

const (
	createProvidersTableSQL = `CREATE TABLE IF NOT EXISTS remote_providers (
	id       TEXT PRIMARY KEY,
	endpoint TEXT NOT NULL UNIQUE
)`
	selectProviderSQL      = `SELECT endpoint FROM remote_providers WHERE id = ?`
	selectProvidersSQL     = `SELECT id, endpoint FROM remote_providers ORDER BY rowid`
	insertProviderSQL      = `INSERT INTO remote_providers (id, endpoint) VALUES (?, ?) ON CONFLICT(endpoint) DO NOTHING`
	selectProviderByURLSQL = `SELECT id FROM remote_providers WHERE endpoint = ?`
	deleteProviderSQL      = `DELETE FROM remote_providers WHERE id = ?`
)

// ProviderStore is a store.RemoteProviderStore sharing the database of a Store.
type ProviderStore struct {
	db *sql.DB
}

// RemoteProviders returns the remote provider records kept next to the contexts.
func (s *Store) RemoteProviders() *ProviderStore {
	return &ProviderStore{db: s.db}
}

// Get returns the record with the given id. A missing record yields an error wrapping store.ErrNotFound.
func (p *ProviderStore) Get(id string) (*store.RemoteProviderRecord, error) {
	var endpoint string

	err := p.db.QueryRow(selectProviderSQL, id).Scan(&endpoint)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get remote provider %s: %w", id, store.ErrNotFound)
	}

	if err != nil {
		return nil, errors.Wrapf(err, "get remote provider %s", id)
	}

	return &store.RemoteProviderRecord{ID: id, Endpoint: endpoint}, nil
}

// GetAll returns every record in the order they were saved.
func (p *ProviderStore) GetAll() ([]store.RemoteProviderRecord, error) {
	rows, err := p.db.Query(selectProvidersSQL)
	if err != nil {
		return nil, errors.Wrap(err, "query remote providers")
	}

	defer func() {
		if e := rows.Close(); e != nil {
			logger.Warnf("Failed to close remote provider rows: %s", e)
		}
	}()

	var records []store.RemoteProviderRecord

	for rows.Next() {
		var r store.RemoteProviderRecord

		if err = rows.Scan(&r.ID, &r.Endpoint); err != nil {
			return nil, errors.Wrap(err, "scan remote provider")
		}

		records = append(records, r)
	}

	return records, errors.Wrap(rows.Err(), "read remote providers")
}

// Save adds a record for endpoint, or returns the one already saved for it.
func (p *ProviderStore) Save(endpoint string) (*store.RemoteProviderRecord, error) {
	if _, err := p.db.Exec(insertProviderSQL, uuid.New().String(), endpoint); err != nil {
		return nil, errors.Wrapf(err, "save remote provider %s", endpoint)
	}

	r := &store.RemoteProviderRecord{Endpoint: endpoint}

	if err := p.db.QueryRow(selectProviderByURLSQL, endpoint).Scan(&r.ID); err != nil {
		return nil, errors.Wrapf(err, "read remote provider %s", endpoint)
	}

	return r, nil
}

// Delete removes the record with the given id.
func (p *ProviderStore) Delete(id string) error {
	if _, err := p.db.Exec(deleteProviderSQL, id); err != nil {
		return errors.Wrapf(err, "delete remote provider %s", id)
	}

	return nil
}
