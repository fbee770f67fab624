/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package store

import (
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/hyperledger/aries-framework-go/spi/storage"
)

const (
	// RemoteProviderStoreName is a remote provider store name.
	RemoteProviderStoreName = "remoteproviders"

	// RemoteProviderRecordTag is a tag associated with every record in the store.
	RemoteProviderRecordTag = "record"

	queryRetries  = 3
	queryInterval = 100 * time.Millisecond
)

var logger = log.New("jsonld-common/ldstore")

// RemoteProviderRecord is a record in store with remote provider info.
type RemoteProviderRecord struct {
	ID       string `json:"id"`
	Endpoint string `json:"endpoint"`
}

// RemoteProviderStore represents a repository for remote context provider operations.
type RemoteProviderStore interface {
	Get(id string) (*RemoteProviderRecord, error)
	GetAll() ([]RemoteProviderRecord, error)
	Save(endpoint string) (*RemoteProviderRecord, error)
	Delete(id string) error
}

// RemoteProviderStoreImpl is a default implementation of remote provider repository.
type RemoteProviderStoreImpl struct {
	store               storage.Store
	debugDisableBackoff bool
}

// NewRemoteProviderStore returns a new instance of RemoteProviderStoreImpl.
func NewRemoteProviderStore(storageProvider storage.Provider) (*RemoteProviderStoreImpl, error) {
	store, err := storageProvider.OpenStore(RemoteProviderStoreName)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	err = storageProvider.SetStoreConfig(RemoteProviderStoreName,
		storage.StoreConfiguration{TagNames: []string{RemoteProviderRecordTag}})
	if err != nil {
		return nil, fmt.Errorf("set store config: %w", err)
	}

	return &RemoteProviderStoreImpl{store: store}, nil
}

// Get returns a remote provider record from the underlying storage.
func (s *RemoteProviderStoreImpl) Get(id string) (*RemoteProviderRecord, error) {
	b, err := s.store.Get(id)
	if err != nil {
		return nil, fmt.Errorf("get remote provider from store: %w", err)
	}

	return &RemoteProviderRecord{ID: id, Endpoint: string(b)}, nil
}

// GetAll returns all remote provider records from the underlying storage.
func (s *RemoteProviderStoreImpl) GetAll() ([]RemoteProviderRecord, error) {
	iter, err := s.store.Query(RemoteProviderRecordTag)
	if err != nil {
		return nil, fmt.Errorf("query store: %w", err)
	}

	defer func() {
		if e := iter.Close(); e != nil {
			logger.Errorf("Failed to close iterator: %s", e)
		}
	}()

	var records []RemoteProviderRecord

	for {
		ok, err := iter.Next()
		if err != nil {
			return nil, fmt.Errorf("next entry: %w", err)
		}

		if !ok {
			break
		}

		key, err := iter.Key()
		if err != nil {
			return nil, fmt.Errorf("get key: %w", err)
		}

		value, err := iter.Value()
		if err != nil {
			return nil, fmt.Errorf("get value: %w", err)
		}

		records = append(records, RemoteProviderRecord{ID: key, Endpoint: string(value)})
	}

	return records, nil
}

// Save stores a remote provider record for endpoint. The existing record is returned when endpoint
// is already saved.
func (s *RemoteProviderStoreImpl) Save(endpoint string) (*RemoteProviderRecord, error) {
	var records []RemoteProviderRecord

	getAll := func() error {
		var err error

		records, err = s.GetAll()

		return err
	}

	var err error

	if s.debugDisableBackoff {
		err = getAll()
	} else {
		err = backoff.RetryNotify(getAll,
			backoff.WithMaxRetries(backoff.NewConstantBackOff(queryInterval), queryRetries),
			func(err error, d time.Duration) {
				logger.Warnf("Failed to read remote provider records, retrying in %s: %s", d, err)
			})
	}

	if err != nil {
		return nil, err
	}

	for i := range records {
		if records[i].Endpoint == endpoint {
			return &records[i], nil
		}
	}

	record := &RemoteProviderRecord{ID: uuid.New().String(), Endpoint: endpoint}

	if err := s.store.Put(record.ID, []byte(endpoint), storage.Tag{Name: RemoteProviderRecordTag}); err != nil {
		return nil, fmt.Errorf("save new remote provider record: %w", err)
	}

	return record, nil
}

// Delete deletes a remote provider record.
func (s *RemoteProviderStoreImpl) Delete(id string) error {
	if err := s.store.Delete(id); err != nil {
		return fmt.Errorf("delete remote provider record: %w", err)
	}

	return nil
}
