/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package store keeps JSON-LD context documents so that they can be resolved without network access.
package store

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/hyperledger/aries-framework-go/spi/storage"
	"github.com/piprate/json-gold/ld"

	"github.com/ldcommon/jsonld-common-go/pkg/doc/ldcontext"
)

const (
	// ContextStoreName is a JSON-LD context store name.
	ContextStoreName = "ldcontexts"

	// ContextRecordTag is a tag associated with every record in the store.
	ContextRecordTag = "record"
)

// ErrNotFound is returned when no context document is stored under the given URL.
var ErrNotFound = storage.ErrDataNotFound

// ContextStore represents a repository for JSON-LD context operations.
type ContextStore interface {
	Get(u string) (*ld.RemoteDocument, error)
	Put(u string, rd *ld.RemoteDocument) error
	Import(documents []ldcontext.Document) error
	Delete(documents []ldcontext.Document) error
}

// ContextStoreImpl is a default implementation of JSON-LD context repository on top of the storage SPI.
type ContextStoreImpl struct {
	store storage.Store
}

// NewContextStore returns a new instance of ContextStoreImpl.
func NewContextStore(storageProvider storage.Provider) (*ContextStoreImpl, error) {
	store, err := storageProvider.OpenStore(ContextStoreName)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	err = storageProvider.SetStoreConfig(ContextStoreName, storage.StoreConfiguration{TagNames: []string{ContextRecordTag}})
	if err != nil {
		return nil, fmt.Errorf("set store config: %w", err)
	}

	return &ContextStoreImpl{store: store}, nil
}

// Get returns JSON-LD remote document from the underlying storage by context url.
func (s *ContextStoreImpl) Get(u string) (*ld.RemoteDocument, error) {
	b, err := s.store.Get(u)
	if err != nil {
		return nil, fmt.Errorf("get context from store: %w", err)
	}

	var rd ld.RemoteDocument

	if err := json.Unmarshal(b, &rd); err != nil {
		return nil, fmt.Errorf("unmarshal context document: %w", err)
	}

	return &rd, nil
}

// Put saves JSON-LD remote document into the underlying storage under context url.
func (s *ContextStoreImpl) Put(u string, rd *ld.RemoteDocument) error {
	b, err := json.Marshal(rd)
	if err != nil {
		return fmt.Errorf("marshal remote document: %w", err)
	}

	if err = s.store.Put(u, b, storage.Tag{Name: ContextRecordTag}); err != nil {
		return fmt.Errorf("put remote document: %w", err)
	}

	return nil
}

// Import imports JSON-LD contexts into the underlying storage. Existing records are overwritten.
func (s *ContextStoreImpl) Import(documents []ldcontext.Document) error {
	if len(documents) == 0 {
		return nil
	}

	ops := make([]storage.Operation, 0, len(documents))

	for _, d := range documents {
		b, err := MarshalDocument(d)
		if err != nil {
			return err
		}

		ops = append(ops, storage.Operation{
			Key:   d.URL,
			Value: b,
			Tags:  []storage.Tag{{Name: ContextRecordTag}},
		})
	}

	if err := s.store.Batch(ops); err != nil {
		return fmt.Errorf("store batch of contexts: %w", err)
	}

	return nil
}

// Delete deletes matched JSON-LD contexts from the underlying storage.
func (s *ContextStoreImpl) Delete(documents []ldcontext.Document) error {
	for _, d := range documents {
		if err := s.store.Delete(d.URL); err != nil && !errors.Is(err, storage.ErrDataNotFound) {
			return fmt.Errorf("delete context document: %w", err)
		}
	}

	return nil
}

// MarshalDocument converts a context document into the stored representation of ld.RemoteDocument.
func MarshalDocument(d ldcontext.Document) ([]byte, error) {
	if d.URL == "" {
		return nil, errors.New("context document URL is empty")
	}

	content, err := ld.DocumentFromReader(bytes.NewReader(d.Content))
	if err != nil {
		return nil, fmt.Errorf("document from reader: %w", err)
	}

	rd := ld.RemoteDocument{
		DocumentURL: d.ResolvedURL(),
		Document:    content,
	}

	b, err := json.Marshal(rd)
	if err != nil {
		return nil, fmt.Errorf("marshal remote document: %w", err)
	}

	return b, nil
}
