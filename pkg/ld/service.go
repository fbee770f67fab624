/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package ld keeps the context store in sync with files and remote context providers.
package ld

import (
	"context"
	"fmt"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/ldcommon/jsonld-common-go/pkg/doc/ldcontext"
	"github.com/ldcommon/jsonld-common-go/pkg/doc/ldcontext/remote"
	"github.com/ldcommon/jsonld-common-go/pkg/ld/store"
)

var logger = log.New("jsonld-common/ld")

type provider interface {
	JSONLDContextStore() store.ContextStore
	JSONLDRemoteProviderStore() store.RemoteProviderStore
}

// Service adds context documents to a store, either directly or from remote providers it remembers.
type Service interface {
	AddContexts(documents []ldcontext.Document) error
	AddRemoteProvider(ctx context.Context, endpoint string, opts ...remote.ProviderOpt) (string, error)
	RefreshRemoteProvider(ctx context.Context, providerID string, opts ...remote.ProviderOpt) error
	DeleteRemoteProvider(ctx context.Context, providerID string, opts ...remote.ProviderOpt) error
	GetAllRemoteProviders() ([]store.RemoteProviderRecord, error)
	RefreshAllRemoteProviders(ctx context.Context, opts ...remote.ProviderOpt) error
}

// DefaultService implements Service on top of a context store and a remote provider store.
type DefaultService struct {
	contexts  store.ContextStore
	providers store.RemoteProviderStore
}

// New creates a DefaultService using the stores of p.
func New(p provider) *DefaultService {
	return &DefaultService{
		contexts:  p.JSONLDContextStore(),
		providers: p.JSONLDRemoteProviderStore(),
	}
}

// AddContexts stores documents, replacing those with the same URL.
func (s *DefaultService) AddContexts(documents []ldcontext.Document) error {
	if err := s.contexts.Import(documents); err != nil {
		return fmt.Errorf("store contexts: %w", err)
	}

	return nil
}

// AddRemoteProvider downloads the documents served at endpoint, remembers the endpoint and stores the
// documents. Adding a known endpoint again returns its existing ID.
func (s *DefaultService) AddRemoteProvider(ctx context.Context, endpoint string,
	opts ...remote.ProviderOpt) (string, error) {
	docs, err := download(ctx, endpoint, opts)
	if err != nil {
		return "", err
	}

	record, err := s.providers.Save(endpoint)
	if err != nil {
		return "", fmt.Errorf("remember provider %s: %w", endpoint, err)
	}

	if err := s.importDocs(docs); err != nil {
		return "", err
	}

	logger.Infof("Added remote provider %s (%s) with %d contexts", record.ID, endpoint, len(docs))

	return record.ID, nil
}

// RefreshRemoteProvider downloads the documents of a remembered provider again.
func (s *DefaultService) RefreshRemoteProvider(ctx context.Context, providerID string,
	opts ...remote.ProviderOpt) error {
	record, err := s.lookup(providerID)
	if err != nil {
		return err
	}

	return s.refresh(ctx, record, opts)
}

// DeleteRemoteProvider forgets a provider after removing the documents it serves now.
func (s *DefaultService) DeleteRemoteProvider(ctx context.Context, providerID string,
	opts ...remote.ProviderOpt) error {
	record, err := s.lookup(providerID)
	if err != nil {
		return err
	}

	docs, err := download(ctx, record.Endpoint, opts)
	if err != nil {
		return err
	}

	if err := s.contexts.Delete(docs); err != nil {
		return fmt.Errorf("remove provider contexts: %w", err)
	}

	if err := s.providers.Delete(record.ID); err != nil {
		return fmt.Errorf("forget provider %s: %w", record.ID, err)
	}

	return nil
}

// GetAllRemoteProviders lists the remembered providers.
func (s *DefaultService) GetAllRemoteProviders() ([]store.RemoteProviderRecord, error) {
	records, err := s.providers.GetAll()
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}

	return records, nil
}

// RefreshAllRemoteProviders refreshes every remembered provider, stopping at the first failure.
func (s *DefaultService) RefreshAllRemoteProviders(ctx context.Context, opts ...remote.ProviderOpt) error {
	records, err := s.GetAllRemoteProviders()
	if err != nil {
		return err
	}

	for i := range records {
		if err := s.refresh(ctx, &records[i], opts); err != nil {
			return err
		}
	}

	return nil
}

func (s *DefaultService) lookup(providerID string) (*store.RemoteProviderRecord, error) {
	record, err := s.providers.Get(providerID)
	if err != nil {
		return nil, fmt.Errorf("look up provider %s: %w", providerID, err)
	}

	return record, nil
}

func (s *DefaultService) refresh(ctx context.Context, record *store.RemoteProviderRecord,
	opts []remote.ProviderOpt) error {
	docs, err := download(ctx, record.Endpoint, opts)
	if err != nil {
		return err
	}

	logger.Debugf("Refreshing %d contexts from provider %s", len(docs), record.ID)

	return s.importDocs(docs)
}

func (s *DefaultService) importDocs(docs []ldcontext.Document) error {
	if err := s.contexts.Import(docs); err != nil {
		return fmt.Errorf("store provider contexts: %w", err)
	}

	return nil
}

func download(ctx context.Context, endpoint string, opts []remote.ProviderOpt) ([]ldcontext.Document, error) {
	docs, err := remote.NewProvider(endpoint, opts...).Contexts(ctx)
	if err != nil {
		return nil, fmt.Errorf("download provider contexts: %w", err)
	}

	return docs, nil
}
