/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package documentloader provides a JSON-LD document loader backed by a context store.
package documentloader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bluele/gcache"
	"github.com/cenkalti/backoff/v4"
	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/piprate/json-gold/ld"

	"github.com/ldcommon/jsonld-common-go/pkg/doc/ldcontext"
	"github.com/ldcommon/jsonld-common-go/pkg/doc/ldcontext/embed"
	"github.com/ldcommon/jsonld-common-go/pkg/ld/store"
)

const defaultCacheSize = 100

var logger = log.New("jsonld-common/documentloader")

// ErrContextNotFound is returned when JSON-LD context document is not found in the underlying storage
// and cannot be fetched from the network.
var ErrContextNotFound = errors.New("context document not found")

// RemoteProvider defines a remote JSON-LD context provider.
type RemoteProvider interface {
	Endpoint() string
	Contexts(ctx context.Context) ([]ldcontext.Document, error)
}

// DocumentLoader is an implementation of ld.DocumentLoader backed by a context store.
type DocumentLoader struct {
	store                store.ContextStore
	cache                gcache.Cache
	remoteDocumentLoader ld.DocumentLoader
	maxRetries           uint64
	retryInterval        time.Duration

	remoteMu sync.Mutex
}

// New returns a new DocumentLoader instance.
//
// Embedded contexts (`ldcontext/embed`) are preloaded into the context store together with contexts set by
// WithExtraContexts() and contexts returned by every remote provider.
//
// By default, missing contexts are not fetched from the remote URL. Use WithRemoteDocumentLoader() or
// WithNetwork() to resolve context documents from the network.
func New(s store.ContextStore, opts ...Opts) (*DocumentLoader, error) {
	loaderOpts := &documentLoaderOpts{
		cacheSize: defaultCacheSize,
		ctx:       context.Background(),
	}

	for _, opt := range opts {
		opt(loaderOpts)
	}

	contexts, err := prepareContexts(loaderOpts)
	if err != nil {
		return nil, fmt.Errorf("prepare context documents: %w", err)
	}

	if err = s.Import(contexts); err != nil {
		return nil, fmt.Errorf("import context documents: %w", err)
	}

	remote := loaderOpts.remoteDocumentLoader
	if remote == nil && loaderOpts.network != nil {
		remote = NewNetworkLoader(*loaderOpts.network)
	}

	l := &DocumentLoader{
		store:                s,
		remoteDocumentLoader: remote,
		maxRetries:           loaderOpts.maxRetries,
		retryInterval:        loaderOpts.retryInterval,
	}

	if loaderOpts.cacheSize > 0 {
		l.cache = gcache.New(loaderOpts.cacheSize).LRU().Build()
	}

	return l, nil
}

func prepareContexts(opts *documentLoaderOpts) ([]ldcontext.Document, error) {
	contexts := make([]ldcontext.Document, 0, len(embed.Contexts)+len(opts.extraContexts))
	contexts = append(contexts, embed.Contexts...)
	contexts = append(contexts, opts.extraContexts...)

	for _, p := range opts.remoteProviders {
		docs, err := p.Contexts(opts.ctx)
		if err != nil {
			return nil, fmt.Errorf("get contexts from remote provider %s: %w", p.Endpoint(), err)
		}

		contexts = append(contexts, docs...)
	}

	return contexts, nil
}

// LoadDocument resolves JSON-LD context document by document URL (u) either from the cache, the context store
// or from remote URL. If document is not found and remote loading is disabled, ErrContextNotFound is returned.
func (l *DocumentLoader) LoadDocument(u string) (*ld.RemoteDocument, error) {
	if l.cache != nil {
		if v, err := l.cache.Get(u); err == nil {
			return v.(*ld.RemoteDocument), nil //nolint:forcetypeassert
		}
	}

	rd, err := l.store.Get(u)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("get context from store: %w", err)
		}

		if l.remoteDocumentLoader == nil { // fetching from the remote URL is disabled
			return nil, fmt.Errorf("%w: %s", ErrContextNotFound, u)
		}

		rd, err = l.loadDocumentFromURL(u)
		if err != nil {
			return nil, err
		}
	}

	l.cachePut(u, rd)

	return rd, nil
}

func (l *DocumentLoader) loadDocumentFromURL(u string) (*ld.RemoteDocument, error) {
	l.remoteMu.Lock()
	defer l.remoteMu.Unlock()

	logger.Debugf("Fetching context document %s", u)

	var rd *ld.RemoteDocument

	err := backoff.RetryNotify(
		func() error {
			var err error

			rd, err = l.remoteDocumentLoader.LoadDocument(u)
			if err != nil && !isRetryable(err) {
				return backoff.Permanent(err)
			}

			return err
		},
		backoff.WithMaxRetries(backoff.NewConstantBackOff(l.retryInterval), l.maxRetries),
		func(retryErr error, d time.Duration) {
			logger.Warnf("Failed to fetch context document %s, retrying in %s: %s", u, d, retryErr)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("load remote context document: %w", err)
	}

	if err := l.store.Put(u, rd); err != nil {
		return nil, fmt.Errorf("save remote document: %w", err)
	}

	return rd, nil
}

func (l *DocumentLoader) cachePut(u string, rd *ld.RemoteDocument) {
	if l.cache == nil {
		return
	}

	if err := l.cache.Set(u, rd); err != nil {
		logger.Debugf("Failed to cache context document %s: %s", u, err)
	}
}

func isRetryable(err error) bool {
	if errors.Is(err, ErrSchemeDisabled) {
		return false
	}

	var ldErr *ld.JsonLdError
	if errors.As(err, &ldErr) {
		return ldErr.Code == ld.LoadingDocumentFailed
	}

	return true
}

type documentLoaderOpts struct {
	ctx                  context.Context
	remoteDocumentLoader ld.DocumentLoader
	network              *Network
	extraContexts        []ldcontext.Document
	remoteProviders      []RemoteProvider
	cacheSize            int
	maxRetries           uint64
	retryInterval        time.Duration
}

// Opts configures DocumentLoader during creation.
type Opts func(opts *documentLoaderOpts)

// WithExtraContexts sets the extra contexts (in addition to embedded) for preloading into the context store.
func WithExtraContexts(contexts ...ldcontext.Document) Opts {
	return func(opts *documentLoaderOpts) {
		opts.extraContexts = append(opts.extraContexts, contexts...)
	}
}

// WithRemoteProvider adds a remote JSON-LD context provider. Contexts it returns are preloaded into
// the context store.
func WithRemoteProvider(provider RemoteProvider) Opts {
	return func(opts *documentLoaderOpts) {
		opts.remoteProviders = append(opts.remoteProviders, provider)
	}
}

// WithRemoteDocumentLoader specifies loader for fetching JSON-LD context documents from remote URLs.
// Documents are fetched with this loader only if they are not found in the context store.
// It takes precedence over WithNetwork.
func WithRemoteDocumentLoader(loader ld.DocumentLoader) Opts {
	return func(opts *documentLoaderOpts) {
		opts.remoteDocumentLoader = loader
	}
}

// WithNetwork enables fetching missing context documents over the schemes enabled in n.
func WithNetwork(n Network) Opts {
	return func(opts *documentLoaderOpts) {
		opts.network = &n
	}
}

// WithCacheSize sets the size of the in-memory LRU cache in front of the context store. Zero disables it.
func WithCacheSize(size int) Opts {
	return func(opts *documentLoaderOpts) {
		opts.cacheSize = size
	}
}

// WithRetry retries failed remote fetches up to maxRetries times with a constant interval.
func WithRetry(maxRetries uint64, interval time.Duration) Opts {
	return func(opts *documentLoaderOpts) {
		opts.maxRetries = maxRetries
		opts.retryInterval = interval
	}
}

// WithContext sets the context used for remote provider requests.
func WithContext(ctx context.Context) Opts {
	return func(opts *documentLoaderOpts) {
		opts.ctx = ctx
	}
}
