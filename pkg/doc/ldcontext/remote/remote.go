/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package remote fetches batches of JSON-LD context documents from an HTTP endpoint.
package remote

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/ldcommon/jsonld-common-go/pkg/doc/ldcontext"
)

const defaultTimeout = time.Minute

var logger = log.New("jsonld-common/ldcontext/remote")

// Provider downloads the context documents published at a single endpoint.
type Provider struct {
	endpoint string
	client   HTTPClient
}

// NewProvider creates a Provider for endpoint. The default client gives up after a minute.
func NewProvider(endpoint string, opts ...ProviderOpt) *Provider {
	p := &Provider{endpoint: endpoint, client: &http.Client{Timeout: defaultTimeout}}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Response is the JSON body served by a context endpoint.
type Response struct {
	Documents []ldcontext.Document `json:"documents"`
}

// Endpoint is the URL the provider downloads from.
func (p *Provider) Endpoint() string {
	return p.endpoint
}

// Contexts downloads the endpoint's documents. Entries with an empty url are dropped.
func (p *Provider) Contexts(ctx context.Context) ([]ldcontext.Document, error) {
	body, err := p.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch contexts from %s: %w", p.endpoint, err)
	}

	docs := make([]ldcontext.Document, 0, len(body.Documents))

	for _, d := range body.Documents {
		if d.URL == "" {
			logger.Warnf("Context endpoint %s returned a document with no url", p.endpoint)

			continue
		}

		docs = append(docs, d)
	}

	return docs, nil
}

func (p *Provider) fetch(ctx context.Context) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	defer func() {
		if e := resp.Body.Close(); e != nil {
			logger.Errorf("Close body of %s: %s", p.endpoint, e.Error())
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body Response

	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("parse documents: %w", err)
	}

	return &body, nil
}

// ProviderOpt customizes a Provider.
type ProviderOpt func(*Provider)

// HTTPClient sends the provider's requests. *http.Client satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(client HTTPClient) ProviderOpt {
	return func(p *Provider) {
		p.client = client
	}
}
