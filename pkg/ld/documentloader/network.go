/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package documentloader

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/piprate/json-gold/ld"
)

// ErrSchemeDisabled is returned when a document is requested over a URL scheme that is not enabled.
var ErrSchemeDisabled = errors.New("url scheme disabled")

// Network lists the URL schemes remote context documents may be loaded from.
type Network struct {
	HTTP  bool `yaml:"http"`
	HTTPS bool `yaml:"https"`
	File  bool `yaml:"file"`
}

func (n Network) allows(scheme string) bool {
	switch scheme {
	case "http":
		return n.HTTP
	case "https":
		return n.HTTPS
	case "file":
		return n.File
	default:
		return false
	}
}

// NetworkLoader loads documents with json-gold's RFC7324CachingDocumentLoader, refusing URL schemes
// that are not enabled in its Network.
type NetworkLoader struct {
	network Network
	loader  ld.DocumentLoader
}

// NewNetworkLoader returns a NetworkLoader for n. HTTP redirects to a disabled scheme fail as well.
func NewNetworkLoader(n Network) *NetworkLoader {
	client := &http.Client{
		Transport: &schemeGateTransport{network: n, next: http.DefaultTransport},
	}

	return &NetworkLoader{
		network: n,
		loader:  ld.NewRFC7324CachingDocumentLoader(client),
	}
}

// LoadDocument implements ld.DocumentLoader.
func (l *NetworkLoader) LoadDocument(u string) (*ld.RemoteDocument, error) {
	parsed, err := url.Parse(u)
	if err != nil {
		return nil, ld.NewJsonLdError(ld.LoadingDocumentFailed, fmt.Sprintf("error parsing URL: %s", u))
	}

	if !l.network.allows(parsed.Scheme) {
		return nil, fmt.Errorf("load %s: %w: %q", u, ErrSchemeDisabled, parsed.Scheme)
	}

	if parsed.Scheme != "file" {
		return l.loader.LoadDocument(u)
	}

	rd, err := l.loader.LoadDocument(parsed.Path)
	if err != nil {
		return nil, err
	}

	out := *rd
	out.DocumentURL = u

	return &out, nil
}

type schemeGateTransport struct {
	network Network
	next    http.RoundTripper
}

func (t *schemeGateTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !t.network.allows(req.URL.Scheme) {
		return nil, fmt.Errorf("%w: %q", ErrSchemeDisabled, req.URL.Scheme)
	}

	return t.next.RoundTrip(req)
}
