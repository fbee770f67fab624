/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package ldcontext holds JSON-LD context documents together with the URLs they are known by.
package ldcontext

import "encoding/json"

// Document is a JSON-LD context document with associated metadata.
type Document struct {
	URL         string          `json:"url,omitempty"`         // URL is a context URL that shows up in the documents.
	DocumentURL string          `json:"documentURL,omitempty"` // The final URL of the loaded context document.
	Content     json.RawMessage `json:"content,omitempty"`     // Content of the context document.
}

// ResolvedURL returns DocumentURL when set and URL otherwise.
func (d *Document) ResolvedURL() string {
	if d.DocumentURL != "" {
		return d.DocumentURL
	}

	return d.URL
}
