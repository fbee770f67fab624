/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ldcmd

import (
	"context"
	"fmt"
	"os"

	"github.com/ldcommon/jsonld-common-go/pkg/doc/ldcontext"
	"github.com/ldcommon/jsonld-common-go/pkg/doc/ldcontext/remote"
	"github.com/ldcommon/jsonld-common-go/pkg/ld/documentloader"
)

// newDocumentLoader returns the loader configured by params and a func releasing its store.
func newDocumentLoader(ctx context.Context, params *parameters) (*documentloader.DocumentLoader, func(), error) {
	extraContexts, err := readContextFiles(params.extraContexts)
	if err != nil {
		return nil, nil, err
	}

	stores, err := openStores(params)
	if err != nil {
		return nil, nil, err
	}

	opts := []documentloader.Opts{
		documentloader.WithContext(ctx),
		documentloader.WithExtraContexts(extraContexts...),
	}

	if params.network != (documentloader.Network{}) {
		opts = append(opts, documentloader.WithNetwork(params.network))
	}

	for _, endpoint := range params.contextProviders {
		opts = append(opts, documentloader.WithRemoteProvider(remote.NewProvider(endpoint)))
	}

	loader, err := documentloader.New(stores.contexts, opts...)
	if err != nil {
		stores.close()

		return nil, nil, err
	}

	return loader, stores.close, nil
}

func readContextFiles(entries []extraContext) ([]ldcontext.Document, error) {
	docs := make([]ldcontext.Document, 0, len(entries))

	for _, ec := range entries {
		content, err := os.ReadFile(ec.Path)
		if err != nil {
			return nil, fmt.Errorf("read extra context %s: %w", ec.URL, err)
		}

		docs = append(docs, ldcontext.Document{URL: ec.URL, Content: content})
	}

	return docs, nil
}
