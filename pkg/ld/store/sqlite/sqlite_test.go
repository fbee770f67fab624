/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sqlite_test

import (
	"path/filepath"
	"testing"

	"github.com/piprate/json-gold/ld"
	"github.com/stretchr/testify/require"

	"github.com/ldcommon/jsonld-common-go/pkg/doc/ldcontext"
	"github.com/ldcommon/jsonld-common-go/pkg/doc/ldcontext/embed"
	"github.com/ldcommon/jsonld-common-go/pkg/ld/store"
	"github.com/ldcommon/jsonld-common-go/pkg/ld/store/sqlite"
)

const sampleContextURL = "https://example.com/context.jsonld"

func TestStore(t *testing.T) {
	s, err := sqlite.New(sqlite.InMemory)
	require.NoError(t, err)

	defer func() { require.NoError(t, s.Close()) }()

	var _ store.ContextStore = s

	t.Run("Import embedded contexts", func(t *testing.T) {
		require.NoError(t, s.Import(embed.Contexts))

		rd, err := s.Get(embed.CredentialsV1)
		require.NoError(t, err)
		require.Equal(t, embed.CredentialsV1, rd.DocumentURL)
		require.Contains(t, rd.Document, "@context")
	})

	t.Run("Import again overwrites", func(t *testing.T) {
		require.NoError(t, s.Import(embed.Contexts))
	})

	t.Run("Import invalid document", func(t *testing.T) {
		err := s.Import([]ldcontext.Document{{URL: sampleContextURL, Content: []byte("{")}})
		require.Error(t, err)

		_, err = s.Get(sampleContextURL)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("Put, get and delete", func(t *testing.T) {
		doc := map[string]interface{}{"@context": map[string]interface{}{"name": "https://example.com/name"}}

		require.NoError(t, s.Put(sampleContextURL, &ld.RemoteDocument{DocumentURL: sampleContextURL, Document: doc}))

		rd, err := s.Get(sampleContextURL)
		require.NoError(t, err)
		require.Equal(t, doc, rd.Document)

		require.NoError(t, s.Delete([]ldcontext.Document{{URL: sampleContextURL}, {URL: "https://example.com/unknown"}}))

		_, err = s.Get(sampleContextURL)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestStore_Persistent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contexts.db")

	s, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, s.Import(embed.Contexts))
	require.NoError(t, s.Close())

	reopened, err := sqlite.New(path)
	require.NoError(t, err)

	defer func() { require.NoError(t, reopened.Close()) }()

	rd, err := reopened.Get(embed.CitizenshipV1)
	require.NoError(t, err)
	require.NotNil(t, rd.Document)
}
