/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jsonld_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ldcommon/jsonld-common-go/pkg/doc/jsonld"
)

func TestDereferencer_Dereference(t *testing.T) {
	doc, err := jsonld.FromJSON([]byte(`{
		"@context": "https://www.w3.org/ns/did/v1",
		"id": "https://example.com/issuers/14",
		"verificationMethod": [
			{"id": "https://example.com/issuers/14#key-1", "type": "Ed25519VerificationKey2020"},
			{"@id": "https://example.com/issuers/14#key-2", "type": "JsonWebKey2020",
				"controller": {"id": "https://example.com/controllers/1"}}
		]
	}`))
	require.NoError(t, err)

	d := &jsonld.Dereferencer{Document: doc, Base: "https://example.com/issuers/14"}

	t.Run("Document itself", func(t *testing.T) {
		o, err := d.Dereference("https://example.com/issuers/14")
		require.NoError(t, err)
		require.Same(t, doc, o)
	})

	t.Run("Nested node", func(t *testing.T) {
		o, err := d.Dereference("https://example.com/issuers/14#key-1")
		require.NoError(t, err)
		require.Equal(t, []string{"Ed25519VerificationKey2020"}, o.Types())

		o, err = d.Dereference("https://example.com/controllers/1")
		require.NoError(t, err)
		require.Equal(t, "https://example.com/controllers/1", o.ID())
	})

	t.Run("Relative IRI", func(t *testing.T) {
		o, err := d.Dereference("#key-2")
		require.NoError(t, err)
		require.Equal(t, "https://example.com/issuers/14#key-2", o.ID())
		require.Equal(t, []string{"JsonWebKey2020"}, o.Types())
	})

	t.Run("Objects and maps", func(t *testing.T) {
		o, err := d.Dereference(doc)
		require.NoError(t, err)
		require.Same(t, doc, o)

		c := jsonld.CredentialFromObject(doc)
		o, err = d.Dereference(c)
		require.NoError(t, err)
		require.Same(t, c.Object, o)

		o, err = d.Dereference(map[string]interface{}{"id": "did:example:1", "name": "x"})
		require.NoError(t, err)
		require.Equal(t, "did:example:1", o.ID())
	})

	t.Run("Not found", func(t *testing.T) {
		_, err := d.Dereference("https://example.com/issuers/14#key-3")
		require.ErrorIs(t, err, jsonld.ErrNodeNotFound)

		var derefErr *jsonld.DereferencingError
		require.True(t, errors.As(err, &derefErr))
		require.Equal(t, "https://example.com/issuers/14#key-3", derefErr.Ref)

		_, err = (&jsonld.Dereferencer{}).Dereference("did:example:1")
		require.ErrorIs(t, err, jsonld.ErrNodeNotFound)
	})

	t.Run("Relative IRI without base", func(t *testing.T) {
		_, err := (&jsonld.Dereferencer{Document: doc}).Dereference("#key-1")
		require.EqualError(t, err, "dereference #key-1: no base IRI for relative IRI")
	})

	t.Run("Unsupported value", func(t *testing.T) {
		_, err := d.Dereference(42)
		require.EqualError(t, err, "dereference 42: cannot dereference int")
	})

	t.Run("Context is not searched", func(t *testing.T) {
		withContext, err := jsonld.FromMap(map[string]interface{}{
			"@context": "https://www.w3.org/ns/did/v1",
			"name":     "x",
		})
		require.NoError(t, err)

		_, err = (&jsonld.Dereferencer{Document: withContext}).Dereference("https://www.w3.org/ns/did/v1")
		require.ErrorIs(t, err, jsonld.ErrNodeNotFound)
	})
}
