/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jsonld_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/ldcommon/jsonld-common-go/pkg/doc/jsonld"
	"github.com/ldcommon/jsonld-common-go/pkg/doc/ldcontext/embed"
)

const permanentResidentJSON = `{"@context":["https://www.w3.org/2018/credentials/v1","https://w3id.org/citizenship/v1"],` +
	`"type":["PermanentResident","Person"],"id":"did:example:b34ca6cd37bbf23",` +
	`"givenName":"Marion","familyName":"Mustermann","birthDate":"1958-07-17T00:00:00Z"}`

func TestObject_JSON(t *testing.T) {
	t.Run("Round trip keeps order", func(t *testing.T) {
		o, err := jsonld.FromJSON([]byte(permanentResidentJSON))
		require.NoError(t, err)

		require.Equal(t, []string{embed.CredentialsV1, embed.CitizenshipV1}, o.Contexts())
		require.Equal(t, []string{"PermanentResident", "Person"}, o.Types())
		require.Equal(t, "did:example:b34ca6cd37bbf23", o.ID())
		require.Equal(t, []string{"givenName", "familyName", "birthDate"}, o.Properties().Keys())

		b, err := o.ToJSON()
		require.NoError(t, err)
		require.Equal(t, permanentResidentJSON, string(b))
		require.Equal(t, permanentResidentJSON, o.String())
	})

	t.Run("Builder output", func(t *testing.T) {
		o, err := jsonld.NewBuilder().
			Contexts(embed.CredentialsV1, embed.CitizenshipV1).
			Types("PermanentResident", "Person").
			ID("did:example:b34ca6cd37bbf23").
			Property("givenName", "Marion").
			Property("familyName", "Mustermann").
			Property("birthDate", "1958-07-17T00:00:00Z").
			Build()
		require.NoError(t, err)

		b, err := o.MarshalJSON()
		require.NoError(t, err)
		require.Equal(t, permanentResidentJSON, string(b))

		parsed, err := jsonld.FromJSON(b)
		require.NoError(t, err)
		require.True(t, o.Equal(parsed))
	})

	t.Run("Single values and keywords", func(t *testing.T) {
		o, err := jsonld.FromJSON([]byte(`{"@context":"https://w3id.org/citizenship/v1","@type":"Person",` +
			`"@id":"https://example.com/people/1","address":{"city":"Berlin","zip":["10115"]},"age":42}`))
		require.NoError(t, err)

		require.Equal(t, []string{embed.CitizenshipV1}, o.Contexts())
		require.Equal(t, []string{"Person"}, o.Types())
		require.Equal(t, "https://example.com/people/1", o.ID())

		want := map[string]interface{}{
			"@context": embed.CitizenshipV1,
			"@type":    "Person",
			"@id":      "https://example.com/people/1",
			"address":  map[string]interface{}{"city": "Berlin", "zip": []interface{}{"10115"}},
			"age":      float64(42),
		}

		if diff := cmp.Diff(want, o.ToMap()); diff != "" {
			t.Errorf("ToMap() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Keyword members are written back", func(t *testing.T) {
		doc := `{"@context":"https://w3id.org/citizenship/v1","@type":"Person","@id":"https://example.com/people/1",` +
			`"name":"Max"}`

		o, err := jsonld.FromJSON([]byte(doc))
		require.NoError(t, err)

		b, err := o.ToJSON()
		require.NoError(t, err)
		require.Equal(t, doc, string(b))

		derived, err := jsonld.NewBuilder().Base(o).Type("Citizen").Build()
		require.NoError(t, err)
		require.Equal(t, []interface{}{"Person", "Citizen"}, derived.ToMap()["@type"])
		require.Equal(t, "https://example.com/people/1", derived.ToMap()["@id"])
	})

	t.Run("Inline contexts", func(t *testing.T) {
		doc := `{"@context":["https://w3id.org/citizenship/v1",{"nickname":"http://schema.org/alternateName"}],` +
			`"type":"Person","nickname":"Maxi"}`

		o, err := jsonld.FromJSON([]byte(doc))
		require.NoError(t, err)

		require.Equal(t, []string{embed.CitizenshipV1}, o.Contexts())
		require.Equal(t, []interface{}{
			embed.CitizenshipV1,
			map[string]interface{}{"nickname": "http://schema.org/alternateName"},
		}, o.ContextEntries())

		b, err := o.ToJSON()
		require.NoError(t, err)
		require.Equal(t, doc, string(b))

		entries := o.ContextEntries()
		entries[1].(map[string]interface{})["nickname"] = "changed"
		require.Equal(t, doc, o.String())

		single, err := jsonld.FromJSON([]byte(`{"@context":{"name":"http://schema.org/name"},"name":"Max"}`))
		require.NoError(t, err)
		require.Empty(t, single.Contexts())
		require.Equal(t, map[string]interface{}{"name": "http://schema.org/name"}, single.ToMap()["@context"])
		require.Equal(t, `{"@context":{"name":"http://schema.org/name"},"name":"Max"}`, single.String())

		extended, err := jsonld.NewBuilder().Base(o).Context(embed.CredentialsV1).Build()
		require.NoError(t, err)
		require.Equal(t, []string{embed.CitizenshipV1, embed.CredentialsV1}, extended.Contexts())
		require.Len(t, extended.ContextEntries(), 3)
	})

	t.Run("Single element arrays stay arrays", func(t *testing.T) {
		doc := `{"@context":["https://w3id.org/citizenship/v1"],"type":["Person"]}`

		o, err := jsonld.FromJSON([]byte(doc))
		require.NoError(t, err)

		b, err := o.ToJSON()
		require.NoError(t, err)
		require.Equal(t, doc, string(b))
	})

	t.Run("Indent", func(t *testing.T) {
		o, err := jsonld.NewBuilder().Context(embed.CitizenshipV1).Build()
		require.NoError(t, err)

		b, err := o.ToJSONIndent("", "  ")
		require.NoError(t, err)
		require.Equal(t, "{\n  \"@context\": \"https://w3id.org/citizenship/v1\"\n}", string(b))
	})

	t.Run("Invalid documents", func(t *testing.T) {
		for _, doc := range []string{
			`{`,
			`[]`,
			`{"@context":42}`,
			`{"@context":["https://w3id.org/citizenship/v1",42]}`,
			`{"@context":true}`,
			`{"type":{"a":"b"}}`,
			`{"id":42}`,
		} {
			_, err := jsonld.FromJSON([]byte(doc))
			require.Error(t, err, doc)
		}

		_, err := jsonld.FromJSON([]byte(`{"id":42}`))

		var validationErr *jsonld.ValidationError
		require.True(t, errors.As(err, &validationErr))
		require.Equal(t, "id", validationErr.Field)
	})

	t.Run("From map", func(t *testing.T) {
		o, err := jsonld.FromMap(map[string]interface{}{
			"@context":   []interface{}{embed.CredentialsV1},
			"type":       "Person",
			"givenName":  "Marion",
			"familyName": "Mustermann",
		})
		require.NoError(t, err)
		require.Equal(t, []string{"familyName", "givenName"}, o.Properties().Keys())
		require.Equal(t, []interface{}{embed.CredentialsV1}, o.ToMap()["@context"])
	})
}

func TestObject_Decode(t *testing.T) {
	o, err := jsonld.FromJSON([]byte(permanentResidentJSON))
	require.NoError(t, err)

	var resident struct {
		ID         string    `json:"id"`
		Types      []string  `json:"type"`
		GivenName  string    `json:"givenName"`
		FamilyName string    `json:"familyName"`
		BirthDate  time.Time `json:"birthDate"`
	}

	require.NoError(t, o.Decode(&resident))
	require.Equal(t, "did:example:b34ca6cd37bbf23", resident.ID)
	require.Equal(t, []string{"PermanentResident", "Person"}, resident.Types)
	require.Equal(t, "Mustermann", resident.FamilyName)
	require.Equal(t, time.Date(1958, 7, 17, 0, 0, 0, 0, time.UTC), resident.BirthDate)

	var invalid struct {
		GivenName int `json:"givenName"`
	}

	require.ErrorContains(t, o.Decode(&invalid), "decode JSON-LD object")
}

func TestObject_KindIsCopied(t *testing.T) {
	c, err := jsonld.NewCredentialBuilder().Build()
	require.NoError(t, err)

	kind := c.Kind()
	kind.DefaultContexts[0] = "https://example.com/changed"
	kind.DefaultTypes[0] = "Changed"

	require.Equal(t, embed.CredentialsV1, jsonld.CredentialKind.DefaultContexts[0])
	require.Equal(t, "VerifiableCredential", jsonld.CredentialKind.DefaultTypes[0])
	require.Equal(t, jsonld.CredentialKind, c.Kind())
}

func TestProperties(t *testing.T) {
	p := jsonld.NewProperties().Set("b", 1).Set("a", 2).Set("c", 3)
	p.Set("b", 4)

	require.Equal(t, []string{"b", "a", "c"}, p.Keys())

	v, ok := p.Get("b")
	require.True(t, ok)
	require.Equal(t, 4, v)

	p.Delete("a")
	p.Delete("missing")
	require.Equal(t, []string{"b", "c"}, p.Keys())
	require.Equal(t, 2, p.Len())

	var visited []string

	p.Range(func(name string, _ interface{}) bool {
		visited = append(visited, name)

		return false
	})
	require.Equal(t, []string{"b"}, visited)

	b, err := p.MarshalJSON()
	require.NoError(t, err)
	require.Equal(t, `{"b":4,"c":3}`, string(b))

	var zero jsonld.Properties

	require.Zero(t, zero.Len())
	require.NoError(t, zero.UnmarshalJSON([]byte(`{"z":[1,{"y":null}],"x":true}`)))
	require.Equal(t, []string{"z", "x"}, zero.Keys())
	require.Equal(t, map[string]interface{}{
		"z": []interface{}{float64(1), map[string]interface{}{"y": nil}},
		"x": true,
	}, zero.ToMap())

	require.Error(t, zero.UnmarshalJSON([]byte(`{"a":`)))
}
