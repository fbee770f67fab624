/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package jsonld builds JSON-LD objects from contexts, types and properties and converts them to RDF.
package jsonld

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/piprate/json-gold/ld"
	"golang.org/x/exp/slices"
)

// JSON-LD keywords and the credentials-v1 aliases objects are written with.
const (
	ContextKey   = "@context"
	TypeKey      = "type"
	IDKey        = "id"
	TypeKeyword  = "@type"
	IDKeyword    = "@id"
	ValueKeyword = "@value"
)

// Object is an immutable JSON-LD object. Accessors return copies.
type Object struct {
	// contexts holds context URIs (string) and inline context definitions (map[string]interface{}).
	contexts           []interface{}
	types              []string
	id                 string
	typeKey            string
	idKey              string
	properties         *Properties
	kind               Kind
	loader             ld.DocumentLoader
	forceContextsArray bool
	forceTypesArray    bool
}

// Contexts returns the context URIs in order. Inline context definitions are skipped.
func (o *Object) Contexts() []string {
	var uris []string

	for _, c := range o.contexts {
		if s, ok := c.(string); ok {
			uris = append(uris, s)
		}
	}

	return uris
}

// ContextEntries returns a copy of every @context entry, URIs and inline definitions alike.
func (o *Object) ContextEntries() []interface{} {
	return copyContexts(o.contexts)
}

// Types returns the types in order.
func (o *Object) Types() []string {
	return slices.Clone(o.types)
}

// ID returns the node identifier, empty when not set.
func (o *Object) ID() string {
	return o.id
}

// Properties returns a copy of the properties.
func (o *Object) Properties() *Properties {
	return o.properties.Clone()
}

// Property returns a copy of a single property value.
func (o *Object) Property(name string) (interface{}, bool) {
	v, ok := o.properties.Get(name)

	return copyValue(v), ok
}

// Kind returns the kind the object was built for.
func (o *Object) Kind() Kind {
	k := o.kind
	k.DefaultContexts = slices.Clone(k.DefaultContexts)
	k.DefaultTypes = slices.Clone(k.DefaultTypes)

	return k
}

// DocumentLoader returns the loader attached at build time, nil when none was set.
func (o *Object) DocumentLoader() ld.DocumentLoader {
	return o.loader
}

// Equal reports whether both objects have the same contexts, types, id and properties.
func (o *Object) Equal(other *Object) bool {
	if o == nil || other == nil {
		return o == other
	}

	a, err := o.ToJSON()
	if err != nil {
		return false
	}

	b, err := other.ToJSON()
	if err != nil {
		return false
	}

	return bytes.Equal(a, b)
}

// ToMap returns the JSON-LD document of the object.
func (o *Object) ToMap() map[string]interface{} {
	m := o.properties.ToMap()

	if c := o.contextValue(); c != nil {
		m[ContextKey] = c
	}

	if t := o.typeValue(); t != nil {
		m[o.typeMember()] = t
	}

	if o.id != "" {
		m[o.idMember()] = o.id
	}

	return m
}

// ToJSON returns the JSON-LD document with @context, type and id first (under the member names they were read
// from) and the properties in order.
func (o *Object) ToJSON() ([]byte, error) {
	doc := &Properties{}

	if c := o.contextValue(); c != nil {
		doc.Set(ContextKey, c)
	}

	if t := o.typeValue(); t != nil {
		doc.Set(o.typeMember(), t)
	}

	if o.id != "" {
		doc.Set(o.idMember(), o.id)
	}

	o.properties.Range(func(name string, value interface{}) bool {
		doc.Set(name, value)

		return true
	})

	return doc.MarshalJSON()
}

// ToJSONIndent is like ToJSON but indents the output.
func (o *Object) ToJSONIndent(prefix, indent string) ([]byte, error) {
	b, err := o.ToJSON()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer

	if err = json.Indent(&buf, b, prefix, indent); err != nil {
		return nil, fmt.Errorf("indent JSON-LD object: %w", err)
	}

	return buf.Bytes(), nil
}

// MarshalJSON implements json.Marshaler.
func (o *Object) MarshalJSON() ([]byte, error) {
	return o.ToJSON()
}

// String returns the JSON document, or an empty string if it cannot be serialized.
func (o *Object) String() string {
	b, err := o.ToJSON()
	if err != nil {
		return ""
	}

	return string(b)
}

func (o *Object) contextValue() interface{} {
	return listValue(copyContexts(o.contexts), o.forceContextsArray)
}

func (o *Object) typeValue() interface{} {
	a := make([]interface{}, len(o.types))
	for i, t := range o.types {
		a[i] = t
	}

	return listValue(a, o.forceTypesArray)
}

func (o *Object) typeMember() string {
	if o.typeKey != "" {
		return o.typeKey
	}

	return TypeKey
}

func (o *Object) idMember() string {
	if o.idKey != "" {
		return o.idKey
	}

	return IDKey
}

func listValue(values []interface{}, forceArray bool) interface{} {
	switch {
	case len(values) == 0:
		return nil
	case len(values) == 1 && !forceArray:
		return values[0]
	default:
		return values
	}
}

func copyContexts(contexts []interface{}) []interface{} {
	if contexts == nil {
		return nil
	}

	out := make([]interface{}, len(contexts))
	for i, c := range contexts {
		out[i] = copyValue(c)
	}

	return out
}

func stringContexts(uris []string) []interface{} {
	out := make([]interface{}, len(uris))
	for i, u := range uris {
		out[i] = u
	}

	return out
}

// FromJSON reads an object of ObjectKind from a JSON-LD document, keeping the member order.
func FromJSON(data []byte) (*Object, error) {
	return fromJSON(data, ObjectKind)
}

// FromMap reads an object of ObjectKind from a JSON-LD document. Properties are ordered by name.
func FromMap(m map[string]interface{}) (*Object, error) {
	return fromProperties(PropertiesFromMap(m), ObjectKind)
}

func fromJSON(data []byte, kind Kind) (*Object, error) {
	props := &Properties{}

	if err := json.Unmarshal(data, props); err != nil {
		return nil, fmt.Errorf("read JSON-LD object: %w", err)
	}

	return fromProperties(props, kind)
}

func fromProperties(props *Properties, kind Kind) (*Object, error) {
	o := &Object{kind: kind}

	var err error

	if v, ok := props.Get(ContextKey); ok {
		o.contexts, o.forceContextsArray, err = readContexts(v)
		if err != nil {
			return nil, err
		}

		props.Delete(ContextKey)
	}

	for _, key := range []string{TypeKey, TypeKeyword} {
		if v, ok := props.Get(key); ok {
			o.types, o.forceTypesArray, err = readStringList(key, v)
			if err != nil {
				return nil, err
			}

			o.typeKey = key

			props.Delete(key)

			break
		}
	}

	for _, key := range []string{IDKey, IDKeyword} {
		if v, ok := props.Get(key); ok {
			id, isString := v.(string)
			if !isString {
				return nil, &ValidationError{Field: key, Value: v, Err: errNotString}
			}

			o.id = id
			o.idKey = key

			props.Delete(key)

			break
		}
	}

	o.properties = props

	return o, nil
}

func readContexts(v interface{}) ([]interface{}, bool, error) {
	switch val := v.(type) {
	case string:
		return []interface{}{val}, false, nil
	case map[string]interface{}:
		return []interface{}{copyValue(val)}, false, nil
	case []interface{}:
		out := make([]interface{}, 0, len(val))

		for _, item := range val {
			switch item.(type) {
			case string, map[string]interface{}:
				out = append(out, copyValue(item))
			default:
				return nil, false, &ValidationError{Field: ContextKey, Value: item, Err: errNotContext}
			}
		}

		return out, len(out) == 1, nil
	case []string:
		return stringContexts(val), len(val) == 1, nil
	default:
		return nil, false, &ValidationError{Field: ContextKey, Value: v, Err: errNotContext}
	}
}

func readStringList(field string, v interface{}) ([]string, bool, error) {
	switch val := v.(type) {
	case string:
		return []string{val}, false, nil
	case []interface{}:
		out := make([]string, 0, len(val))

		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, false, &ValidationError{Field: field, Value: item, Err: errNotString}
			}

			out = append(out, s)
		}

		return out, len(out) == 1, nil
	case []string:
		return slices.Clone(val), len(val) == 1, nil
	default:
		return nil, false, &ValidationError{Field: field, Value: v, Err: errNotString}
	}
}
