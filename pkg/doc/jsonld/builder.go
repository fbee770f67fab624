/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jsonld

import (
	"github.com/goccy/go-json"
	"github.com/piprate/json-gold/ld"
	"golang.org/x/exp/slices"
)

// Builder accumulates contexts, types, id and properties and builds objects of type T.
// A Builder is not reset by Build; building again without further calls yields an equal object.
type Builder[T any] struct {
	kind     Kind
	finalize func(*Object) T

	contexts           []string
	types              []string
	id                 string
	properties         *Properties
	base               *Object
	loader             ld.DocumentLoader
	defaultContexts    bool
	defaultTypes       bool
	forceContextsArray bool
	forceTypesArray    bool
}

// NewBuilder returns a builder of plain objects.
func NewBuilder() *Builder[*Object] {
	return NewKindBuilder(ObjectKind, func(o *Object) *Object { return o })
}

// NewKindBuilder returns a builder of objects of the given kind. finalize turns the built object into T.
func NewKindBuilder[T any](kind Kind, finalize func(*Object) T) *Builder[T] {
	return &Builder[T]{
		kind:       kind,
		finalize:   finalize,
		properties: &Properties{},
	}
}

// Contexts replaces the context URIs.
func (b *Builder[T]) Contexts(contexts ...string) *Builder[T] {
	b.contexts = slices.Clone(contexts)

	return b
}

// Context appends a context URI.
func (b *Builder[T]) Context(context string) *Builder[T] {
	b.contexts = append(b.contexts, context)

	return b
}

// Types replaces the types.
func (b *Builder[T]) Types(types ...string) *Builder[T] {
	b.types = slices.Clone(types)

	return b
}

// Type appends a type.
func (b *Builder[T]) Type(t string) *Builder[T] {
	b.types = append(b.types, t)

	return b
}

// ID sets the node identifier.
func (b *Builder[T]) ID(id string) *Builder[T] {
	b.id = id

	return b
}

// Properties replaces the properties with the entries of m, ordered by name.
func (b *Builder[T]) Properties(m map[string]interface{}) *Builder[T] {
	b.properties = PropertiesFromMap(m)

	return b
}

// OrderedProperties replaces the properties with a copy of p.
func (b *Builder[T]) OrderedProperties(p *Properties) *Builder[T] {
	b.properties = p.Clone()

	return b
}

// Property adds or replaces a single property.
func (b *Builder[T]) Property(name string, value interface{}) *Builder[T] {
	b.properties.Set(name, copyValue(value))

	return b
}

// DefaultContexts adds the kind's default contexts at build time, after the base object's contexts and before
// the explicit ones. Duplicates are kept.
func (b *Builder[T]) DefaultContexts(enabled bool) *Builder[T] {
	b.defaultContexts = enabled

	return b
}

// DefaultTypes adds the kind's default types at build time, after the base object's types and before the
// explicit ones. Duplicates are kept.
func (b *Builder[T]) DefaultTypes(enabled bool) *Builder[T] {
	b.defaultTypes = enabled

	return b
}

// ForceContextsArray writes @context as an array even when there is a single context.
func (b *Builder[T]) ForceContextsArray(enabled bool) *Builder[T] {
	b.forceContextsArray = enabled

	return b
}

// ForceTypesArray writes type as an array even when there is a single type.
func (b *Builder[T]) ForceTypesArray(enabled bool) *Builder[T] {
	b.forceTypesArray = enabled

	return b
}

// Base starts from the contexts, types, id and properties of o. Defaults and values set on the builder are
// added after them.
func (b *Builder[T]) Base(o *Object) *Builder[T] {
	b.base = o

	return b
}

// DocumentLoader attaches a JSON-LD document loader to the built object.
func (b *Builder[T]) DocumentLoader(loader ld.DocumentLoader) *Builder[T] {
	b.loader = loader

	return b
}

// Build validates the accumulated values and returns a new object.
func (b *Builder[T]) Build() (T, error) {
	o, err := b.build()
	if err != nil {
		var zero T

		return zero, err
	}

	return b.finalize(o), nil
}

func (b *Builder[T]) build() (*Object, error) {
	o := &Object{
		kind:               b.kind,
		loader:             b.loader,
		forceContextsArray: b.forceContextsArray,
		forceTypesArray:    b.forceTypesArray,
		properties:         &Properties{},
	}

	if b.base != nil {
		o.contexts = copyContexts(b.base.contexts)
		o.types = slices.Clone(b.base.types)
		o.id = b.base.id
		o.typeKey = b.base.typeKey
		o.idKey = b.base.idKey
		o.properties = b.base.properties.Clone()

		if o.loader == nil {
			o.loader = b.base.loader
		}
	}

	if b.defaultContexts {
		o.contexts = append(o.contexts, stringContexts(b.kind.DefaultContexts)...)
	}

	if b.defaultTypes {
		o.types = append(o.types, b.kind.DefaultTypes...)
	}

	o.contexts = append(o.contexts, stringContexts(b.contexts)...)
	o.types = append(o.types, b.types...)

	if b.id != "" {
		o.id = b.id
	}

	b.properties.Range(func(name string, value interface{}) bool {
		o.properties.Set(name, copyValue(value))

		return true
	})

	if err := validate(o); err != nil {
		return nil, err
	}

	return o, nil
}

func validate(o *Object) error {
	for _, c := range o.contexts {
		if uri, ok := c.(string); ok && !ld.IsAbsoluteIri(uri) {
			return &ValidationError{Field: ContextKey, Value: c, Err: errNotAbsoluteIRI}
		}
	}

	for _, t := range o.types {
		if t == "" {
			return &ValidationError{Field: TypeKey, Value: t, Err: errEmpty}
		}
	}

	if o.id != "" && !ld.IsAbsoluteIri(o.id) {
		return &ValidationError{Field: IDKey, Value: o.id, Err: errNotAbsoluteIRI}
	}

	var err error

	o.properties.Range(func(name string, value interface{}) bool {
		switch name {
		case "":
			err = &ValidationError{Field: "property", Value: name, Err: errEmpty}
		case ContextKey, TypeKey, TypeKeyword, IDKey, IDKeyword:
			err = &ValidationError{Field: name, Value: value, Err: errReserved}
		default:
			if _, mErr := json.Marshal(value); mErr != nil {
				err = &ValidationError{Field: name, Value: value, Err: mErr}
			}
		}

		return err == nil
	})

	return err
}
