/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jsonld

import (
	"errors"
	"fmt"

	"github.com/piprate/json-gold/ld"
)

// ErrNodeNotFound is returned when no node of a document has the requested id.
var ErrNodeNotFound = errors.New("node not found")

// Dereferencer finds nodes of Document by id.
type Dereferencer struct {
	Document *Object
	// Base resolves relative IRIs. Without it only absolute IRIs can be dereferenced.
	Base string
}

// Dereference returns v when it already is an object or a JSON object, and otherwise searches
// Document for the node whose id is the IRI v.
func (d *Dereferencer) Dereference(v interface{}) (*Object, error) {
	switch val := v.(type) {
	case *Object:
		return val, nil
	case *Credential:
		return val.Object, nil
	case map[string]interface{}:
		return FromMap(val)
	case string:
		return d.findByIRI(val)
	default:
		return nil, &DereferencingError{Ref: fmt.Sprint(v), Err: fmt.Errorf("cannot dereference %T", v)}
	}
}

func (d *Dereferencer) findByIRI(iri string) (*Object, error) {
	id := iri

	if !ld.IsAbsoluteIri(id) {
		if d.Base == "" {
			return nil, &DereferencingError{Ref: iri, Err: errors.New("no base IRI for relative IRI")}
		}

		id = ld.Resolve(d.Base, id)
	}

	if d.Document == nil {
		return nil, &DereferencingError{Ref: id, Err: ErrNodeNotFound}
	}

	if d.Document.id == id {
		return d.Document, nil
	}

	if m := findByID(d.Document.ToMap(), id); m != nil {
		return FromMap(m)
	}

	return nil, &DereferencingError{Ref: id, Err: ErrNodeNotFound}
}

func findByID(v interface{}, id string) map[string]interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		for _, key := range []string{IDKey, IDKeyword} {
			if s, ok := val[key].(string); ok && s == id {
				return val
			}
		}

		for k, item := range val {
			if k == ContextKey {
				continue
			}

			if found := findByID(item, id); found != nil {
				return found
			}
		}
	case []interface{}:
		for _, item := range val {
			if found := findByID(item, id); found != nil {
				return found
			}
		}
	}

	return nil
}
