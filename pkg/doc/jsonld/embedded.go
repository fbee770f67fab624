/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jsonld

import "fmt"

// AddTo adds the document of o to parent under term, or under the default predicate of its kind when
// term is empty.
func (o *Object) AddTo(parent map[string]interface{}, term string) error {
	term, err := o.predicate(term)
	if err != nil {
		return err
	}

	AddValue(parent, term, o.ToMap())

	return nil
}

// AddToAsArray is like AddTo but always stores an array under term.
func (o *Object) AddToAsArray(parent map[string]interface{}, term string) error {
	term, err := o.predicate(term)
	if err != nil {
		return err
	}

	AddValues(parent, term, o.ToMap())

	return nil
}

func (o *Object) predicate(term string) (string, error) {
	if term != "" {
		return term, nil
	}

	if o.kind.DefaultPredicate == "" {
		return "", fmt.Errorf("%s has no default predicate", o.kind.Name)
	}

	return o.kind.DefaultPredicate, nil
}

// GetFromObject returns the object of the given kind embedded in parent under the kind's default predicate.
// It returns nil when parent has no such member.
func GetFromObject(parent *Object, kind Kind) (*Object, error) {
	obj, err := GetJSONObject(parent.ToMap(), kind.DefaultPredicate)
	if err != nil {
		return nil, err
	}

	if obj == nil {
		return nil, nil
	}

	return fromProperties(PropertiesFromMap(obj), kind)
}

// GetListFromObject returns all objects of the given kind embedded in parent under the kind's default predicate.
func GetListFromObject(parent *Object, kind Kind) ([]*Object, error) {
	v, ok := parent.Property(kind.DefaultPredicate)
	if !ok {
		return nil, nil
	}

	values := toArray(plainValue(v))
	objects := make([]*Object, 0, len(values))

	for _, item := range values {
		m, isMap := item.(map[string]interface{})
		if !isMap {
			return nil, fmt.Errorf("cannot get JSON-LD object %q from %T", kind.DefaultPredicate, item)
		}

		o, err := fromProperties(PropertiesFromMap(m), kind)
		if err != nil {
			return nil, err
		}

		objects = append(objects, o)
	}

	return objects, nil
}

// RemoveFromObject returns a copy of parent without the member named by the kind's default predicate.
func RemoveFromObject(parent *Object, kind Kind) *Object {
	o := *parent
	o.contexts = copyContexts(parent.contexts)
	o.types = parent.Types()
	o.properties = parent.Properties()
	o.properties.Delete(kind.DefaultPredicate)

	return &o
}
