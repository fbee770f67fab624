/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jsonld

import (
	"fmt"
)

// AddValue adds value under term. An existing single value becomes an array. A slice with one element is
// stored as that element and an empty slice is ignored.
func AddValue(m map[string]interface{}, term string, value interface{}) {
	existing, ok := m[term]

	if !ok {
		if list, isList := value.([]interface{}); isList {
			switch len(list) {
			case 0:
				return
			case 1:
				m[term] = list[0]

				return
			}
		}

		m[term] = value

		return
	}

	m[term] = append(toArray(existing), value)
}

// AddValues adds values under term, always storing an array.
func AddValues(m map[string]interface{}, term string, values ...interface{}) {
	if len(values) == 0 {
		return
	}

	existing, ok := m[term]
	if !ok {
		m[term] = append([]interface{}(nil), values...)

		return
	}

	m[term] = append(toArray(existing), values...)
}

// AddAll copies every entry of src into m, replacing existing terms.
func AddAll(m, src map[string]interface{}) {
	for k, v := range src {
		m[k] = v
	}
}

// Remove deletes term.
func Remove(m map[string]interface{}, term string) {
	delete(m, term)
}

// GetString returns the string under term. A single element array is accepted.
// A missing term yields an empty string and no error.
func GetString(m map[string]interface{}, term string) (string, error) {
	entry, ok := m[term]
	if !ok || entry == nil {
		return "", nil
	}

	switch v := entry.(type) {
	case string:
		return v, nil
	case []interface{}:
		if len(v) == 1 {
			if s, isString := v[0].(string); isString {
				return s, nil
			}
		}

		return "", fmt.Errorf("cannot get string %q from list %v", term, v)
	default:
		return "", fmt.Errorf("cannot get string %q from %T", term, entry)
	}
}

// GetStringOrObjectID returns the string under term, or the id of the object under term.
func GetStringOrObjectID(m map[string]interface{}, term string) (string, error) {
	entry, ok := m[term]
	if !ok || entry == nil {
		return "", nil
	}

	obj, isMap := entry.(map[string]interface{})
	if !isMap {
		return GetString(m, term)
	}

	for _, key := range []string{IDKey, IDKeyword} {
		if id, isString := obj[key].(string); isString {
			return id, nil
		}
	}

	return "", fmt.Errorf("cannot get string %q from object without id", term)
}

// GetStringList returns the strings under term. Non-string array elements are returned as empty strings.
func GetStringList(m map[string]interface{}, term string) ([]string, error) {
	entry, ok := m[term]
	if !ok || entry == nil {
		return nil, nil
	}

	switch v := entry.(type) {
	case string:
		return []string{v}, nil
	case []string:
		return append([]string(nil), v...), nil
	case []interface{}:
		out := make([]string, len(v))

		for i, item := range v {
			out[i], _ = item.(string)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("cannot get string list %q from %T", term, entry)
	}
}

// GetJSONObject returns the object under term. A single element array holding an object is accepted.
func GetJSONObject(m map[string]interface{}, term string) (map[string]interface{}, error) {
	entry, ok := m[term]
	if !ok || entry == nil {
		return nil, nil
	}

	switch v := entry.(type) {
	case map[string]interface{}:
		return v, nil
	case []interface{}:
		if len(v) == 1 {
			if obj, isMap := v[0].(map[string]interface{}); isMap {
				return obj, nil
			}
		}
	}

	return nil, fmt.Errorf("cannot get JSON object %q from %T", term, entry)
}

// GetJSONArray returns the array under term.
func GetJSONArray(m map[string]interface{}, term string) ([]interface{}, error) {
	entry, ok := m[term]
	if !ok || entry == nil {
		return nil, nil
	}

	a, isArray := entry.([]interface{})
	if !isArray {
		return nil, fmt.Errorf("cannot get JSON array %q from %T", term, entry)
	}

	return a, nil
}

// ContainsString reports whether term holds value, either directly or as an array element.
func ContainsString(m map[string]interface{}, term, value string) bool {
	switch v := m[term].(type) {
	case string:
		return v == value
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && s == value {
				return true
			}
		}
	case []string:
		for _, s := range v {
			if s == value {
				return true
			}
		}
	}

	return false
}

func toArray(v interface{}) []interface{} {
	if a, ok := v.([]interface{}); ok {
		return append([]interface{}(nil), a...)
	}

	return []interface{}{v}
}
