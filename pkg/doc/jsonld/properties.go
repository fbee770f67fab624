/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jsonld

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/goccy/go-json"
)

// Properties is a mapping of JSON-LD terms to JSON values that remembers insertion order.
// The zero value is an empty mapping ready to use.
type Properties struct {
	keys   []string
	values map[string]interface{}
}

// NewProperties returns an empty mapping.
func NewProperties() *Properties {
	return &Properties{}
}

// PropertiesFromMap returns the entries of m ordered by key.
func PropertiesFromMap(m map[string]interface{}) *Properties {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	p := &Properties{}
	for _, k := range keys {
		p.Set(k, m[k])
	}

	return p
}

// Set adds or replaces the value of name. A replaced entry keeps its position.
func (p *Properties) Set(name string, value interface{}) *Properties {
	if p.values == nil {
		p.values = make(map[string]interface{})
	}

	if _, ok := p.values[name]; !ok {
		p.keys = append(p.keys, name)
	}

	p.values[name] = value

	return p
}

// Get returns the value of name.
func (p *Properties) Get(name string) (interface{}, bool) {
	if p == nil {
		return nil, false
	}

	v, ok := p.values[name]

	return v, ok
}

// Delete removes name.
func (p *Properties) Delete(name string) {
	if _, ok := p.values[name]; !ok {
		return
	}

	delete(p.values, name)

	for i, k := range p.keys {
		if k == name {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)

			break
		}
	}
}

// Len returns the number of entries.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}

	return len(p.keys)
}

// Keys returns the names in insertion order.
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}

	return append([]string(nil), p.keys...)
}

// Range calls f for every entry in order until f returns false.
func (p *Properties) Range(f func(name string, value interface{}) bool) {
	if p == nil {
		return
	}

	for _, k := range p.keys {
		if !f(k, p.values[k]) {
			return
		}
	}
}

// Clone returns a deep copy of p.
func (p *Properties) Clone() *Properties {
	c := &Properties{}

	p.Range(func(name string, value interface{}) bool {
		c.Set(name, copyValue(value))

		return true
	})

	return c
}

// ToMap returns a deep copy of the entries as a map. Nested Properties and objects are converted to maps.
func (p *Properties) ToMap() map[string]interface{} {
	m := make(map[string]interface{}, p.Len())

	p.Range(func(name string, value interface{}) bool {
		m[name] = plainValue(value)

		return true
	})

	return m
}

// MarshalJSON writes the entries in insertion order.
func (p *Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, k := range p.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}

		if err := writeMember(&buf, k, p.values[k]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping the order of its top level members.
func (p *Properties) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read properties: %w", err)
	}

	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("read properties: expected JSON object")
	}

	*p = Properties{}

	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return fmt.Errorf("read properties: %w", err)
		}

		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("read properties: unexpected token %v", tok)
		}

		value, err := readValue(dec)
		if err != nil {
			return fmt.Errorf("read property %s: %w", name, err)
		}

		p.Set(name, value)
	}

	if _, err = dec.Token(); err != nil {
		return fmt.Errorf("read properties: %w", err)
	}

	return nil
}

func writeMember(buf *bytes.Buffer, name string, value interface{}) error {
	k, err := json.Marshal(name)
	if err != nil {
		return err
	}

	v, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal property %s: %w", name, err)
	}

	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)

	return nil
}

func readValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}

		return nil, err
	}

	d, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch d {
	case '{':
		m := make(map[string]interface{})

		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}

			key, _ := keyTok.(string)

			if m[key], err = readValue(dec); err != nil {
				return nil, err
			}
		}

		_, err = dec.Token()

		return m, err
	case '[':
		a := make([]interface{}, 0)

		for dec.More() {
			v, err := readValue(dec)
			if err != nil {
				return nil, err
			}

			a = append(a, v)
		}

		_, err = dec.Token()

		return a, err
	default:
		return nil, fmt.Errorf("unexpected delimiter %s", d)
	}
}

func copyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(val))
		for k, item := range val {
			m[k] = copyValue(item)
		}

		return m
	case []interface{}:
		a := make([]interface{}, len(val))
		for i, item := range val {
			a[i] = copyValue(item)
		}

		return a
	case *Properties:
		return val.Clone()
	default:
		return v
	}
}

type mapper interface {
	ToMap() map[string]interface{}
}

// plainValue deep copies v replacing ordered values with plain maps.
func plainValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(val))
		for k, item := range val {
			m[k] = plainValue(item)
		}

		return m
	case []interface{}:
		a := make([]interface{}, len(val))
		for i, item := range val {
			a[i] = plainValue(item)
		}

		return a
	case mapper:
		return val.ToMap()
	default:
		return v
	}
}
