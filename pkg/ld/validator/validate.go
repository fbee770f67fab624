/*
Copyright SecureKey Technologies Inc. All Rights Reserved.
SPDX-License-Identifier: Apache-2.0
*/

// Package validator checks the structure of JSON-LD documents.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"bitbucket.org/creachadair/stringset"
	"github.com/goccy/go-json"
	"github.com/piprate/json-gold/ld"

	"github.com/ldcommon/jsonld-common-go/pkg/ld/processor"
)

// UndefinedTermIRI is the vocabulary undefined terms expand to during the undefined term check.
const UndefinedTermIRI = "urn:UNDEFINEDTERM"

// ErrStructureMismatch is returned when a document changes its structure after compaction, which happens
// when some of its terms are not defined by its contexts.
var ErrStructureMismatch = errors.New("JSON-LD doc has different structure after compaction")

// UndefinedTermsError lists the terms of a document that none of its contexts define.
type UndefinedTermsError struct {
	Terms []string
}

func (e *UndefinedTermsError) Error() string {
	return "undefined JSON-LD terms: " + strings.Join(e.Terms, ", ")
}

type validateOpts struct {
	strict               bool
	undefinedTerms       bool
	jsonldDocumentLoader ld.DocumentLoader
	externalContext      []string
	contextURIPositions  []string
}

// ValidateOpts sets jsonld validation options.
type ValidateOpts func(opts *validateOpts)

// WithDocumentLoader option is for passing custom JSON-LD document loader.
func WithDocumentLoader(jsonldDocumentLoader ld.DocumentLoader) ValidateOpts {
	return func(opts *validateOpts) {
		opts.jsonldDocumentLoader = jsonldDocumentLoader
	}
}

// WithExternalContext option is for definition of external context when doing JSON-LD operations.
func WithExternalContext(externalContext ...string) ValidateOpts {
	return func(opts *validateOpts) {
		opts.externalContext = externalContext
	}
}

// WithStrictValidation sets if the compaction structure check should be used. Enabled by default.
func WithStrictValidation(checkStructure bool) ValidateOpts {
	return func(opts *validateOpts) {
		opts.strict = checkStructure
	}
}

// WithUndefinedTermCheck sets if terms undefined by the document contexts are reported. Enabled by default.
func WithUndefinedTermCheck(check bool) ValidateOpts {
	return func(opts *validateOpts) {
		opts.undefinedTerms = check
	}
}

// WithStrictContextURIPosition sets strict validation of URI position within context property.
// The index of uri in underlying slice represents the position of given uri in @context array.
func WithStrictContextURIPosition(uri string) ValidateOpts {
	return func(opts *validateOpts) {
		opts.contextURIPositions = append(opts.contextURIPositions, uri)
	}
}

func getValidateOpts(options []ValidateOpts) *validateOpts {
	result := &validateOpts{
		strict:         true,
		undefinedTerms: true,
	}

	for _, opt := range options {
		opt(result)
	}

	return result
}

// ValidateJSONLD validates jsonld structure.
func ValidateJSONLD(doc string, options ...ValidateOpts) error {
	var docMap map[string]interface{}

	if err := json.Unmarshal([]byte(doc), &docMap); err != nil {
		return fmt.Errorf("convert JSON-LD doc to map: %w", err)
	}

	return ValidateJSONLDMap(docMap, options...)
}

// ValidateJSONLDMap validates jsonld structure.
func ValidateJSONLDMap(docMap map[string]interface{}, options ...ValidateOpts) error {
	opts := getValidateOpts(options)

	if err := validateContextURIPosition(opts.contextURIPositions, docMap); err != nil {
		return fmt.Errorf("validate context URI position: %w", err)
	}

	procOpts := []processor.Opts{
		processor.WithDocumentLoader(opts.jsonldDocumentLoader),
		processor.WithExternalContext(opts.externalContext...),
	}

	if opts.undefinedTerms {
		if err := checkUndefinedTerms(docMap, procOpts); err != nil {
			return err
		}
	}

	if !opts.strict {
		return nil
	}

	docCompactedMap, err := processor.Default().Compact(docMap, nil, procOpts...)
	if err != nil {
		return fmt.Errorf("check compaction structure: %w", err)
	}

	if !mapsHaveSameStructure(docMap, docCompactedMap) {
		return ErrStructureMismatch
	}

	return nil
}

func checkUndefinedTerms(docMap map[string]interface{}, procOpts []processor.Opts) error {
	expanded, err := processor.Default().Expand(docMap,
		append(procOpts, processor.WithExpandContext(map[string]interface{}{"@vocab": UndefinedTermIRI}))...)
	if err != nil {
		return fmt.Errorf("check undefined terms: %w", err)
	}

	terms := stringset.New()
	collectUndefinedTerms(expanded, terms)

	if terms.Len() > 0 {
		return &UndefinedTermsError{Terms: terms.Elements()}
	}

	return nil
}

func collectUndefinedTerms(v interface{}, terms stringset.Set) {
	switch val := v.(type) {
	case string:
		if strings.HasPrefix(val, UndefinedTermIRI) {
			terms.Add(strings.TrimPrefix(val, UndefinedTermIRI))
		}
	case []interface{}:
		for _, item := range val {
			collectUndefinedTerms(item, terms)
		}
	case map[string]interface{}:
		for k, item := range val {
			if strings.HasPrefix(k, UndefinedTermIRI) {
				terms.Add(strings.TrimPrefix(k, UndefinedTermIRI))
			}

			if k == "@value" {
				continue
			}

			collectUndefinedTerms(item, terms)
		}
	}
}

func validateContextURIPosition(contextURIPositions []string, docMap map[string]interface{}) error {
	if len(contextURIPositions) == 0 {
		return nil
	}

	var docContexts []interface{}

	switch t := docMap["@context"].(type) {
	case string:
		docContexts = append(docContexts, t)
	case []interface{}:
		docContexts = append(docContexts, t...)
	case []string:
		for _, c := range t {
			docContexts = append(docContexts, c)
		}
	}

	if len(docContexts) < len(contextURIPositions) {
		return errors.New("doc context URIs amount mismatch")
	}

	for position, uri := range contextURIPositions {
		docURI, ok := docContexts[position].(string)
		if !ok {
			return fmt.Errorf("unsupported URI type %s", reflect.TypeOf(docContexts[position]).String())
		}

		if !strings.EqualFold(docURI, uri) {
			return fmt.Errorf("invalid context URI on position %d, %s expected", position, uri)
		}
	}

	return nil
}

// mapsHaveSameStructure compares documents ignoring contexts, single element arrays and id-only objects.
func mapsHaveSameStructure(originalMap, compactedMap map[string]interface{}) bool {
	original := normalizeMap(originalMap)
	compacted := normalizeMap(compactedMap)

	if reflect.DeepEqual(original, compacted) {
		return true
	}

	if len(original) != len(compacted) {
		return false
	}

	for k, v1 := range original {
		v1Map, isMap := v1.(map[string]interface{})
		if !isMap {
			continue
		}

		v2, present := compacted[k]
		if !present { // the key was renamed by compaction
			continue
		}

		v2Map, isMap := v2.(map[string]interface{})
		if !isMap || !mapsHaveSameStructure(v1Map, v2Map) {
			return false
		}
	}

	return true
}

func normalizeMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))

	for k, v := range m {
		if k == "@context" {
			continue
		}

		out[k] = normalizeValue(v)
	}

	return out
}

func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case []interface{}:
		if len(val) == 1 {
			return normalizeValue(val[0])
		}

		out := make([]interface{}, len(val))
		for i := range val {
			out[i] = normalizeValue(val[i])
		}

		return out

	case map[string]interface{}:
		if id, ok := val["id"]; ok && len(val) == 1 {
			return id
		}

		return normalizeMap(val)

	default:
		return val
	}
}
