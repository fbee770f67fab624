/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jsonld

import (
	"errors"
	"fmt"

	"github.com/piprate/json-gold/ld"

	"github.com/ldcommon/jsonld-common-go/pkg/ld/processor"
)

// ErrUnsupportedAlgorithm is returned by Normalize for algorithms other than "urdna2015" and "RDFC-1.0".
var ErrUnsupportedAlgorithm = processor.ErrUnsupportedAlgorithm

var (
	errNotString      = errors.New("not a string")
	errNotContext     = errors.New("not a context URI or object")
	errNotAbsoluteIRI = errors.New("not an absolute IRI")
	errEmpty          = errors.New("empty value")
	errReserved       = errors.New("reserved property name")
)

// ValidationError is returned when an object is structurally invalid.
type ValidationError struct {
	// Field is the offending member, e.g. "@context", "type" or a property name.
	Field string
	Value interface{}
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid JSON-LD object: %s", e.Err)
	}

	return fmt.Sprintf("invalid JSON-LD object: %s %v: %s", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ResolutionError is returned when the JSON-LD processor fails on an object, for example because
// a context cannot be loaded.
type ResolutionError struct {
	// Code is the JSON-LD error code, empty when the failure did not come from the processor.
	Code ld.ErrorCode
	Err  error
}

func newResolutionError(err error) error {
	if err == nil {
		return nil
	}

	re := &ResolutionError{Err: err}

	var ldErr *ld.JsonLdError
	if errors.As(err, &ldErr) {
		re.Code = ldErr.Code
	}

	return re
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve JSON-LD object: %s", e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// DereferencingError is returned when a node cannot be found in a document.
type DereferencingError struct {
	Ref string
	Err error
}

func (e *DereferencingError) Error() string {
	return fmt.Sprintf("dereference %s: %s", e.Ref, e.Err)
}

func (e *DereferencingError) Unwrap() error {
	return e.Err
}
