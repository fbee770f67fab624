/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jsonld

import "github.com/ldcommon/jsonld-common-go/pkg/doc/ldcontext/embed"

// Kind describes the defaults a family of JSON-LD objects is built with.
type Kind struct {
	Name string
	// DefaultContexts are prepended to the explicit contexts when Builder.DefaultContexts(true) is set.
	DefaultContexts []string
	// DefaultTypes are prepended to the explicit types when Builder.DefaultTypes(true) is set.
	DefaultTypes []string
	// DefaultPredicate is the term an object of this kind is embedded under by default.
	DefaultPredicate string
}

//nolint:gochecknoglobals
var (
	// ObjectKind is the kind of plain JSON-LD objects. It has no defaults.
	ObjectKind = Kind{Name: "JsonLDObject"}

	// CredentialKind is the kind of W3C verifiable credentials.
	CredentialKind = Kind{
		Name:             "VerifiableCredential",
		DefaultContexts:  []string{embed.CredentialsV1},
		DefaultTypes:     []string{"VerifiableCredential"},
		DefaultPredicate: "verifiableCredential",
	}
)
