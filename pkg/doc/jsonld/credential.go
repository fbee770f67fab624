/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jsonld

import (
	"fmt"
	"time"
)

// Credential terms.
const (
	IssuerTerm            = "issuer"
	IssuanceDateTerm      = "issuanceDate"
	ExpirationDateTerm    = "expirationDate"
	CredentialSubjectTerm = "credentialSubject"
)

// Credential is a W3C verifiable credential.
type Credential struct {
	*Object
}

// NewCredentialBuilder returns a builder of credentials. Call DefaultContexts(true) and DefaultTypes(true)
// to add the credentials v1 context and the VerifiableCredential type.
func NewCredentialBuilder() *Builder[*Credential] {
	return NewKindBuilder(CredentialKind, newCredential)
}

func newCredential(o *Object) *Credential {
	return &Credential{Object: o}
}

// CredentialFromObject reads a credential from a built object.
func CredentialFromObject(o *Object) *Credential {
	c := *o
	c.kind = CredentialKind

	return newCredential(&c)
}

// CredentialFromJSON reads a credential from a JSON-LD document.
func CredentialFromJSON(data []byte) (*Credential, error) {
	o, err := fromJSON(data, CredentialKind)
	if err != nil {
		return nil, err
	}

	return newCredential(o), nil
}

// Issuer returns the issuer IRI, which may be given as a string or as an object with an id.
func (c *Credential) Issuer() (string, error) {
	return GetStringOrObjectID(c.ToMap(), IssuerTerm)
}

// IssuanceDate returns the issuance date. The zero time is returned when it is not set.
func (c *Credential) IssuanceDate() (time.Time, error) {
	return c.date(IssuanceDateTerm)
}

// ExpirationDate returns the expiration date. The zero time is returned when it is not set.
func (c *Credential) ExpirationDate() (time.Time, error) {
	return c.date(ExpirationDateTerm)
}

func (c *Credential) date(term string) (time.Time, error) {
	s, err := GetString(c.ToMap(), term)
	if err != nil || s == "" {
		return time.Time{}, err
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s: %w", term, err)
	}

	return t, nil
}

// CredentialSubject returns the first credential subject, nil when there is none.
func (c *Credential) CredentialSubject() (*Object, error) {
	subjects, err := c.CredentialSubjects()
	if err != nil || len(subjects) == 0 {
		return nil, err
	}

	return subjects[0], nil
}

// CredentialSubjects returns all credential subjects.
func (c *Credential) CredentialSubjects() ([]*Object, error) {
	return GetListFromObject(c.Object, Kind{Name: "CredentialSubject", DefaultPredicate: CredentialSubjectTerm})
}

// FormatDate formats t the way credential dates are written.
func FormatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}
