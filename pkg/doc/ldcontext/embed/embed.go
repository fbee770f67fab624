/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package embed contains JSON-LD context documents compiled into the binary, so that the common
// credential contexts resolve without network access.
package embed

import (
	_ "embed" //nolint:gci // required for go:embed

	"github.com/ldcommon/jsonld-common-go/pkg/doc/ldcontext"
)

// nolint:gochecknoglobals // required for go:embed
var (
	//go:embed third_party/w3.org/credentials_v1.jsonld
	w3orgCredentials []byte
	//go:embed third_party/w3id.org/citizenship_v1.jsonld
	w3idCitizenship []byte
)

const (
	// CredentialsV1 is the base context of verifiable credentials.
	CredentialsV1 = "https://www.w3.org/2018/credentials/v1"
	// CitizenshipV1 is the citizenship vocabulary context.
	CitizenshipV1 = "https://w3id.org/citizenship/v1"
)

// Contexts contains JSON-LD contexts embedded into a Go binary.
var Contexts = []ldcontext.Document{ //nolint:gochecknoglobals
	{
		URL:         CredentialsV1,
		DocumentURL: CredentialsV1,
		Content:     w3orgCredentials,
	},
	{
		URL:         CitizenshipV1,
		DocumentURL: "https://w3c-ccg.github.io/citizenship-vocab/contexts/citizenship-v1.jsonld",
		Content:     w3idCitizenship,
	},
}
