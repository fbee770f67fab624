/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package main is a command line tool building JSON-LD objects and converting them to RDF.
package main

import (
	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/ldcommon/jsonld-common-go/cmd/ldobject/ldcmd"
)

func main() {
	logger := log.New("jsonld-common/ldobject")

	if err := ldcmd.Cmd().Execute(); err != nil {
		logger.Fatalf("Failed to run ldobject: %s", err)
	}
}
