/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jsonld

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Decode decodes the JSON-LD document of the object into out, a pointer to a struct with json tags.
// RFC 3339 strings are decoded into time.Time fields and single values into slices.
func (o *Object) Decode(out interface{}) error {
	d, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		Squash:           true,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("create JSON-LD object decoder: %w", err)
	}

	if err = d.Decode(o.ToMap()); err != nil {
		return fmt.Errorf("decode JSON-LD object: %w", err)
	}

	return nil
}
