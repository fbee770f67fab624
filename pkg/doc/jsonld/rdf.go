/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jsonld

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/piprate/json-gold/ld"

	"github.com/ldcommon/jsonld-common-go/pkg/ld/documentloader"
	"github.com/ldcommon/jsonld-common-go/pkg/ld/processor"
	"github.com/ldcommon/jsonld-common-go/pkg/ld/store"
	"github.com/ldcommon/jsonld-common-go/pkg/ld/validator"
)

var logger = log.New("jsonld-common/jsonld")

//nolint:gochecknoglobals
var (
	defaultLoaderOnce sync.Once
	defaultLoader     ld.DocumentLoader
	errDefaultLoader  error
)

// DefaultDocumentLoader returns the loader used when neither the object nor the call supplies one.
// It resolves the embedded contexts only and never touches the network.
func DefaultDocumentLoader() (ld.DocumentLoader, error) {
	defaultLoaderOnce.Do(func() {
		s, err := store.NewContextStore(mem.NewProvider())
		if err != nil {
			errDefaultLoader = fmt.Errorf("create default context store: %w", err)

			return
		}

		defaultLoader, errDefaultLoader = documentloader.New(s)
	})

	return defaultLoader, errDefaultLoader
}

type processOpts struct {
	loader ld.DocumentLoader
	base   string
}

// ProcessOpt configures a JSON-LD operation on an object.
type ProcessOpt func(opts *processOpts)

// WithDocumentLoader overrides the document loader attached to the object.
func WithDocumentLoader(loader ld.DocumentLoader) ProcessOpt {
	return func(opts *processOpts) {
		opts.loader = loader
	}
}

// WithBase sets the base IRI relative IRIs of the object are resolved against.
func WithBase(base string) ProcessOpt {
	return func(opts *processOpts) {
		opts.base = base
	}
}

func (o *Object) processorOpts(opts []ProcessOpt) ([]processor.Opts, ld.DocumentLoader, error) {
	po := &processOpts{loader: o.loader}

	for _, opt := range opts {
		opt(po)
	}

	if po.loader == nil {
		loader, err := DefaultDocumentLoader()
		if err != nil {
			return nil, nil, err
		}

		po.loader = loader
	}

	return []processor.Opts{processor.WithDocumentLoader(po.loader), processor.WithBase(po.base)}, po.loader, nil
}

// ToDataset converts the object to an RDF dataset.
func (o *Object) ToDataset(opts ...ProcessOpt) (*Dataset, error) {
	procOpts, _, err := o.processorOpts(opts)
	if err != nil {
		return nil, err
	}

	rdf, err := processor.Default().ToRDF(o.ToMap(), procOpts...)
	if err != nil {
		return nil, newResolutionError(err)
	}

	logger.Debugf("Converted JSON-LD object to %d RDF graphs", len(rdf.Graphs))

	return &Dataset{rdf: rdf}, nil
}

// ToNQuads returns the RDF dataset of the object in N-Quads format, without canonicalization.
func (o *Object) ToNQuads(opts ...ProcessOpt) (string, error) {
	dataset, err := o.ToDataset(opts...)
	if err != nil {
		return "", err
	}

	var sb strings.Builder

	if err := dataset.WriteNQuads(&sb); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// Normalize returns the canonical N-Quads of the object. Supported algorithms are "urdna2015" and
// "RDFC-1.0", which produce the same output.
func (o *Object) Normalize(algorithm string, opts ...ProcessOpt) (string, error) {
	alg, err := processor.ParseAlgorithm(algorithm)
	if err != nil {
		return "", err
	}

	procOpts, _, err := o.processorOpts(opts)
	if err != nil {
		return "", err
	}

	canonical, err := processor.NewProcessor(alg).GetCanonicalDocument(o.ToMap(), procOpts...)
	if err != nil {
		return "", newResolutionError(err)
	}

	return string(canonical), nil
}

// Expand returns the expanded form of the object.
func (o *Object) Expand(opts ...ProcessOpt) ([]interface{}, error) {
	procOpts, _, err := o.processorOpts(opts)
	if err != nil {
		return nil, err
	}

	expanded, err := processor.Default().Expand(o.ToMap(), procOpts...)
	if err != nil {
		return nil, newResolutionError(err)
	}

	return expanded, nil
}

// Compact compacts the object with context, or with its own contexts when context is nil.
func (o *Object) Compact(context map[string]interface{}, opts ...ProcessOpt) (map[string]interface{}, error) {
	procOpts, _, err := o.processorOpts(opts)
	if err != nil {
		return nil, err
	}

	compacted, err := processor.Default().Compact(o.ToMap(), context, procOpts...)
	if err != nil {
		return nil, newResolutionError(err)
	}

	return compacted, nil
}

// Frame frames the object with frame.
func (o *Object) Frame(frame map[string]interface{}, opts ...ProcessOpt) (map[string]interface{}, error) {
	procOpts, _, err := o.processorOpts(opts)
	if err != nil {
		return nil, err
	}

	framed, err := processor.Default().Frame(o.ToMap(), frame, procOpts...)
	if err != nil {
		return nil, newResolutionError(err)
	}

	return framed, nil
}

// Validate checks that every term of the object is defined by its contexts and that the object keeps its
// structure after compaction.
func (o *Object) Validate(opts ...ProcessOpt) error {
	_, loader, err := o.processorOpts(opts)
	if err != nil {
		return err
	}

	if err := validator.ValidateJSONLDMap(o.ToMap(), validator.WithDocumentLoader(loader)); err != nil {
		return &ValidationError{Err: err}
	}

	return nil
}
