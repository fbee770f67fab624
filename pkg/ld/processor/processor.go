/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package processor wraps the json-gold JSON-LD processor with the options used across this module.
package processor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/piprate/json-gold/ld"
)

const (
	format             = "application/n-quads"
	defaultAlgorithm   = ld.AlgorithmURDNA2015
	handleNormalizeErr = "error while parsing N-Quads; invalid quad. line:"
)

var logger = log.New("jsonld-common/processor")

var (
	// ErrInvalidRDFFound is returned when normalized view contains invalid RDF.
	ErrInvalidRDFFound = errors.New("invalid JSON-LD context")

	// ErrUnsupportedAlgorithm is returned for canonicalization algorithm names other than
	// "urdna2015" and "RDFC-1.0".
	ErrUnsupportedAlgorithm = errors.New("unsupported canonicalization algorithm")
)

// ParseAlgorithm maps a canonicalization algorithm name to the json-gold algorithm.
// RDFC-1.0 is the standardized name of URDNA2015.
func ParseAlgorithm(name string) (string, error) {
	switch strings.ToLower(name) {
	case "urdna2015", "rdfc-1.0":
		return ld.AlgorithmURDNA2015, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
	}
}

type processorOpts struct {
	removeInvalidRDF bool
	validateRDF      bool
	documentLoader   ld.DocumentLoader
	externalContexts []string
	expandContext    interface{}
	base             string
}

// Opts are the options for JSON-LD operations on docs.
type Opts func(opts *processorOpts)

// WithRemoveAllInvalidRDF option for removing all invalid RDF dataset from normalize document.
func WithRemoveAllInvalidRDF() Opts {
	return func(opts *processorOpts) {
		opts.removeInvalidRDF = true
	}
}

// WithValidateRDF option validates result view and fails if any invalid RDF dataset found.
// It takes precedence over WithRemoveAllInvalidRDF.
func WithValidateRDF() Opts {
	return func(opts *processorOpts) {
		opts.validateRDF = true
	}
}

// WithDocumentLoader option is for passing custom JSON-LD document loader.
func WithDocumentLoader(loader ld.DocumentLoader) Opts {
	return func(opts *processorOpts) {
		opts.documentLoader = loader
	}
}

// WithExternalContext appends contexts to the document's own before processing.
func WithExternalContext(context ...string) Opts {
	return func(opts *processorOpts) {
		opts.externalContexts = context
	}
}

// WithExpandContext sets a context applied before the document's own contexts during expansion.
func WithExpandContext(context interface{}) Opts {
	return func(opts *processorOpts) {
		opts.expandContext = context
	}
}

// WithBase sets the base IRI relative IRIs are resolved against.
func WithBase(base string) Opts {
	return func(opts *processorOpts) {
		opts.base = base
	}
}

// Processor is a JSON-LD 1.1 processor.
type Processor struct {
	algorithm string
}

// NewProcessor returns new JSON-LD processor canonicalizing with the given algorithm.
func NewProcessor(algorithm string) *Processor {
	if algorithm == "" {
		return Default()
	}

	return &Processor{algorithm}
}

// Default returns new JSON-LD processor with the URDNA2015 algorithm.
func Default() *Processor {
	return &Processor{defaultAlgorithm}
}

// ToRDF converts doc to an RDF dataset.
func (p *Processor) ToRDF(doc map[string]interface{}, opts ...Opts) (*ld.RDFDataset, error) {
	procOptions := prepareOpts(opts)
	ldOptions := procOptions.ldOptions()

	view, err := ld.NewJsonLdProcessor().ToRDF(procOptions.withExternalContexts(doc), ldOptions)
	if err != nil {
		return nil, fmt.Errorf("convert JSON-LD document to RDF: %w", err)
	}

	dataset, ok := view.(*ld.RDFDataset)
	if !ok {
		return nil, errors.New("convert JSON-LD document to RDF: invalid dataset")
	}

	return dataset, nil
}

// NQuads serializes the RDF dataset of doc as N-Quads, without canonicalization.
func (p *Processor) NQuads(doc map[string]interface{}, opts ...Opts) (string, error) {
	dataset, err := p.ToRDF(doc, opts...)
	if err != nil {
		return "", err
	}

	view, err := (&ld.NQuadRDFSerializer{}).Serialize(dataset)
	if err != nil {
		return "", fmt.Errorf("serialize N-Quads: %w", err)
	}

	result, ok := view.(string)
	if !ok {
		return "", errors.New("serialize N-Quads: invalid view")
	}

	return result, nil
}

// GetCanonicalDocument returns canonized document of given JSON-LD.
func (p *Processor) GetCanonicalDocument(doc map[string]interface{}, opts ...Opts) ([]byte, error) {
	procOptions := prepareOpts(opts)

	ldOptions := procOptions.ldOptions()
	ldOptions.Algorithm = p.algorithm
	ldOptions.Format = format
	ldOptions.ProduceGeneralizedRdf = true

	view, err := ld.NewJsonLdProcessor().Normalize(procOptions.withExternalContexts(doc), ldOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize JSON-LD document: %w", err)
	}

	result, ok := view.(string)
	if !ok {
		return nil, errors.New("failed to normalize JSON-LD document, invalid view")
	}

	result, err = p.removeMatchingInvalidRDFs(result, procOptions)
	if err != nil {
		return nil, err
	}

	return []byte(result), nil
}

// Expand expands doc, removing its context.
func (p *Processor) Expand(doc map[string]interface{}, opts ...Opts) ([]interface{}, error) {
	procOptions := prepareOpts(opts)

	expanded, err := ld.NewJsonLdProcessor().Expand(procOptions.withExternalContexts(doc), procOptions.ldOptions())
	if err != nil {
		return nil, fmt.Errorf("expand JSON-LD document: %w", err)
	}

	return expanded, nil
}

// Compact compacts doc with context. A nil context compacts doc with its own context.
func (p *Processor) Compact(doc, context map[string]interface{}, opts ...Opts) (map[string]interface{}, error) {
	procOptions := prepareOpts(opts)
	input := procOptions.withExternalContexts(doc)

	if context == nil {
		context = map[string]interface{}{"@context": input["@context"]}
	}

	compacted, err := ld.NewJsonLdProcessor().Compact(input, context, procOptions.ldOptions())
	if err != nil {
		return nil, fmt.Errorf("compact JSON-LD document: %w", err)
	}

	return compacted, nil
}

// Frame makes a frame from doc using frame. Documents without an id get a temporary urn:uuid id
// for the duration of framing.
func (p *Processor) Frame(doc, frame map[string]interface{}, opts ...Opts) (map[string]interface{}, error) {
	procOptions := prepareOpts(opts)

	ldOptions := procOptions.ldOptions()
	ldOptions.OmitGraph = true

	input := copyMap(procOptions.withExternalContexts(doc))
	frameDoc := copyMap(frame)

	tempID := ""
	if id, ok := input["id"]; !ok || id == "" {
		tempID = "urn:uuid:" + uuid.New().String()
		input["id"] = tempID
		frameDoc["id"] = tempID
	}

	framed, err := ld.NewJsonLdProcessor().Frame(input, frameDoc, ldOptions)
	if err != nil {
		return nil, fmt.Errorf("framing failed: %w", err)
	}

	framed["@context"] = frame["@context"]

	if tempID != "" && framed["id"] == tempID {
		delete(framed, "id")
	}

	return framed, nil
}

// AppendExternalContexts appends external context(s) to the JSON-LD context which can have one
// or several contexts already.
func AppendExternalContexts(context interface{}, extraContexts ...string) []interface{} {
	var contexts []interface{}

	switch c := context.(type) {
	case string:
		contexts = append(contexts, c)
	case []interface{}:
		contexts = append(contexts, c...)
	case map[string]interface{}:
		contexts = append(contexts, c)
	}

	for _, c := range extraContexts {
		contexts = append(contexts, c)
	}

	return contexts
}

// removeMatchingInvalidRDFs validates normalized view to find any invalid RDF and
// returns filtered view after removing all invalid statements.
func (p *Processor) removeMatchingInvalidRDFs(view string, opts *processorOpts) (string, error) {
	if !opts.removeInvalidRDF && !opts.validateRDF {
		return view, nil
	}

	var (
		filtered     []string
		foundInvalid bool
	)

	for _, line := range strings.Split(view, "\n") {
		if _, err := ld.ParseNQuads(line); err != nil {
			if !strings.Contains(err.Error(), handleNormalizeErr) {
				return "", err
			}

			foundInvalid = true

			continue
		}

		filtered = append(filtered, line)
	}

	if !foundInvalid {
		return view, nil
	}

	if opts.validateRDF {
		return "", ErrInvalidRDFFound
	}

	logger.Debugf("Found invalid RDF dataset, canonicalizing again after removing invalid statements")

	return p.normalizeFilteredDataset(strings.Join(filtered, "\n"))
}

// normalizeFilteredDataset canonicalizes an N-Quads view.
func (p *Processor) normalizeFilteredDataset(view string) (string, error) {
	ldOptions := ld.NewJsonLdOptions("")
	ldOptions.ProcessingMode = ld.JsonLd_1_1
	ldOptions.Algorithm = p.algorithm
	ldOptions.InputFormat = format
	ldOptions.Format = format

	result, err := ld.NewJsonLdProcessor().Normalize(view, ldOptions)
	if err != nil {
		return "", fmt.Errorf("normalize filtered dataset: %w", err)
	}

	return result.(string), nil //nolint:forcetypeassert
}

func prepareOpts(opts []Opts) *processorOpts {
	procOpts := &processorOpts{}

	for _, opt := range opts {
		opt(procOpts)
	}

	return procOpts
}

func (o *processorOpts) ldOptions() *ld.JsonLdOptions {
	ldOptions := ld.NewJsonLdOptions(o.base)
	ldOptions.ProcessingMode = ld.JsonLd_1_1
	ldOptions.ExpandContext = o.expandContext

	if o.documentLoader != nil {
		ldOptions.DocumentLoader = o.documentLoader
	}

	return ldOptions
}

// withExternalContexts returns doc, or a shallow copy of it with external contexts appended.
func (o *processorOpts) withExternalContexts(doc map[string]interface{}) map[string]interface{} {
	if len(o.externalContexts) == 0 {
		return doc
	}

	out := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		out[k] = v
	}

	out["@context"] = AppendExternalContexts(doc["@context"], o.externalContexts...)

	return out
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))

	for k, v := range m {
		out[k] = copyValue(v)
	}

	return out
}

func copyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return copyMap(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i := range val {
			out[i] = copyValue(val[i])
		}

		return out
	default:
		return v
	}
}
