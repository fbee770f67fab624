/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jsonld

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cayleygraph/quad"
	"github.com/piprate/json-gold/ld"
)

const defaultGraph = "@default"

// Dataset is the RDF dataset of a JSON-LD object.
type Dataset struct {
	rdf *ld.RDFDataset
}

// Size returns the number of quads in all graphs.
func (d *Dataset) Size() int {
	n := 0

	for _, quads := range d.rdf.Graphs {
		n += len(quads)
	}

	return n
}

// Graphs returns the graph names, the default graph ("@default") first and the others sorted.
func (d *Dataset) Graphs() []string {
	names := make([]string, 0, len(d.rdf.Graphs))

	for name, quads := range d.rdf.Graphs {
		if name != defaultGraph && len(quads) > 0 {
			names = append(names, name)
		}
	}

	sort.Strings(names)

	if len(d.rdf.Graphs[defaultGraph]) > 0 {
		names = append([]string{defaultGraph}, names...)
	}

	return names
}

// Quads returns all quads graph by graph, in the order of Graphs.
func (d *Dataset) Quads() []quad.Quad {
	out := make([]quad.Quad, 0, d.Size())

	for _, name := range d.Graphs() {
		var label quad.Value
		if name != defaultGraph {
			label = toQuadValue(nodeForGraph(name))
		}

		for _, q := range d.rdf.Graphs[name] {
			out = append(out, quad.Quad{
				Subject:   toQuadValue(q.Subject),
				Predicate: toQuadValue(q.Predicate),
				Object:    toQuadValue(q.Object),
				Label:     label,
			})
		}
	}

	return out
}

// WriteNQuads writes the dataset in N-Quads format.
func (d *Dataset) WriteNQuads(w io.Writer) error {
	view, err := (&ld.NQuadRDFSerializer{}).Serialize(d.rdf)
	if err != nil {
		return fmt.Errorf("serialize N-Quads: %w", err)
	}

	nquads, ok := view.(string)
	if !ok {
		return fmt.Errorf("serialize N-Quads: unexpected view %T", view)
	}

	_, err = io.WriteString(w, nquads)

	return err
}

// RDFDataset returns the underlying json-gold dataset.
func (d *Dataset) RDFDataset() *ld.RDFDataset {
	return d.rdf
}

func nodeForGraph(name string) ld.Node {
	if strings.HasPrefix(name, "_:") {
		return ld.NewBlankNode(name)
	}

	return ld.NewIRI(name)
}

func toQuadValue(n ld.Node) quad.Value {
	switch v := n.(type) {
	case *ld.IRI:
		return quad.IRI(v.Value)
	case *ld.BlankNode:
		return quad.BNode(strings.TrimPrefix(v.Attribute, "_:"))
	case *ld.Literal:
		switch {
		case v.Language != "":
			return quad.LangString{Value: quad.String(v.Value), Lang: v.Language}
		case v.Datatype == "" || v.Datatype == ld.XSDString:
			return quad.String(v.Value)
		default:
			return quad.TypedString{Value: quad.String(v.Value), Type: quad.IRI(v.Datatype)}
		}
	default:
		return nil
	}
}
