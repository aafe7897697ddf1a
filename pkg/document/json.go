package document

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type jsonDocument struct {
	Name  string `json:"name,omitempty"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// ReadJSON decodes a document from its JSON form:
//
//	{
//	  "name": "blur",
//	  "nodes": [{"id": "in", "shape": "com.yworks.flowchart.process", "payload": "[input_image[0]]"}],
//	  "edges": [{"source": "in", "target": "op", "label": "in1"}]
//	}
//
// Node and edge order is kept. ReadJSON returns the same validation errors as
// [Builder.Build] for duplicate ids or dangling edges. It does not close r.
func ReadJSON(r io.Reader) (*Document, error) {
	var data jsonDocument
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidFormat, err)
	}

	b := NewBuilder(data.Name)
	for _, n := range data.Nodes {
		b.AddNode(n)
	}
	for _, e := range data.Edges {
		b.AddEdge(e)
	}
	return b.Build()
}

// WriteJSON encodes d to w as indented JSON.
func WriteJSON(d *Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonDocument{Name: d.name, Nodes: d.nodes, Edges: d.edges})
}

// Import reads a document from path, choosing the decoder by extension:
// ".json" uses [ReadJSON], anything else [ReadGraphML].
func Import(path string) (*Document, error) {
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return ImportGraphML(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if doc.name == "" {
		doc.name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return doc, nil
}
