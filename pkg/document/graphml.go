package document

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// payloadKey is the data key yEd uses for the node description field.
const payloadKey = "d5"

type xmlGraphML struct {
	XMLName xml.Name   `xml:"graphml"`
	Graphs  []xmlGraph `xml:"graph"`
}

type xmlGraph struct {
	Nodes []xmlNode `xml:"node"`
	Edges []xmlEdge `xml:"edge"`
}

type xmlNode struct {
	ID    string    `xml:"id,attr"`
	Data  []xmlData `xml:"data"`
	Graph *xmlGraph `xml:"graph"` // group nodes nest a graph
}

type xmlEdge struct {
	ID     string    `xml:"id,attr"`
	Source string    `xml:"source,attr"`
	Target string    `xml:"target,attr"`
	Data   []xmlData `xml:"data"`
}

type xmlData struct {
	Key      string        `xml:"key,attr"`
	Text     string        `xml:",chardata"`
	Graphics []xmlGraphics `xml:",any"`
}

// xmlGraphics covers y:GenericNode, y:ShapeNode, y:PolyLineEdge and the
// other yEd realizers; only the fields the model needs are decoded.
type xmlGraphics struct {
	XMLName       xml.Name
	Configuration string       `xml:"configuration,attr"`
	Geometry      *xmlGeometry `xml:"Geometry"`
	NodeLabels    []string     `xml:"NodeLabel"`
	EdgeLabels    []string     `xml:"EdgeLabel"`
}

type xmlGeometry struct {
	X      string `xml:"x,attr"`
	Y      string `xml:"y,attr"`
	Width  string `xml:"width,attr"`
	Height string `xml:"height,attr"`
}

// ReadGraphML decodes a yEd GraphML document from r.
//
// Nodes and edges of nested group graphs are flattened in document order.
// Only y:GenericNode realizers define a [Shape]; other nodes get
// [ShapeUnrecognized] and are ignored by the analysis. The payload is the
// text of the node's "d5" data element, the label the first y:NodeLabel.
// Edge labels come from the first y:EdgeLabel, or [NoLabel].
//
// ReadGraphML does not close r.
func ReadGraphML(r io.Reader, name string) (*Document, error) {
	var data xmlGraphML
	if err := xml.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: decode graphml: %v", ErrInvalidFormat, err)
	}
	if len(data.Graphs) == 0 {
		return nil, fmt.Errorf("%w: graphml has no graph element", ErrInvalidFormat)
	}

	b := NewBuilder(name)
	var edges []xmlEdge
	for i := range data.Graphs {
		edges = collect(b, &data.Graphs[i], edges)
	}
	for _, e := range edges {
		b.AddEdge(Edge{ID: e.ID, Source: e.Source, Target: e.Target, Label: edgeLabel(e)})
	}

	doc, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("graphml: %w", err)
	}
	return doc, nil
}

// collect adds the nodes of g (and nested graphs) to b and returns the edges
// to add once every node is known.
func collect(b *Builder, g *xmlGraph, edges []xmlEdge) []xmlEdge {
	for _, n := range g.Nodes {
		b.AddNode(decodeNode(n))
		if n.Graph != nil {
			edges = collect(b, n.Graph, edges)
		}
	}
	return append(edges, g.Edges...)
}

func decodeNode(n xmlNode) Node {
	node := Node{ID: n.ID}
	for _, d := range n.Data {
		if d.Key == payloadKey {
			node.Payload = d.Text
			continue
		}
		for _, g := range d.Graphics {
			if g.XMLName.Local == "GenericNode" {
				node.Shape = Shape(g.Configuration)
			}
			if node.Label == "" && len(g.NodeLabels) > 0 {
				node.Label = strings.TrimSpace(g.NodeLabels[0])
			}
			if g.Geometry != nil {
				node.Geometry = Geometry{
					X:      parseFloat(g.Geometry.X),
					Y:      parseFloat(g.Geometry.Y),
					Width:  parseFloat(g.Geometry.Width),
					Height: parseFloat(g.Geometry.Height),
				}
			}
		}
	}
	return node
}

func edgeLabel(e xmlEdge) string {
	for _, d := range e.Data {
		for _, g := range d.Graphics {
			if len(g.EdgeLabels) > 0 {
				return strings.TrimSpace(g.EdgeLabels[0])
			}
		}
	}
	return NoLabel
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

// ImportGraphML reads a GraphML file at path. The document is named after
// the file without its extension.
func ImportGraphML(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	doc, err := ReadGraphML(f, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
