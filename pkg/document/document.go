package document

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrInvalidNodeID is returned when a node has an empty identifier.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned when two nodes share an identifier.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned when an edge starts at a node that
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned when an edge ends at a node that
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrNodeNotFound is returned by lookups for ids absent from the document.
	ErrNodeNotFound = errors.New("node not found")

	// ErrInvalidFormat is returned when the input cannot be decoded.
	ErrInvalidFormat = errors.New("invalid document format")
)

// NoLabel is the label recorded for edges that carry no text.
const NoLabel = "NO_LABEL"

// Shape is the yEd shape configuration of a node.
type Shape string

// Shapes with a meaning for the analysis. Any other shape is carried along
// but ignored.
const (
	ShapeOperator     Shape = "com.yworks.flowchart.start1"
	ShapeOperatorAlt  Shape = "com.yworks.flowchart.start2"
	ShapeImage        Shape = "com.yworks.flowchart.process"
	ShapeUserData     Shape = "com.yworks.flowchart.userMessage"
	ShapeUnrecognized Shape = ""
)

// IsOperator reports whether s is one of the two operator shapes.
func (s Shape) IsOperator() bool { return s == ShapeOperator || s == ShapeOperatorAlt }

// IsImage reports whether s is the image-buffer shape.
func (s Shape) IsImage() bool { return s == ShapeImage }

// IsUserData reports whether s is the global-parameter declaration shape.
func (s Shape) IsUserData() bool { return s == ShapeUserData }

// Geometry is the node box in diagram coordinates. It is only used when
// exporting annotated views.
type Geometry struct {
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// Node is a diagram vertex.
type Node struct {
	ID       string   `json:"id"`
	Shape    Shape    `json:"shape,omitempty"`
	Label    string   `json:"label,omitempty"`   // operator type for operator nodes
	Payload  string   `json:"payload,omitempty"` // bracketed token text
	Geometry Geometry `json:"geometry"`
}

// Edge is a directed connection between two nodes. Label is [NoLabel] when
// the source file has none.
type Edge struct {
	ID     string `json:"id,omitempty"`
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

// IsSelfLoop reports whether the edge starts and ends at the same node.
// yEd occasionally writes such edges; the analysis ignores them.
func (e Edge) IsSelfLoop() bool { return e.Source == e.Target }

// HasLabel reports whether the edge carries a label.
func (e Edge) HasLabel() bool { return e.Label != "" && e.Label != NoLabel }

// Document is an immutable diagram. Use [Builder], [ReadGraphML] or
// [ReadJSON] to create one. A Document is safe for concurrent reads.
type Document struct {
	name  string
	nodes []Node
	edges []Edge
	index map[string]int
}

// Name returns the diagram name, usually the source file base name.
func (d *Document) Name() string { return d.name }

// Nodes returns the nodes in document order. The slice is a copy.
func (d *Document) Nodes() []Node {
	out := make([]Node, len(d.nodes))
	copy(out, d.nodes)
	return out
}

// Edges returns the edges in document order. The slice is a copy.
func (d *Document) Edges() []Edge {
	out := make([]Edge, len(d.edges))
	copy(out, d.edges)
	return out
}

// NodeCount returns the number of nodes.
func (d *Document) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of edges.
func (d *Document) EdgeCount() int { return len(d.edges) }

// Node returns the node with the given id.
func (d *Document) Node(id string) (Node, bool) {
	i, ok := d.index[id]
	if !ok {
		return Node{}, false
	}
	return d.nodes[i], true
}

// Payload returns the payload text of the node with the given id.
func (d *Document) Payload(id string) (string, error) {
	n, ok := d.Node(id)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return n.Payload, nil
}

// NodesWhere returns, in document order, the nodes whose shape satisfies
// keep.
func (d *Document) NodesWhere(keep func(Shape) bool) []Node {
	var out []Node
	for _, n := range d.nodes {
		if keep(n.Shape) {
			out = append(out, n)
		}
	}
	return out
}

// Operators returns the operator nodes in document order.
func (d *Document) Operators() []Node { return d.NodesWhere(Shape.IsOperator) }

// Images returns the image nodes in document order.
func (d *Document) Images() []Node { return d.NodesWhere(Shape.IsImage) }

// Hash returns a hex SHA-256 digest of the document content. Two documents
// with the same nodes and edges in the same order hash equally regardless
// of the source file format or name.
func (d *Document) Hash() string {
	data, _ := json.Marshal(struct {
		Nodes []Node `json:"nodes"`
		Edges []Edge `json:"edges"`
	}{d.nodes, d.edges})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// =============================================================================
// Builder
// =============================================================================

// Builder assembles a [Document]. Errors are deferred to [Builder.Build] so
// calls can be chained without checks.
type Builder struct {
	doc *Document
	err error
}

// NewBuilder starts a document with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{doc: &Document{name: name, index: make(map[string]int)}}
}

// AddNode appends a node.
func (b *Builder) AddNode(n Node) *Builder {
	if b.err != nil {
		return b
	}
	if n.ID == "" {
		b.err = ErrInvalidNodeID
		return b
	}
	if _, ok := b.doc.index[n.ID]; ok {
		b.err = fmt.Errorf("%w: %s", ErrDuplicateNodeID, n.ID)
		return b
	}
	b.doc.index[n.ID] = len(b.doc.nodes)
	b.doc.nodes = append(b.doc.nodes, n)
	return b
}

// AddEdge appends an edge. Both endpoints must already exist. An empty
// label is stored as [NoLabel].
func (b *Builder) AddEdge(e Edge) *Builder {
	if b.err != nil {
		return b
	}
	if _, ok := b.doc.index[e.Source]; !ok {
		b.err = fmt.Errorf("%w: %s", ErrUnknownSourceNode, e.Source)
		return b
	}
	if _, ok := b.doc.index[e.Target]; !ok {
		b.err = fmt.Errorf("%w: %s", ErrUnknownTargetNode, e.Target)
		return b
	}
	if e.Label == "" {
		e.Label = NoLabel
	}
	if e.ID == "" {
		e.ID = fmt.Sprintf("e%d", len(b.doc.edges))
	}
	b.doc.edges = append(b.doc.edges, e)
	return b
}

// Image appends an image node.
func (b *Builder) Image(id, payload string) *Builder {
	return b.AddNode(Node{ID: id, Shape: ShapeImage, Payload: payload})
}

// Operator appends an operator node of the given type.
func (b *Builder) Operator(id, opType, payload string) *Builder {
	return b.AddNode(Node{ID: id, Shape: ShapeOperator, Label: opType, Payload: payload})
}

// UserData appends a global-parameter declaration node.
func (b *Builder) UserData(id, payload string) *Builder {
	return b.AddNode(Node{ID: id, Shape: ShapeUserData, Payload: payload})
}

// Connect appends an edge with an optional label.
func (b *Builder) Connect(source, target, label string) *Builder {
	return b.AddEdge(Edge{Source: source, Target: target, Label: label})
}

// Build returns the document or the first error encountered.
// The builder must not be used afterwards.
func (b *Builder) Build() (*Document, error) {
	if b.err != nil {
		return nil, b.err
	}
	doc := b.doc
	b.doc = nil
	return doc, nil
}
