package functions

import (
	"errors"
	"fmt"
	"slices"

	"github.com/matzehuels/vxgraph/pkg/diagnostics"
	"github.com/matzehuels/vxgraph/pkg/document"
	vxerrors "github.com/matzehuels/vxgraph/pkg/errors"
	"github.com/matzehuels/vxgraph/pkg/images"
	"github.com/matzehuels/vxgraph/pkg/nodelib"
)

var (
	// ErrNotPopulated is returned by lookups on a catalog that was not
	// created by [Populate].
	ErrNotPopulated = errors.New("function catalog not populated")

	// ErrUnknownOperator is returned for node ids that are not operators.
	ErrUnknownOperator = errors.New("unknown operator node")

	// ErrNotInRole is returned by [Catalog.RoleIndex] when the operator
	// does not belong to the requested role.
	ErrNotInRole = errors.New("operator not in role")
)

// Role selects one of the four image-swap index tables.
type Role int

const (
	RoleInput Role = iota
	RoleOutput
	RoleDebugInput
	RoleDebugOutput

	roleCount
)

var roleNames = [roleCount]string{
	RoleInput:       "input",
	RoleOutput:      "output",
	RoleDebugInput:  "debug_input",
	RoleDebugOutput: "debug_output",
}

func (r Role) String() string {
	if r < 0 || r >= roleCount {
		return fmt.Sprintf("Role(%d)", int(r))
	}
	return roleNames[r]
}

// MarshalText encodes the role by name.
func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// ParseRole looks up a role by name.
func ParseRole(s string) (Role, error) {
	for r, n := range roleNames {
		if n == s {
			return Role(r), nil
		}
	}
	return 0, vxerrors.New(vxerrors.ErrCodeInvalidInput, "unknown role %q (must be one of: input, output, debug_input, debug_output)", s)
}

// Roles returns the four roles in declaration order.
func Roles() []Role {
	return []Role{RoleInput, RoleOutput, RoleDebugInput, RoleDebugOutput}
}

// Node is one operator.
type Node struct {
	ID       string         `json:"id"`
	Index    int            `json:"index"`
	TypeName string         `json:"type"`
	Type     nodelib.OpType `json:"-"`
	Info     NodeInfo       `json:"info"`
	// Valid is false when the operator has a structural problem. Invalid
	// operators keep their catalog index but contribute to no index table.
	Valid bool `json:"valid"`
}

// IndexTriple is one image-swap table. Entry i sets image Images[i] (a role
// index in the image catalog) as parameter Params[i] of operator
// Functions[i] (a catalog index).
type IndexTriple struct {
	Functions []int `json:"functions"`
	Params    []int `json:"params"`
	Images    []int `json:"images"`
}

func (t *IndexTriple) append(function, param, image int) {
	t.Functions = append(t.Functions, function)
	t.Params = append(t.Params, param)
	t.Images = append(t.Images, image)
}

// Len returns the number of entries.
func (t IndexTriple) Len() int {
	if len(t.Functions) != len(t.Params) || len(t.Params) != len(t.Images) {
		vxerrors.Consistency("index triple out of sync: %d/%d/%d", len(t.Functions), len(t.Params), len(t.Images))
	}
	return len(t.Functions)
}

// RoleEntry is an operator in a role list with the first slots that apply
// to the role. A nil slot means the role does not use that side.
type RoleEntry struct {
	NodeID      string `json:"node_id"`
	FirstInput  *int   `json:"first_input,omitempty"`
	FirstOutput *int   `json:"first_output,omitempty"`
}

// Catalog holds the operators of a document. It is immutable once
// populated.
type Catalog struct {
	populated bool
	lib       *nodelib.Library
	images    *images.Catalog

	nodes   []Node
	byID    map[string]int
	triples [roleCount]IndexTriple
	roles   [roleCount][]RoleEntry
	rank    [roleCount]map[string]int
	ledger  []DynamicEntry
}

// Populate enumerates the operators of doc in document order and derives
// their neighbor data, role lists, index tables and dynamic ledger.
//
// Structural problems are recorded on ov as STRUCTURAL_ERROR diagnostics:
// unknown operator types, edge counts that differ from the library arity,
// missing "in1/in2" or "out1/out2" labels, and graph input images used as
// operator outputs. Such operators are marked invalid and left out of the
// index tables; population continues with the next one.
//
// Every image has at most one producing operator and graph input and
// uniform images have none, so format inference never resolves an image
// twice.
func Populate(doc *document.Document, lib *nodelib.Library, imgs *images.Catalog, ov *diagnostics.Overlay) *Catalog {
	c := &Catalog{
		lib:    lib,
		images: imgs,
		byID:   make(map[string]int),
	}
	producers := make(map[string]string)
	for r := range c.rank {
		c.rank[r] = make(map[string]int)
	}

	for i, n := range doc.Operators() {
		node := Node{
			ID:       n.ID,
			Index:    i,
			TypeName: n.Label,
			Info:     BuildNodeInfo(doc, n.ID),
		}
		node.Type, _ = nodelib.ParseOpType(n.Label)
		node.Valid = c.check(doc, node, producers, ov)

		c.byID[node.ID] = len(c.nodes)
		c.nodes = append(c.nodes, node)
		if node.Valid {
			c.addToRoles(node)
		}
	}

	c.ledger = buildLedger(doc, c, ov)
	c.populated = true
	return c
}

// check validates one operator against the library and the image catalog.
// producers maps each image written by an earlier valid operator to that
// operator.
func (c *Catalog) check(doc *document.Document, n Node, producers map[string]string, ov *diagnostics.Overlay) bool {
	info, ok := c.lib.Lookup(n.Type)
	if !ok {
		ov.Error(n.ID, vxerrors.ErrCodeStructural, true, "unknown operator type %q", n.TypeName)
		return false
	}

	valid := true
	if got, want := len(n.Info.InputIDs), info.InputArity(); got != want {
		ov.Error(n.ID, vxerrors.ErrCodeStructural, true, "expected %d input edges, found %d", want, got)
		valid = false
	}
	if got, want := len(n.Info.OutputIDs), info.OutputArity(); got != want {
		ov.Error(n.ID, vxerrors.ErrCodeStructural, true, "expected %d output edges, found %d", want, got)
		valid = false
	}
	if !labelsOK(n.Info.InputLabels, inputLabels) {
		ov.Error(n.ID, vxerrors.ErrCodeStructural, true, "Incorrect input edge labels (in1 and in2 required)")
		valid = false
	}
	if !labelsOK(n.Info.OutputLabels, outputLabels) {
		ov.Error(n.ID, vxerrors.ErrCodeStructural, true, "Incorrect output edge labels (out1 and out2 required)")
		valid = false
	}
	for _, id := range append(slices.Clone(n.Info.InputIDs), n.Info.OutputIDs...) {
		if node, ok := doc.Node(id); !ok || !node.Shape.IsImage() {
			ov.Error(n.ID, vxerrors.ErrCodeStructural, true, "neighbor %s is not an image", id)
			valid = false
		}
	}
	if c.images.HasAny(images.RoleInput, n.Info.OutputIDs) {
		ov.Error(n.ID, vxerrors.ErrCodeStructural, true, "graph input image cannot be an operator output")
		valid = false
	}
	if c.images.HasAny(images.RoleUniform, n.Info.OutputIDs) {
		ov.Error(n.ID, vxerrors.ErrCodeStructural, true, "uniform image cannot be an operator output")
		valid = false
	}

	written := make(map[string]bool, len(n.Info.OutputIDs))
	for _, id := range n.Info.OutputIDs {
		if prev, ok := producers[id]; ok || written[id] {
			if !ok {
				prev = n.ID
			}
			ov.Error(n.ID, vxerrors.ErrCodeStructural, true, "image %s is already written by %s", id, prev)
			valid = false
		}
		written[id] = true
	}
	if valid {
		for id := range written {
			producers[id] = n.ID
		}
	}
	return valid
}

func (c *Catalog) addToRoles(n Node) {
	info, _ := c.lib.Lookup(n.Type)
	in, out := info.FirstInput, info.FirstOutput

	add := func(r Role, entry RoleEntry) {
		c.rank[r][n.ID] = len(c.roles[r])
		c.roles[r] = append(c.roles[r], entry)
	}
	intPtr := func(v int) *int { return &v }

	imgs := c.images
	if imgs.HasAny(images.RoleInput, n.Info.InputIDs) {
		add(RoleInput, RoleEntry{NodeID: n.ID, FirstInput: intPtr(in)})
		for _, s := range n.Info.InputSlots() {
			if idx, ok := imgs.Index(images.RoleInput, s.ImageID); ok {
				c.triples[RoleInput].append(n.Index, in+s.Offset, idx)
			}
		}
	}

	outIn := imgs.HasAny(images.RoleOutput, n.Info.InputIDs)
	outOut := imgs.HasAny(images.RoleOutput, n.Info.OutputIDs)
	if outIn || outOut {
		entry := RoleEntry{NodeID: n.ID}
		if outIn {
			entry.FirstInput = intPtr(in)
		}
		if outOut {
			entry.FirstOutput = intPtr(out)
		}
		add(RoleOutput, entry)
		for _, s := range n.Info.InputSlots() {
			if idx, ok := imgs.Index(images.RoleOutput, s.ImageID); ok {
				c.triples[RoleOutput].append(n.Index, in+s.Offset, idx)
			}
		}
		for _, s := range n.Info.OutputSlots() {
			if idx, ok := imgs.Index(images.RoleOutput, s.ImageID); ok {
				c.triples[RoleOutput].append(n.Index, out+s.Offset, idx)
			}
		}
	}

	// Debug roles are named from the image's view: an operator writing a
	// debug image is a debug input, one reading it a debug output.
	if imgs.HasAny(images.RoleDebug, n.Info.OutputIDs) {
		add(RoleDebugInput, RoleEntry{NodeID: n.ID, FirstOutput: intPtr(out)})
		for _, s := range n.Info.OutputSlots() {
			if idx, ok := imgs.Index(images.RoleDebug, s.ImageID); ok {
				c.triples[RoleDebugInput].append(n.Index, out+s.Offset, idx)
			}
		}
	}
	if imgs.HasAny(images.RoleDebug, n.Info.InputIDs) {
		add(RoleDebugOutput, RoleEntry{NodeID: n.ID, FirstInput: intPtr(in)})
		for _, s := range n.Info.InputSlots() {
			if idx, ok := imgs.Index(images.RoleDebug, s.ImageID); ok {
				c.triples[RoleDebugOutput].append(n.Index, in+s.Offset, idx)
			}
		}
	}
}

// Populated reports whether the catalog was built by [Populate].
func (c *Catalog) Populated() bool { return c != nil && c.populated }

// Nodes returns the operators in catalog order.
func (c *Catalog) Nodes() []Node {
	if !c.Populated() {
		return nil
	}
	out := make([]Node, len(c.nodes))
	copy(out, c.nodes)
	return out
}

// Len returns the number of operators.
func (c *Catalog) Len() int {
	if !c.Populated() {
		return 0
	}
	return len(c.nodes)
}

// Node returns the operator with the given id.
func (c *Catalog) Node(id string) (Node, error) {
	if !c.Populated() {
		return Node{}, ErrNotPopulated
	}
	i, ok := c.byID[id]
	if !ok {
		return Node{}, fmt.Errorf("%w: %s", ErrUnknownOperator, id)
	}
	return c.nodes[i], nil
}

// Info returns the neighbor data of operator id.
func (c *Catalog) Info(id string) (NodeInfo, error) {
	n, err := c.Node(id)
	if err != nil {
		return NodeInfo{}, err
	}
	return n.Info, nil
}

// IndexTriple returns the image-swap table for role r.
func (c *Catalog) IndexTriple(r Role) (IndexTriple, error) {
	if !c.Populated() {
		return IndexTriple{}, ErrNotPopulated
	}
	if r < 0 || r >= roleCount {
		return IndexTriple{}, vxerrors.New(vxerrors.ErrCodeInvalidInput, "unknown role %s", r)
	}
	t := c.triples[r]
	return IndexTriple{
		Functions: append([]int(nil), t.Functions...),
		Params:    append([]int(nil), t.Params...),
		Images:    append([]int(nil), t.Images...),
	}, nil
}

// RoleList returns the operators touching role r, in catalog order.
func (c *Catalog) RoleList(r Role) []RoleEntry {
	if !c.Populated() || r < 0 || r >= roleCount {
		return nil
	}
	out := make([]RoleEntry, len(c.roles[r]))
	copy(out, c.roles[r])
	return out
}

// RoleIndex returns the rank of operator id within the role list of r.
func (c *Catalog) RoleIndex(r Role, id string) (int, error) {
	if !c.Populated() {
		return 0, ErrNotPopulated
	}
	if r < 0 || r >= roleCount {
		return 0, vxerrors.New(vxerrors.ErrCodeInvalidInput, "unknown role %s", r)
	}
	i, ok := c.rank[r][id]
	if !ok {
		return 0, fmt.Errorf("%w: %s is not a %s operator", ErrNotInRole, id, r)
	}
	return i, nil
}

// =============================================================================
// Predicates
// =============================================================================

// IsDebugNode reports whether operator id reads or writes a debug image.
func (c *Catalog) IsDebugNode(id string) bool {
	n, err := c.Node(id)
	if err != nil {
		return false
	}
	return c.images.HasAny(images.RoleDebug, n.Info.InputIDs) ||
		c.images.HasAny(images.RoleDebug, n.Info.OutputIDs)
}

// IsIONode reports whether operator id reads a graph input image, writes a
// graph output image, or touches a debug image.
func (c *Catalog) IsIONode(id string) bool {
	n, err := c.Node(id)
	if err != nil {
		return false
	}
	return c.images.HasAny(images.RoleInput, n.Info.InputIDs) ||
		c.images.HasAny(images.RoleOutput, n.Info.OutputIDs) ||
		c.IsDebugNode(id)
}

// IsDynamicNode reports whether operator id has a ledger entry.
func (c *Catalog) IsDynamicNode(id string) bool {
	for _, e := range c.ledger {
		if e.NodeID == id {
			return true
		}
	}
	return false
}

// NeedsRefCounting reports whether generated code must keep a counted
// reference to operator id, which is the case for dynamic and debug
// operators.
func (c *Catalog) NeedsRefCounting(id string) bool {
	return c.IsDynamicNode(id) || c.IsDebugNode(id)
}

// AnyRefCounting reports whether any operator needs a counted reference.
func (c *Catalog) AnyRefCounting() bool {
	return c.images.Len(images.RoleDebug) > 0 || len(c.ledger) > 0
}
