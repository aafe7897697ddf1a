package functions

import (
	"strconv"
	"strings"

	"github.com/matzehuels/vxgraph/pkg/diagnostics"
	"github.com/matzehuels/vxgraph/pkg/document"
	vxerrors "github.com/matzehuels/vxgraph/pkg/errors"
)

const dynamicKey = "dynamic_type"

// DynamicEntry is one ledger position: parameter Slot of operator NodeID may
// be replaced at run time. K equals the entry's position in the ledger.
type DynamicEntry struct {
	K      int    `json:"k"`
	NodeID string `json:"node_id"`
	Index  int    `json:"index"`
	Param  string `json:"param"`
	Slot   int    `json:"slot"`
}

type dynamicDecl struct {
	node  Node
	param string
	k     int
}

// buildLedger collects "[dynamic_type <param>[k]]" tokens and orders them
// by k = 0, 1, ... The ledger ends at the first k that no operator
// declares or whose declaration cannot be resolved (invalid operator or
// unknown parameter), so K always equals the position. Declarations past
// that point are reported, not silently dropped.
func buildLedger(doc *document.Document, c *Catalog, ov *diagnostics.Overlay) []DynamicEntry {
	var decls []dynamicDecl
	for _, n := range c.nodes {
		payload, _ := doc.Payload(n.ID)
		for _, v := range document.ParamValues(payload, dynamicKey) {
			name, index, ok := strings.Cut(v, "[")
			k, err := strconv.Atoi(strings.TrimSpace(index))
			if !ok || err != nil || k < 0 {
				ov.Error(n.ID, vxerrors.ErrCodeStructural, true, "Invalid dynamic parameter %q", v)
				continue
			}
			decls = append(decls, dynamicDecl{node: n, param: strings.TrimSpace(name), k: k})
		}
	}

	used := make([]bool, len(decls))
	var ledger []DynamicEntry
	k, reason := 0, "missing"
	for ; ; k++ {
		first := -1
		for i, d := range decls {
			if d.k != k {
				continue
			}
			used[i] = true
			if first >= 0 {
				ov.Error(d.node.ID, vxerrors.ErrCodeStructural, true, "dynamic parameter index %d not unique", k)
				continue
			}
			first = i
		}
		if first < 0 {
			break
		}
		entry, ok := c.dynamicEntry(decls[first], ov)
		if !ok {
			reason = "invalid"
			break
		}
		ledger = append(ledger, entry)
	}

	for i, d := range decls {
		if !used[i] {
			ov.Error(d.node.ID, vxerrors.ErrCodeStructural, true, "dynamic parameter index %d unreachable (index %d %s)", d.k, k, reason)
		}
	}
	return ledger
}

// dynamicEntry resolves one declaration to its call-site slot. Invalid
// operators are already reported and yield no entry.
func (c *Catalog) dynamicEntry(d dynamicDecl, ov *diagnostics.Overlay) (DynamicEntry, bool) {
	if !d.node.Valid {
		return DynamicEntry{}, false
	}
	info, ok := c.lib.Lookup(d.node.Type)
	if !ok {
		return DynamicEntry{}, false
	}
	slot, ok := info.ParamSlot(d.param)
	if !ok {
		ov.Error(d.node.ID, vxerrors.ErrCodeStructural, true, "%s has no parameter %s", info.Name(), d.param)
		return DynamicEntry{}, false
	}
	return DynamicEntry{
		K:      d.k,
		NodeID: d.node.ID,
		Index:  d.node.Index,
		Param:  d.param,
		Slot:   slot,
	}, true
}

// Ledger returns the dynamic parameters in k order. The order is the
// run-time addressing contract and never changes.
func (c *Catalog) Ledger() []DynamicEntry {
	if !c.Populated() {
		return nil
	}
	out := make([]DynamicEntry, len(c.ledger))
	copy(out, c.ledger)
	return out
}
