package functions

import (
	"slices"

	"github.com/matzehuels/vxgraph/pkg/document"
)

// Edge labels that order two-edge inputs and outputs.
var (
	inputLabels  = []string{"in1", "in2"}
	outputLabels = []string{"out1", "out2"}
)

// NodeInfo holds the neighbors of an operator in edge order. Labels are
// synchronized with ids by position; unlabeled edges carry
// [document.NoLabel].
type NodeInfo struct {
	InputIDs     []string `json:"input_ids"`
	InputLabels  []string `json:"input_labels"`
	OutputIDs    []string `json:"output_ids"`
	OutputLabels []string `json:"output_labels"`
}

// BuildNodeInfo scans every edge of doc once for the neighbors of nodeID.
// Self loops are skipped.
func BuildNodeInfo(doc *document.Document, nodeID string) NodeInfo {
	var info NodeInfo
	for _, e := range doc.Edges() {
		if e.IsSelfLoop() {
			continue
		}
		if e.Target == nodeID {
			info.InputIDs = append(info.InputIDs, e.Source)
			info.InputLabels = append(info.InputLabels, e.Label)
		}
		if e.Source == nodeID {
			info.OutputIDs = append(info.OutputIDs, e.Target)
			info.OutputLabels = append(info.OutputLabels, e.Label)
		}
	}
	return info
}

// VerifyLabels reports whether two-edge sides carry the required labels:
// {in1, in2} for inputs and {out1, out2} for outputs, in either order.
// Sides with any other edge count are not checked.
func (n NodeInfo) VerifyLabels() bool {
	return labelsOK(n.InputLabels, inputLabels) && labelsOK(n.OutputLabels, outputLabels)
}

func labelsOK(labels, want []string) bool {
	if len(labels) != 2 {
		return true
	}
	return slices.Contains(labels, want[0]) && slices.Contains(labels, want[1])
}

// Slot pairs a neighbor image with its parameter offset from the first
// input or output slot of the operator.
type Slot struct {
	ImageID string
	Offset  int
}

// InputSlots returns the input images in parameter order.
func (n NodeInfo) InputSlots() []Slot { return orderedSlots(n.InputIDs, n.InputLabels, inputLabels) }

// OutputSlots returns the output images in parameter order.
func (n NodeInfo) OutputSlots() []Slot {
	return orderedSlots(n.OutputIDs, n.OutputLabels, outputLabels)
}

// orderedSlots orders two-edge sides by label; other sides keep edge order.
// Labels must have been verified.
func orderedSlots(ids, labels, order []string) []Slot {
	if len(ids) != 2 {
		out := make([]Slot, len(ids))
		for i, id := range ids {
			out[i] = Slot{ImageID: id, Offset: i}
		}
		return out
	}
	out := make([]Slot, 0, 2)
	for offset, label := range order {
		if i := slices.Index(labels, label); i >= 0 {
			out = append(out, Slot{ImageID: ids[i], Offset: offset})
		}
	}
	return out
}
