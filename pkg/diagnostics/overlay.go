package diagnostics

import (
	"fmt"

	"github.com/matzehuels/vxgraph/pkg/errors"
)

// Severity ranks a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

var severityNames = [...]string{"info", "warning", "error"}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return "unknown"
	}
	return severityNames[s]
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a severity name.
func (s *Severity) UnmarshalText(b []byte) error {
	for i, n := range severityNames {
		if n == string(b) {
			*s = Severity(i)
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", b)
}

// Highlight is the color applied to a node in exported views.
type Highlight string

const (
	HighlightNone  Highlight = ""
	HighlightRed   Highlight = "red"
	HighlightGreen Highlight = "green"
)

// Fill colors used by exported views, as (fill, gradient) pairs.
const (
	RedFill    = "#FF9090"
	RedFill2   = "#CC0000"
	GreenFill  = "#90FF90"
	GreenFill2 = "#008800"
)

// Colors returns the fill and gradient colors of h, or empty strings for
// [HighlightNone].
func (h Highlight) Colors() (fill, fill2 string) {
	switch h {
	case HighlightRed:
		return RedFill, RedFill2
	case HighlightGreen:
		return GreenFill, GreenFill2
	}
	return "", ""
}

// Diagnostic is one message attached to a node.
type Diagnostic struct {
	NodeID    string      `json:"node_id"`
	Severity  Severity    `json:"severity"`
	Code      errors.Code `json:"code,omitempty"`
	Message   string      `json:"message"`
	Highlight Highlight   `json:"highlight,omitempty"`
	// Resize widens the node box to fit the message in exported views.
	Resize bool `json:"resize,omitempty"`
}

// Width returns the node width needed to show the message when Resize is
// set.
func (d Diagnostic) Width() float64 {
	return float64(len(d.Message)*5 + 80)
}

func (d Diagnostic) String() string {
	if d.Code != "" {
		return fmt.Sprintf("%s %s [%s]: %s", d.Severity, d.NodeID, d.Code, d.Message)
	}
	return fmt.Sprintf("%s %s: %s", d.Severity, d.NodeID, d.Message)
}

// Overlay is an ordered list of diagnostics keyed by node id. The zero
// value is an empty overlay. It is not safe for concurrent writes.
type Overlay struct {
	entries []Diagnostic
	byNode  map[string][]int
}

// New returns an empty overlay.
func New() *Overlay {
	return &Overlay{byNode: make(map[string][]int)}
}

// Record appends d.
func (o *Overlay) Record(d Diagnostic) {
	if o.byNode == nil {
		o.byNode = make(map[string][]int)
	}
	o.byNode[d.NodeID] = append(o.byNode[d.NodeID], len(o.entries))
	o.entries = append(o.entries, d)
}

// Error records an error on nodeID, highlighted red.
func (o *Overlay) Error(nodeID string, code errors.Code, resize bool, format string, args ...any) {
	o.Record(Diagnostic{
		NodeID:    nodeID,
		Severity:  SeverityError,
		Code:      code,
		Message:   fmt.Sprintf(format, args...),
		Highlight: HighlightRed,
		Resize:    resize,
	})
}

// Warn records a warning on nodeID. Warnings are not highlighted and do not
// block emission.
func (o *Overlay) Warn(nodeID string, code errors.Code, format string, args ...any) {
	o.Record(Diagnostic{
		NodeID:   nodeID,
		Severity: SeverityWarning,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Annotate records an informational note on nodeID, highlighted green.
func (o *Overlay) Annotate(nodeID, text string) {
	o.Record(Diagnostic{
		NodeID:    nodeID,
		Severity:  SeverityInfo,
		Message:   text,
		Highlight: HighlightGreen,
	})
}

// List returns every diagnostic in recording order.
func (o *Overlay) List() []Diagnostic {
	out := make([]Diagnostic, len(o.entries))
	copy(out, o.entries)
	return out
}

// Errors returns the error diagnostics in recording order.
func (o *Overlay) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range o.entries {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

// ForNode returns the diagnostics recorded on nodeID in recording order.
func (o *Overlay) ForNode(nodeID string) []Diagnostic {
	idx := o.byNode[nodeID]
	out := make([]Diagnostic, len(idx))
	for i, j := range idx {
		out[i] = o.entries[j]
	}
	return out
}

// Last returns the most recent diagnostic on nodeID. Views show this one,
// matching the behavior of overwriting a node label.
func (o *Overlay) Last(nodeID string) (Diagnostic, bool) {
	idx := o.byNode[nodeID]
	if len(idx) == 0 {
		return Diagnostic{}, false
	}
	return o.entries[idx[len(idx)-1]], true
}

// Len returns the number of diagnostics.
func (o *Overlay) Len() int { return len(o.entries) }

// Count returns the number of diagnostics with severity s.
func (o *Overlay) Count(s Severity) int {
	n := 0
	for _, d := range o.entries {
		if d.Severity == s {
			n++
		}
	}
	return n
}

// HasErrors reports whether any error was recorded.
func (o *Overlay) HasErrors() bool { return o.Count(SeverityError) > 0 }

// Err summarizes the recorded errors as a single *errors.Error carrying the
// code of the first one. It returns nil when no error was recorded.
func (o *Overlay) Err() error {
	errs := o.Errors()
	if len(errs) == 0 {
		return nil
	}
	first := errs[0]
	if len(errs) == 1 {
		return errors.New(first.Code, "%s: %s", first.NodeID, first.Message)
	}
	return errors.New(first.Code, "%s: %s (and %d more)", first.NodeID, first.Message, len(errs)-1)
}

// Clone returns an independent copy. Later stages clone the overlay of an
// earlier one so the earlier result stays unchanged.
func (o *Overlay) Clone() *Overlay {
	c := New()
	for _, d := range o.entries {
		c.Record(d)
	}
	return c
}
