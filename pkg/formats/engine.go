package formats

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/vxgraph/pkg/diagnostics"
	"github.com/matzehuels/vxgraph/pkg/document"
	vxerrors "github.com/matzehuels/vxgraph/pkg/errors"
	"github.com/matzehuels/vxgraph/pkg/functions"
	"github.com/matzehuels/vxgraph/pkg/images"
	"github.com/matzehuels/vxgraph/pkg/nodelib"
)

// DefaultMaxPasses is the hard ceiling on fixpoint passes.
const DefaultMaxPasses = 10000

// Engine resolves image formats against a node type library.
type Engine struct {
	Library *nodelib.Library

	// MaxPasses caps the number of passes. Zero means the operator count
	// plus one, bounded by DefaultMaxPasses.
	MaxPasses int

	Logger *log.Logger
}

// NewEngine returns an engine with default settings.
func NewEngine(lib *nodelib.Library) *Engine {
	return &Engine{Library: lib}
}

// Result is the outcome of a successful run.
type Result struct {
	PIN       *PIN
	Passes    int
	Processed int
	Duration  time.Duration
}

func (e *Engine) logger() *log.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return log.NewWithOptions(io.Discard, log.Options{})
}

func (e *Engine) maxPasses(operators int) int {
	if e.MaxPasses > 0 {
		return min(e.MaxPasses, DefaultMaxPasses)
	}
	return min(operators+1, DefaultMaxPasses)
}

// Run resolves the format of every image reachable from the graph inputs.
//
// The catalogs must be free of structural errors; a run on an overlay that
// already holds errors returns STRUCTURAL_ERROR without touching it.
// Resolved images are annotated on ov. The first format problem is
// recorded on ov and returned as a FORMAT_ERROR; the partial table is
// discarded.
func (e *Engine) Run(doc *document.Document, imgs *images.Catalog, fns *functions.Catalog, ov *diagnostics.Overlay) (*Result, error) {
	if ov.HasErrors() {
		return nil, vxerrors.New(vxerrors.ErrCodeStructural, "cannot infer formats: document has %d errors", ov.Count(diagnostics.SeverityError))
	}
	if !imgs.Populated() || !fns.Populated() {
		return nil, vxerrors.New(vxerrors.ErrCodeInternal, "cannot infer formats: catalogs not populated")
	}

	start := time.Now()
	logger := e.logger()
	pin := NewPIN()

	seed := func(id string) {
		payload, _ := doc.Payload(id)
		f := document.ImageFormat(payload)
		_ = pin.Add(id, f)
		ov.Annotate(id, f)
	}
	for _, id := range imgs.IDs(images.RoleInput) {
		seed(id)
	}
	for _, u := range imgs.Uniforms() {
		seed(u.ID)
	}
	logger.Debug("seeded format table", "images", pin.Len())

	pending := fns.Nodes()
	limit := e.maxPasses(len(pending))
	res := &Result{PIN: pin}

	for len(pending) > 0 {
		if res.Passes == limit {
			err := vxerrors.New(vxerrors.ErrCodeFormat, "format inference did not converge within %d passes", limit)
			for _, n := range pending {
				ov.Error(n.ID, vxerrors.ErrCodeFormat, true, "format inference did not converge")
			}
			return nil, err
		}
		res.Passes++

		var next []functions.Node
		for _, n := range pending {
			if !pin.HasAll(n.Info.InputIDs) {
				next = append(next, n)
				continue
			}
			if err := e.process(doc, n, pin, ov); err != nil {
				return nil, err
			}
			res.Processed++
			logger.Debug("resolved operator", "node", n.ID, "type", n.TypeName, "pass", res.Passes)
		}

		if len(next) == len(pending) {
			for _, n := range next {
				ov.Error(n.ID, vxerrors.ErrCodeFormat, true, "unreachable or cyclic operator set")
			}
			return nil, vxerrors.New(vxerrors.ErrCodeFormat, "unreachable or cyclic operator set (%d operators)", len(next))
		}
		pending = next
	}

	pin.Freeze()
	res.Duration = time.Since(start)
	logger.Info("inferred formats", "images", pin.Len(), "operators", res.Processed, "passes", res.Passes, "duration", res.Duration)
	return res, nil
}

// process resolves the outputs of one operator whose inputs are in pin.
func (e *Engine) process(doc *document.Document, n functions.Node, pin *PIN, ov *diagnostics.Overlay) error {
	fail := func(nodeID, format string, args ...any) error {
		msg := fmt.Sprintf(format, args...)
		ov.Error(nodeID, vxerrors.ErrCodeFormat, true, "%s", msg)
		return vxerrors.New(vxerrors.ErrCodeFormat, "%s: %s", nodeID, msg)
	}

	info, ok := e.Library.Lookup(n.Type)
	if !ok {
		return fail(n.ID, "unknown operator type %q", n.TypeName)
	}

	actual := make([]string, len(n.Info.InputIDs))
	for i, id := range n.Info.InputIDs {
		actual[i], _ = pin.Lookup(id)
	}

	var virtual, explicit [][]string
	for _, r := range info.Formats {
		if !sameMultiset(r.In, actual) {
			continue
		}
		if r.IsVirtualDerived() {
			virtual = append(virtual, r.Out)
		} else {
			explicit = append(explicit, r.Out)
		}
	}
	if len(virtual)+len(explicit) == 0 {
		return fail(n.ID, "input image format not valid")
	}
	if len(virtual) < 1 {
		return fail(n.ID, "no compatible output format found")
	}

	slots := n.Info.OutputSlots()
	resolved := make([]string, len(slots))
	for i, s := range slots {
		payload, _ := doc.Payload(s.ImageID)
		declared := document.ImageFormat(payload)
		if declared == document.VirtualFormat {
			resolved[i] = nodelib.ResolveVirtual(virtual[0][s.Offset])
			continue
		}
		if !slices.ContainsFunc(explicit, func(out []string) bool { return out[s.Offset] == declared }) {
			return fail(s.ImageID, "output image format %s error", declared)
		}
		resolved[i] = declared
	}

	for i, s := range slots {
		if err := pin.Add(s.ImageID, resolved[i]); err != nil {
			return vxerrors.Wrap(vxerrors.ErrCodeInternal, err, "record format of %s", s.ImageID)
		}
		ov.Annotate(s.ImageID, resolved[i])
	}
	return nil
}

// sameMultiset reports whether a and b hold the same formats ignoring order.
func sameMultiset(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x, y := slices.Clone(a), slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}
