// Package report assembles the artifacts of an analysis into one
// serializable document.
//
// A [Report] is the whole contract handed to a code generator: the image
// and operator catalogs, the four image-swap index tables, the dynamic
// parameter ledger, the resolved formats and every diagnostic. Reports are
// deterministic: analyzing the same document with the same options yields
// byte-identical JSON, including the report id.
package report

import (
	"context"
	"encoding/json"
	"io"

	"github.com/google/uuid"

	"github.com/matzehuels/vxgraph/pkg/diagnostics"
	"github.com/matzehuels/vxgraph/pkg/document"
	"github.com/matzehuels/vxgraph/pkg/errors"
	"github.com/matzehuels/vxgraph/pkg/formats"
	"github.com/matzehuels/vxgraph/pkg/functions"
	"github.com/matzehuels/vxgraph/pkg/images"
	"github.com/matzehuels/vxgraph/pkg/nodelib"
	"github.com/matzehuels/vxgraph/pkg/userdata"
)

// namespace scopes report ids generated by [ID].
var namespace = uuid.MustParse("6f1c8e52-3a4b-5d7e-9f10-2b3c4d5e6f70")

// ID derives the report id from the document hash and the analysis
// settings.
func ID(documentHash string, version nodelib.Version, maxPasses int) string {
	data, _ := json.Marshal([]any{documentHash, version, maxPasses})
	return uuid.NewSHA1(namespace, data).String()
}

// Report is the result of analyzing one document.
type Report struct {
	ID           string `json:"report_id"`
	Document     string `json:"document"`
	DocumentHash string `json:"document_hash"`
	VXVersion    string `json:"vx_version"`

	UserData    []userdata.Entry                 `json:"userdata"`
	Images      Images                           `json:"images"`
	Operators   []functions.Node                 `json:"operators"`
	Triples     map[string]functions.IndexTriple `json:"index_triples"`
	RoleLists   map[string][]functions.RoleEntry `json:"role_lists"`
	Ledger      []functions.DynamicEntry         `json:"dynamic_ledger"`
	Formats     []formats.Entry                  `json:"formats"`
	Diagnostics []diagnostics.Diagnostic         `json:"diagnostics"`
	Stats       Stats                            `json:"stats"`
}

// Images lists image ids per role, ordered by role index.
type Images struct {
	Input      []string                               `json:"input"`
	Output     []string                               `json:"output"`
	Virtual    []string                               `json:"virtual"`
	Debug      []string                               `json:"debug"`
	Uniform    []images.Uniform                       `json:"uniform"`
	Attributes map[string]map[images.Attribute]string `json:"attributes,omitempty"`
}

// Stats summarizes a report.
type Stats struct {
	Nodes     int `json:"nodes"`
	Edges     int `json:"edges"`
	Operators int `json:"operators"`
	Images    int `json:"images"`
	Resolved  int `json:"resolved"`
	Passes    int `json:"passes"`
	Errors    int `json:"errors"`
	Warnings  int `json:"warnings"`
}

// OK reports whether the analysis recorded no errors.
func (r *Report) OK() bool { return r.Stats.Errors == 0 }

// Overlay rebuilds the diagnostics overlay from the recorded diagnostics.
func (r *Report) Overlay() *diagnostics.Overlay {
	ov := diagnostics.New()
	for _, d := range r.Diagnostics {
		ov.Record(d)
	}
	return ov
}

// Input gathers the stage outputs a report is built from. Formats is nil
// when inference did not run or failed.
type Input struct {
	Document  *document.Document
	Version   nodelib.Version
	MaxPasses int
	UserData  *userdata.Registry
	Images    *images.Catalog
	Functions *functions.Catalog
	Formats   *formats.Result
	Overlay   *diagnostics.Overlay
}

// New builds the report for in.
func New(in Input) *Report {
	doc := in.Document
	hash := doc.Hash()
	r := &Report{
		ID:           ID(hash, in.Version, in.MaxPasses),
		Document:     doc.Name(),
		DocumentHash: hash,
		VXVersion:    string(in.Version),
		UserData:     in.UserData.Entries(),
		Operators:    in.Functions.Nodes(),
		Triples:      make(map[string]functions.IndexTriple),
		RoleLists:    make(map[string][]functions.RoleEntry),
		Ledger:       in.Functions.Ledger(),
		Diagnostics:  in.Overlay.List(),
	}

	r.Images = Images{
		Input:      in.Images.IDs(images.RoleInput),
		Output:     in.Images.IDs(images.RoleOutput),
		Virtual:    in.Images.IDs(images.RoleVirtual),
		Debug:      in.Images.IDs(images.RoleDebug),
		Uniform:    in.Images.Uniforms(),
		Attributes: make(map[string]map[images.Attribute]string),
	}
	for _, n := range doc.Images() {
		if attrs := in.Images.DeclaredAttributes(n.ID); len(attrs) > 0 {
			r.Images.Attributes[n.ID] = attrs
		}
	}

	for _, role := range functions.Roles() {
		t, _ := in.Functions.IndexTriple(role)
		r.Triples[role.String()] = t
		r.RoleLists[role.String()] = in.Functions.RoleList(role)
	}

	if in.Formats != nil {
		r.Formats = in.Formats.PIN.Entries()
		r.Stats.Resolved = in.Formats.PIN.Len()
		r.Stats.Passes = in.Formats.Passes
	}

	r.Stats.Nodes = doc.NodeCount()
	r.Stats.Edges = doc.EdgeCount()
	r.Stats.Operators = in.Functions.Len()
	r.Stats.Images = len(doc.Images())
	r.Stats.Errors = in.Overlay.Count(diagnostics.SeverityError)
	r.Stats.Warnings = in.Overlay.Count(diagnostics.SeverityWarning)
	return r
}

// Marshal encodes r as JSON.
func Marshal(r *Report) ([]byte, error) {
	return json.Marshal(r)
}

// Unmarshal decodes a report produced by [Marshal].
func Unmarshal(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode report")
	}
	return &r, nil
}

// Emitter hands a finished report to its consumer.
type Emitter interface {
	Emit(ctx context.Context, r *Report) error
}

// JSONEmitter writes reports as indented JSON.
type JSONEmitter struct {
	W io.Writer
}

// Emit writes r to e.W.
func (e JSONEmitter) Emit(_ context.Context, r *Report) error {
	enc := json.NewEncoder(e.W)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
