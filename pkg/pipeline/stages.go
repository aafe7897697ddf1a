package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/vxgraph/pkg/diagnostics"
	"github.com/matzehuels/vxgraph/pkg/document"
	"github.com/matzehuels/vxgraph/pkg/errors"
	"github.com/matzehuels/vxgraph/pkg/formats"
	"github.com/matzehuels/vxgraph/pkg/functions"
	"github.com/matzehuels/vxgraph/pkg/images"
	"github.com/matzehuels/vxgraph/pkg/nodelib"
	"github.com/matzehuels/vxgraph/pkg/observability"
	"github.com/matzehuels/vxgraph/pkg/report"
	"github.com/matzehuels/vxgraph/pkg/userdata"
)

// Structure is the result of [ValidateStructure].
type Structure struct {
	Document  *document.Document
	Library   *nodelib.Library
	UserData  *userdata.Registry
	Images    *images.Catalog
	Functions *functions.Catalog
	Overlay   *diagnostics.Overlay
}

// HasErrors reports whether any structural or userdata error was recorded.
func (s *Structure) HasErrors() bool { return s.Overlay.HasErrors() }

// ValidateStructure populates the catalogs of doc. Problems with the
// document are recorded on the returned overlay; the error is reserved for
// unusable input such as a nil document or invalid options.
func ValidateStructure(doc *document.Document, opts Options) (*Structure, error) {
	if doc == nil {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "no document")
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	ov := diagnostics.New()
	s := &Structure{
		Document: doc,
		Library:  opts.Library,
		Overlay:  ov,
	}
	s.UserData = userdata.Populate(doc, ov)
	s.Images = images.Populate(doc, s.UserData, ov)
	s.Functions = functions.Populate(doc, s.Library, s.Images, ov)

	opts.Logger.Debug("userdata", "entries", s.UserData.Entries())
	return s, nil
}

// InferFormats runs the format fixpoint over s. It refuses to run when s
// has errors. Format errors are returned and recorded on s.Overlay.
func InferFormats(s *Structure, opts Options) (*formats.Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if s.HasErrors() {
		return nil, errors.New(errors.ErrCodeStructural, "document has structural errors")
	}
	engine := &formats.Engine{
		Library:   s.Library,
		MaxPasses: opts.MaxPasses,
		Logger:    opts.Logger,
	}
	return engine.Run(s.Document, s.Images, s.Functions, s.Overlay)
}

// Analysis is the outcome of both analysis stages.
type Analysis struct {
	*Structure

	// Formats is nil when inference did not run or failed.
	Formats *formats.Result

	Version   nodelib.Version
	MaxPasses int
}

// OK reports whether the analysis is usable for code generation.
func (a *Analysis) OK() bool {
	return a.Formats != nil && !a.Overlay.HasErrors()
}

// ImageFormat returns the resolved format of image id.
func (a *Analysis) ImageFormat(id string) (string, error) {
	if a.Formats == nil {
		return "", errors.New(errors.ErrCodeFormat, "formats were not inferred")
	}
	return a.Formats.PIN.Format(id)
}

// Report builds the serializable report of a.
func (a *Analysis) Report() *report.Report {
	return report.New(report.Input{
		Document:  a.Document,
		Version:   a.Version,
		MaxPasses: a.MaxPasses,
		UserData:  a.UserData,
		Images:    a.Images,
		Functions: a.Functions,
		Formats:   a.Formats,
		Overlay:   a.Overlay,
	})
}

// Analyze runs both stages. Structural and format problems end up on the
// overlay and leave Formats nil; only unusable input is returned as error.
func Analyze(ctx context.Context, doc *document.Document, opts Options) (*Analysis, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()

	start := time.Now()
	hooks.OnStageStart(ctx, observability.StageStructure, doc.Name())
	s, err := ValidateStructure(doc, opts)
	hooks.OnStageComplete(ctx, observability.StageStructure, doc.Name(), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	a := &Analysis{Structure: s, Version: opts.Version(), MaxPasses: opts.MaxPasses}
	if s.HasErrors() {
		opts.Logger.Warn("structural errors, skipping format inference", "errors", s.Overlay.Count(diagnostics.SeverityError))
		return a, nil
	}

	start = time.Now()
	hooks.OnStageStart(ctx, observability.StageFormats, doc.Name())
	res, err := InferFormats(s, opts)
	hooks.OnStageComplete(ctx, observability.StageFormats, doc.Name(), time.Since(start), err)
	if err != nil {
		if errors.Is(err, errors.ErrCodeFormat) {
			opts.Logger.Warn("format inference failed", "error", errors.UserMessage(err))
			return a, nil
		}
		return nil, err
	}
	a.Formats = res
	return a, nil
}

// Emit hands r to e. Reports with errors are refused.
func Emit(ctx context.Context, r *report.Report, e report.Emitter) error {
	if !r.OK() {
		return errors.New(errors.ErrCodeInvalidInput, "refusing to emit %s: %d errors recorded", r.Document, r.Stats.Errors)
	}
	start := time.Now()
	observability.Pipeline().OnStageStart(ctx, observability.StageEmit, r.Document)
	err := e.Emit(ctx, r)
	observability.Pipeline().OnStageComplete(ctx, observability.StageEmit, r.Document, time.Since(start), err)
	return err
}
