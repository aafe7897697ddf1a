// Package diagnostics records analysis problems against diagram nodes
// without touching the source document.
//
// # Overlay
//
// An [Overlay] is an ordered, node-keyed list of [Diagnostic] entries. The
// analysis stages write to it while they run; a stage that fails still
// leaves every problem it found on the overlay so one run surfaces the
// complete set.
//
//	ov := diagnostics.New()
//	ov.Error("n4", errors.ErrCodeStructural, false, "Input image format missing")
//	if ov.HasErrors() {
//	    // refuse to emit
//	}
//
// Entries carry the [errors.Code] of the failure category, so the taxonomy
// is the same for recorded diagnostics and returned errors.
//
// # Annotations
//
// Besides errors the overlay holds informational annotations, such as the
// pixel format resolved for an image. Annotated nodes are highlighted green
// in exported views; error nodes red.
//
// # Views
//
// [ToDOT] renders a document with its overlay as a Graphviz graph: every
// node shows its last overlay message instead of its label, colored by
// [Highlight]. [RenderSVG], [RenderPNG] and [RenderPDF] turn the DOT output
// into images. Views are built on request only; the overlay itself never
// changes the document.
package diagnostics
