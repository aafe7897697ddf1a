package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/matzehuels/vxgraph/pkg/diagnostics"
	"github.com/matzehuels/vxgraph/pkg/document"
)

// View formats for the annotated document.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// ValidFormats is the set of supported view formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
	FormatPNG: true,
	FormatPDF: true,
}

// ValidateFormat checks that a view format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: dot, svg, png, pdf)", format)
	}
	return nil
}

// FormatFromPath derives the view format from a file extension.
func FormatFromPath(path string) (string, error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if err := ValidateFormat(format); err != nil {
		return "", err
	}
	return format, nil
}

// RenderView draws doc with the diagnostics of ov in the given format.
// PNG and PDF need rsvg-convert on PATH.
func RenderView(ctx context.Context, doc *document.Document, ov *diagnostics.Overlay, format string, opts diagnostics.ViewOptions) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	dot := diagnostics.ToDOT(doc, ov, opts)

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatDOT:
		data = []byte(dot)
	case FormatSVG:
		data, err = diagnostics.RenderSVG(ctx, dot)
	case FormatPNG:
		data, err = diagnostics.RenderPNG(ctx, dot, 2.0)
	case FormatPDF:
		data, err = diagnostics.RenderPDF(ctx, dot)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return data, nil
}
