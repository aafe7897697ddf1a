package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vxgraph/pkg/diagnostics"
	"github.com/matzehuels/vxgraph/pkg/document"
	"github.com/matzehuels/vxgraph/pkg/errors"
	"github.com/matzehuels/vxgraph/pkg/pipeline"
	"github.com/matzehuels/vxgraph/pkg/report"
)

// ErrDiagnostics makes the command exit non-zero when the analysis recorded
// errors. The diagnostics themselves were already printed.
var ErrDiagnostics = stderrors.New("analysis recorded errors")

// analyzeOpts holds the command-line flags for the analyze command.
type analyzeOpts struct {
	vxVersion   string // OpenVX version of the node type library
	library     string // TOML file replacing the built-in library
	maxPasses   int    // format inference pass cap, 0 derives it
	output      string // report JSON path
	annotate    string // annotated view path (.dot, .svg, .png, .pdf)
	showPayload bool   // print node payloads in the annotated view
	interactive bool   // browse diagnostics in a TUI
	noCache     bool   // disable the report cache
	refresh     bool   // recompute even when cached
	info        bool   // list info annotations too
}

// analyzeCommand creates the analyze command.
func (c *CLI) analyzeCommand() *cobra.Command {
	var opts analyzeOpts

	cmd := &cobra.Command{
		Use:   "analyze [graph.graphml]",
		Short: "Validate a diagram and infer its image formats",
		Long: `Analyze reads an OpenVX yEd diagram (GraphML, or the JSON document form),
validates its structure, infers the pixel format of every image and prints
the diagnostics. The exit status is non-zero when errors were recorded.`,
		Example: `  vxgraph analyze blur.graphml
  vxgraph analyze blur.graphml -o blur.json --annotate blur.svg
  vxgraph analyze blur.graphml --vx-version 1.0.1 --interactive`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range []string{opts.output, opts.annotate} {
				if p == "" {
					continue
				}
				if err := errors.ValidatePath(p); err != nil {
					return err
				}
			}
			if opts.annotate != "" {
				if _, err := pipeline.FormatFromPath(opts.annotate); err != nil {
					return err
				}
			}
			return c.runAnalyze(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.vxVersion, "vx-version", "", "OpenVX version: 1.0.1, 1.1, 1.2 (default from config, else 1.2)")
	cmd.Flags().StringVar(&opts.library, "library", "", "node type library TOML file replacing the built-in one")
	cmd.Flags().IntVar(&opts.maxPasses, "max-passes", 0, "cap on format inference passes (0 = operators + 1)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the report as JSON")
	cmd.Flags().StringVar(&opts.annotate, "annotate", "", "write the annotated diagram (.dot, .svg, .png, .pdf)")
	cmd.Flags().BoolVar(&opts.showPayload, "payload", false, "show node payloads in the annotated diagram")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "browse diagnostics interactively")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the report cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "reanalyze even when a cached report exists")
	cmd.Flags().BoolVar(&opts.info, "info", false, "list resolved formats next to errors and warnings")

	return cmd
}

func (c *CLI) runAnalyze(ctx context.Context, input string, opts analyzeOpts) error {
	logger := loggerFromContext(ctx)
	cfg, err := c.config()
	if err != nil {
		return err
	}

	doc, err := document.Import(input)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDocument, err, "load %s", input)
	}
	logger.Debug("loaded document", "name", doc.Name(), "nodes", doc.NodeCount(), "edges", doc.EdgeCount())

	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := pipeline.Options{
		VXVersion:   opts.vxVersion,
		MaxPasses:   opts.maxPasses,
		Refresh:     opts.refresh,
		LibraryPath: opts.library,
		Logger:      logger,
	}
	if popts.VXVersion == "" {
		popts.VXVersion = cfg.VXVersion
	}

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Analyzing "+filepath.Base(input)+"...")
	spinner.Start()
	res, err := runner.Execute(ctx, doc, popts)
	if err != nil {
		spinner.StopWithError("Analysis failed")
		return err
	}
	spinner.Stop()
	prog.done("Analyzed " + filepath.Base(input))

	rep := res.Report
	printSummary(rep)
	fmt.Println(statsLine(rep.Stats, res.CacheInfo.ReportHit))
	fmt.Println()

	if opts.interactive {
		if err := browseDiagnostics(rep.Diagnostics); err != nil {
			return err
		}
	} else if t := diagnosticsTable(rep.Diagnostics, opts.info); t != "" {
		fmt.Println(t)
	}

	if opts.annotate != "" {
		if err := writeAnnotated(ctx, doc, res, opts); err != nil {
			return err
		}
	}

	if !rep.OK() {
		printError("%d errors, %d warnings", rep.Stats.Errors, rep.Stats.Warnings)
		if opts.output != "" {
			printWarning("report not written: the document has errors")
		}
		return ErrDiagnostics
	}

	if opts.output != "" {
		if err := writeReport(ctx, rep, opts.output); err != nil {
			return err
		}
		printSuccess("Report written")
		printFile(opts.output)
	} else {
		printSuccess("No errors, %d warnings", rep.Stats.Warnings)
		printNextStep("Write the report", fmt.Sprintf("vxgraph analyze %s -o report.json", input))
	}
	return nil
}

// overlayOf returns the diagnostics of res, rebuilt from the report when it
// came from the cache.
func overlayOf(res *pipeline.Result) *diagnostics.Overlay {
	if res.Analysis != nil {
		return res.Analysis.Overlay
	}
	return res.Report.Overlay()
}

func writeAnnotated(ctx context.Context, doc *document.Document, res *pipeline.Result, opts analyzeOpts) error {
	format, err := pipeline.FormatFromPath(opts.annotate)
	if err != nil {
		return err
	}
	data, err := pipeline.RenderView(ctx, doc, overlayOf(res), format, diagnostics.ViewOptions{ShowPayload: opts.showPayload})
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.annotate, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.annotate, err)
	}
	printInfo("Annotated diagram")
	printFile(opts.annotate)
	return nil
}

func writeReport(ctx context.Context, rep *report.Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := pipeline.Emit(ctx, rep, report.JSONEmitter{W: f}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func browseDiagnostics(ds []diagnostics.Diagnostic) error {
	_, err := tea.NewProgram(NewDiagnosticListModel(ds), tea.WithAltScreen()).Run()
	return err
}
