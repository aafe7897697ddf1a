// Package pipeline runs the analysis of a diagram document.
//
// The analysis consists of three stages, each callable on its own and each
// returning a typed result:
//
//  1. ValidateStructure: userdata, image and operator catalogs, with every
//     structural problem recorded on the diagnostics overlay
//  2. InferFormats: the format fixpoint, only run on a structurally clean
//     document
//  3. Emit: hand the report to an emitter, only when no error was recorded
//
// # Usage
//
// Run the stages through a Runner, which adds report caching and timing:
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, doc, pipeline.Options{VXVersion: "1.2"})
//	if err != nil {
//	    return err // unusable input: bad options, unreadable library
//	}
//	if !result.Report.OK() {
//	    // diagnostics explain what is wrong with the document
//	}
//
// Or call the stages directly:
//
//	s, err := pipeline.ValidateStructure(doc, opts)
//	res, err := pipeline.InferFormats(s, opts)
package pipeline

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/vxgraph/pkg/cache"
	"github.com/matzehuels/vxgraph/pkg/errors"
	"github.com/matzehuels/vxgraph/pkg/formats"
	"github.com/matzehuels/vxgraph/pkg/nodelib"
	"github.com/matzehuels/vxgraph/pkg/report"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures an analysis. It supports JSON for API requests.
type Options struct {
	// VXVersion selects the node type library; empty means 1.2.
	VXVersion string `json:"vx_version,omitempty"`

	// MaxPasses caps the format fixpoint; zero derives the cap from the
	// operator count.
	MaxPasses int `json:"max_passes,omitempty"`

	// Refresh bypasses the report cache.
	Refresh bool `json:"refresh,omitempty"`

	// LibraryPath replaces the built-in node type library with a TOML file.
	LibraryPath string `json:"-"`

	// Runtime options (not serialized)
	Library *nodelib.Library `json:"-"`
	Logger  *log.Logger      `json:"-"`

	version     nodelib.Version
	libraryHash string
	validated   bool
}

// ValidateAndSetDefaults checks the options and loads the node type
// library. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	v, err := nodelib.ParseVersion(o.VXVersion)
	if err != nil {
		return err
	}
	o.version = v
	o.VXVersion = string(v)

	if o.MaxPasses < 0 || o.MaxPasses > formats.DefaultMaxPasses {
		return errors.New(errors.ErrCodeInvalidInput, "max_passes must be between 0 and %d", formats.DefaultMaxPasses)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	if err := o.loadLibrary(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

func (o *Options) loadLibrary() error {
	switch {
	case o.Library != nil:
		if o.Library.Version() != o.version {
			return errors.New(errors.ErrCodeInvalidVersion, "library is for OpenVX %s, requested %s", o.Library.Version(), o.version)
		}
		o.libraryHash = "custom:" + string(o.version)
	case o.LibraryPath != "":
		data, err := os.ReadFile(o.LibraryPath)
		if os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "library %s", o.LibraryPath)
		}
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidLibrary, err, "read library %s", o.LibraryPath)
		}
		lib, err := nodelib.Load(bytes.NewReader(data), o.version)
		if err != nil {
			return err
		}
		o.Library = lib
		o.libraryHash = cache.Hash(data)
	default:
		lib, err := nodelib.Default(o.version)
		if err != nil {
			return err
		}
		o.Library = lib
	}
	return nil
}

// Version returns the validated OpenVX version.
func (o *Options) Version() nodelib.Version {
	if o.version == "" {
		return nodelib.DefaultVersion
	}
	return o.version
}

// ReportKeyOpts returns the cache key options for the report.
func (o *Options) ReportKeyOpts() cache.ReportKeyOpts {
	return cache.ReportKeyOpts{
		VXVersion:   string(o.Version()),
		MaxPasses:   o.MaxPasses,
		LibraryHash: o.libraryHash,
	}
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of a runner execution.
type Result struct {
	// Analysis holds the stage outputs. It is nil when the report came from
	// the cache.
	Analysis *Analysis

	// Report is the serializable result.
	Report *report.Report

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains execution statistics.
type Stats struct {
	NodeCount     int
	EdgeCount     int
	StructureTime time.Duration
	FormatsTime   time.Duration
}

// CacheInfo tracks whether the report came from the cache.
type CacheInfo struct {
	ReportHit bool
}
