package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/vxgraph/pkg/nodelib"
	"github.com/matzehuels/vxgraph/pkg/report"
)

func TestDiagnosticsTable(t *testing.T) {
	ds := sampleDiagnostics()

	out := diagnosticsTable(ds, false)
	for _, want := range []string{"blur", "STRUCTURAL_ERROR", "unknown operator type GaussianBlur", "ref_w"} {
		if !strings.Contains(out, want) {
			t.Errorf("diagnosticsTable() missing %q", want)
		}
	}
	if strings.Contains(out, "info") {
		t.Error("diagnosticsTable() should leave out info annotations")
	}

	if !strings.Contains(diagnosticsTable(ds, true), "info") {
		t.Error("diagnosticsTable(withInfo) should list info annotations")
	}
	if diagnosticsTable(nil, true) != "" {
		t.Error("diagnosticsTable(nil) should be empty")
	}
}

func TestLibraryTable(t *testing.T) {
	out := libraryTable(nodelib.MustDefault(nodelib.Version12))
	for _, want := range []string{"Operator", "Threshold", "vx_threshold@1", "VIRT->"} {
		if !strings.Contains(out, want) {
			t.Errorf("libraryTable() missing %q", want)
		}
	}
}

func TestStatsLine(t *testing.T) {
	line := statsLine(report.Stats{Nodes: 3, Edges: 2, Passes: 1}, true)
	for _, want := range []string{"3 nodes", "2 edges", "1 passes", iconCached} {
		if !strings.Contains(line, want) {
			t.Errorf("statsLine() missing %q", want)
		}
	}
	if !strings.Contains(statsLine(report.Stats{}, false), iconFresh) {
		t.Error("statsLine() should mark fresh results")
	}
}
