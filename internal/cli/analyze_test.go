package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/vxgraph/pkg/document"
)

// isolate points the cache and config directories at temp dirs.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func writeDoc(t *testing.T, b *document.Builder) string {
	t.Helper()
	doc, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := document.WriteJSON(doc, &buf); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), doc.Name()+".json")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func thresholdBuilder() *document.Builder {
	return document.NewBuilder("threshold").
		Image("in", "[input_image[0]]\n[vx_df_image_e VX_DF_IMAGE_U8]").
		Operator("thr", "Threshold", "[dynamic_type vx_threshold[0]]").
		Image("out", "[output_image[0]]\n[vx_df_image_e VX_DF_IMAGE_VIRT]").
		Connect("in", "thr", "").
		Connect("thr", "out", "")
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestAnalyzeWritesReport(t *testing.T) {
	isolate(t)
	input := writeDoc(t, thresholdBuilder())
	dir := t.TempDir()
	out := filepath.Join(dir, "report.json")
	view := filepath.Join(dir, "view.dot")

	if err := execute(t, "analyze", input, "-o", out, "--annotate", view); err != nil {
		t.Fatalf("analyze error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	var rep struct {
		Document string `json:"document"`
		Formats  []struct {
			ImageID string `json:"image_id"`
			Format  string `json:"format"`
		} `json:"formats"`
	}
	if err := json.Unmarshal(data, &rep); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if rep.Document != "threshold" || len(rep.Formats) != 2 {
		t.Errorf("report = %+v", rep)
	}

	dot, err := os.ReadFile(view)
	if err != nil {
		t.Fatalf("view not written: %v", err)
	}
	if !strings.Contains(string(dot), "digraph") {
		t.Error("view should be DOT")
	}
}

func TestAnalyzeUsesCache(t *testing.T) {
	isolate(t)
	input := writeDoc(t, thresholdBuilder())

	if err := execute(t, "analyze", input); err != nil {
		t.Fatalf("first analyze error: %v", err)
	}
	dir, _ := cacheDir()
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) == 0 {
		t.Fatalf("cache dir %s should hold the report (err %v)", dir, err)
	}
	if err := execute(t, "analyze", input, "--annotate", filepath.Join(t.TempDir(), "v.dot")); err != nil {
		t.Fatalf("cached analyze error: %v", err)
	}
	if err := execute(t, "cache", "clear", "--expired"); err != nil {
		t.Fatalf("cache clear --expired error: %v", err)
	}
	if err := execute(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear error: %v", err)
	}
}

func TestAnalyzeReportsErrors(t *testing.T) {
	isolate(t)
	input := writeDoc(t, document.NewBuilder("broken").
		Image("in", "[input_image[0]]\n[vx_df_image_e VX_DF_IMAGE_U8]").
		Operator("blur", "GaussianBlur", "").
		Image("out", "[output_image[0]]\n[vx_df_image_e VX_DF_IMAGE_U8]").
		Connect("in", "blur", "").
		Connect("blur", "out", ""))
	out := filepath.Join(t.TempDir(), "report.json")

	err := execute(t, "analyze", input, "-o", out, "--no-cache")
	if !errors.Is(err, ErrDiagnostics) {
		t.Fatalf("analyze error = %v, want ErrDiagnostics", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("report should not be written for a document with errors")
	}
}

func TestAnalyzeFlagErrors(t *testing.T) {
	isolate(t)
	input := writeDoc(t, thresholdBuilder())

	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"analyze", filepath.Join(t.TempDir(), "none.graphml")}},
		{"bad version", []string{"analyze", input, "--vx-version", "2.0"}},
		{"bad view format", []string{"analyze", input, "--annotate", "view.gif"}},
		{"path traversal", []string{"analyze", input, "-o", "../report.json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := execute(t, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLibraryCommand(t *testing.T) {
	isolate(t)
	if err := execute(t, "library", "--vx-version", "1.0.1"); err != nil {
		t.Errorf("library error: %v", err)
	}
	if err := execute(t, "library", "--vx-version", "0.1"); err == nil {
		t.Error("library should reject unknown versions")
	}
}
