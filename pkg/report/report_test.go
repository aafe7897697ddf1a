package report

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/vxgraph/pkg/diagnostics"
	"github.com/matzehuels/vxgraph/pkg/document"
	"github.com/matzehuels/vxgraph/pkg/formats"
	"github.com/matzehuels/vxgraph/pkg/functions"
	"github.com/matzehuels/vxgraph/pkg/images"
	"github.com/matzehuels/vxgraph/pkg/nodelib"
	"github.com/matzehuels/vxgraph/pkg/userdata"
)

func analyze(t *testing.T) *Report {
	t.Helper()
	doc, err := document.NewBuilder("threshold").
		UserData("ud", "[int ref_width]").
		Image("img0", "[input_image[0]]\n[vx_df_image_e VX_DF_IMAGE_U8]\n[width ref_width]").
		Operator("thr", "Threshold", "[dynamic_type vx_threshold[0]]").
		Image("img1", "[output_image[0]]\n[vx_df_image_e VX_DF_IMAGE_VIRT]").
		Connect("img0", "thr", "").
		Connect("thr", "img1", "").
		Build()
	require.NoError(t, err)

	lib := nodelib.MustDefault(nodelib.DefaultVersion)
	ov := diagnostics.New()
	reg := userdata.Populate(doc, ov)
	imgs := images.Populate(doc, reg, ov)
	fns := functions.Populate(doc, lib, imgs, ov)
	res, err := formats.NewEngine(lib).Run(doc, imgs, fns, ov)
	require.NoError(t, err)

	return New(Input{
		Document:  doc,
		Version:   nodelib.DefaultVersion,
		UserData:  reg,
		Images:    imgs,
		Functions: fns,
		Formats:   res,
		Overlay:   ov,
	})
}

func TestNew(t *testing.T) {
	r := analyze(t)

	assert.True(t, r.OK())
	assert.Equal(t, "threshold", r.Document)
	assert.Equal(t, "1.2", r.VXVersion)
	assert.Equal(t, []userdata.Entry{{Name: "ref_width", Type: "int"}}, r.UserData)
	assert.Equal(t, []string{"img0"}, r.Images.Input)
	assert.Equal(t, []string{"img1"}, r.Images.Output)
	assert.Equal(t, "ref_width", r.Images.Attributes["img0"][images.AttrWidth])
	assert.Len(t, r.Triples, 4)
	assert.Equal(t, functions.IndexTriple{Functions: []int{0}, Params: []int{2}, Images: []int{0}}, r.Triples["output"])
	assert.Len(t, r.Ledger, 1)
	assert.Equal(t, []formats.Entry{{ImageID: "img0", Format: "U8"}, {ImageID: "img1", Format: "U8"}}, r.Formats)
	assert.Equal(t, Stats{Nodes: 4, Edges: 2, Operators: 1, Images: 2, Resolved: 2, Passes: 1}, r.Stats)
}

func TestReportIsDeterministic(t *testing.T) {
	a, err := Marshal(analyze(t))
	require.NoError(t, err)
	b, err := Marshal(analyze(t))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestID(t *testing.T) {
	id := ID("abc", nodelib.Version12, 0)
	assert.Equal(t, id, ID("abc", nodelib.Version12, 0))
	assert.NotEqual(t, id, ID("abc", nodelib.Version11, 0))
	assert.NotEqual(t, id, ID("abd", nodelib.Version12, 0))
	assert.Len(t, id, 36)
}

func TestUnmarshalRestoresOverlay(t *testing.T) {
	r := analyze(t)
	data, err := Marshal(r)
	require.NoError(t, err)

	back, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, r.ID, back.ID)
	assert.Equal(t, r.Diagnostics, back.Diagnostics)

	ov := back.Overlay()
	d, ok := ov.Last("img1")
	require.True(t, ok)
	assert.Equal(t, diagnostics.HighlightGreen, d.Highlight)

	_, err = Unmarshal([]byte("{"))
	assert.Error(t, err)
}

func TestJSONEmitter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSONEmitter{W: &buf}.Emit(context.Background(), analyze(t)))
	assert.Contains(t, buf.String(), `"report_id": "`)
	assert.Contains(t, buf.String(), `"dynamic_ledger": [`)
}
