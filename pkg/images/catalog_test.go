package images

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/vxgraph/pkg/diagnostics"
	"github.com/matzehuels/vxgraph/pkg/document"
	"github.com/matzehuels/vxgraph/pkg/errors"
	"github.com/matzehuels/vxgraph/pkg/userdata"
)

func populate(t *testing.T, b *document.Builder) (*Catalog, *diagnostics.Overlay) {
	t.Helper()
	doc, err := b.Build()
	require.NoError(t, err)
	ov := diagnostics.New()
	reg := userdata.Populate(doc, ov)
	return Populate(doc, reg, ov), ov
}

func TestRoleIndicesFollowDeclaredNumbers(t *testing.T) {
	c, ov := populate(t, document.NewBuilder("roles").
		Image("in1", "[input_image[1]] [vx_df_image_e VX_DF_IMAGE_U8]").
		Image("v0", "").
		Image("in0", "[input_image[0]] [vx_df_image_e VX_DF_IMAGE_U8]").
		Image("out0", "[output_image[0]] [vx_df_image_e VX_DF_IMAGE_S16]").
		Image("dbg0", "[debug_image[0]] [vx_df_image_e VX_DF_IMAGE_U8]").
		Image("v1", "[width 10]").
		Operator("op", "Threshold", ""))

	assert.False(t, ov.HasErrors(), "%v", ov.List())
	assert.True(t, c.Populated())

	want := map[Role][]string{
		RoleInput:   {"in0", "in1"},
		RoleOutput:  {"out0"},
		RoleVirtual: {"v0", "v1"},
		RoleDebug:   {"dbg0"},
	}
	for r, ids := range want {
		if diff := cmp.Diff(ids, c.IDs(r)); diff != "" {
			t.Errorf("%s ids mismatch (-want +got):\n%s", r, diff)
		}
		for i, id := range ids {
			got, ok := c.Index(r, id)
			assert.True(t, ok)
			assert.Equal(t, i, got, "%s index of %s", r, id)
		}
	}
	assert.Zero(t, c.Len(RoleUniform))
	assert.Equal(t, []Role{RoleInput}, c.RolesOf("in0"))
	assert.True(t, c.HasAny(RoleOutput, []string{"v0", "out0"}))
}

func TestScanningStopsAtFirstGap(t *testing.T) {
	c, ov := populate(t, document.NewBuilder("gap").
		Image("a", "[input_image[0]] [vx_df_image_e VX_DF_IMAGE_U8]").
		Image("b", "[input_image[2]] [vx_df_image_e VX_DF_IMAGE_U8]"))

	assert.Equal(t, []string{"a"}, c.IDs(RoleInput))
	assert.False(t, ov.HasErrors())
}

func TestMissingFormatConsumesIndex(t *testing.T) {
	c, ov := populate(t, document.NewBuilder("fmt").
		Image("a", "[output_image[0]]").
		Image("b", "[output_image[1]] [vx_df_image_e VX_DF_IMAGE_U8]").
		Image("d", "[debug_image[0]]"))

	assert.Equal(t, []string{"b"}, c.IDs(RoleOutput))
	assert.Empty(t, c.IDs(RoleDebug))

	errs := ov.Errors()
	require.Len(t, errs, 2)
	assert.Equal(t, "a", errs[0].NodeID)
	assert.Equal(t, "Output image format missing", errs[0].Message)
	assert.Equal(t, "Debug image format missing", errs[1].Message)
	assert.Equal(t, errors.ErrCodeStructural, errs[1].Code)
}

func TestDuplicateRoleNumber(t *testing.T) {
	c, ov := populate(t, document.NewBuilder("dup").
		Image("a", "[input_image[0]] [vx_df_image_e VX_DF_IMAGE_U8]").
		Image("b", "[input_image[0]] [vx_df_image_e VX_DF_IMAGE_U8]"))

	assert.Equal(t, []string{"a"}, c.IDs(RoleInput))
	errs := ov.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "b", errs[0].NodeID)
	assert.Equal(t, "Input image index 0 not unique", errs[0].Message)
}

func TestUniformImages(t *testing.T) {
	// The second uniform image lacks its format: it is reported and the
	// remaining nodes are still catalogued.
	c, ov := populate(t, document.NewBuilder("uniform").
		UserData("ud", "[int fill]").
		Image("u0", "[uniform_input_image] [vx_df_image_e VX_DF_IMAGE_U8] [uniform_value 7]").
		Image("u1", "[uniform_input_image] [uniform_value 3]").
		Image("u2", "[uniform_input_image] [vx_df_image_e VX_DF_IMAGE_S16] [uniform_value fill]").
		Image("in", "[input_image[0]] [vx_df_image_e VX_DF_IMAGE_U8]"))

	want := []Uniform{
		{ID: "u0", Value: "7", Format: "VX_DF_IMAGE_U8"},
		{ID: "u2", Value: "fill", Format: "VX_DF_IMAGE_S16"},
	}
	if diff := cmp.Diff(want, c.Uniforms()); diff != "" {
		t.Errorf("uniforms mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"in"}, c.IDs(RoleInput))
	assert.Empty(t, c.IDs(RoleVirtual), "uniform images are not virtual")

	errs := ov.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "u1", errs[0].NodeID)
	assert.Equal(t, "Uniform input image format missing", errs[0].Message)

	u, err := c.Uniform("u2")
	require.NoError(t, err)
	assert.Equal(t, "fill", u.Value)
	_, err = c.Uniform("in")
	assert.ErrorIs(t, err, ErrUnknownImage)
}

func TestAttributes(t *testing.T) {
	c, ov := populate(t, document.NewBuilder("attrs").
		UserData("ud", "[unsigned ref_width]").
		Image("a", "[width ref_width/2]\n[height 480]\n[nodetype scratch]").
		Image("b", "[width abc]").
		Image("c", "[height 1]\n[height 2]").
		Image("d", ""))

	tests := []struct {
		id, attr  string
		wantRef   bool
		wantValue string
	}{
		{"a", "width", true, "ref_width/2"},
		{"a", "height", false, "480"},
		{"a", "nodetype", false, "scratch"},
		{"a", "vx_df_image_e", false, "VX_DF_IMAGE_VIRT"},
		{"d", "uniform_value", false, "0"},
		{"c", "height", false, "0"},
	}
	for _, tt := range tests {
		isRef, value, err := c.GetAttribute(tt.id, Attribute(tt.attr))
		require.NoError(t, err, "%s.%s", tt.id, tt.attr)
		assert.Equal(t, tt.wantRef, isRef, "%s.%s", tt.id, tt.attr)
		assert.Equal(t, tt.wantValue, value, "%s.%s", tt.id, tt.attr)
	}

	errs := ov.Errors()
	require.Len(t, errs, 2)
	assert.Equal(t, "Invalid value for width", errs[0].Message)
	assert.Equal(t, "Image attribute not unique", errs[1].Message)

	_, value, err := c.GetAttribute("b", AttrWidth)
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.True(t, errors.Is(err, errors.ErrCodeStructural))
	assert.Empty(t, value)
	assert.NotContains(t, c.DeclaredAttributes("b"), AttrWidth)

	_, _, err = c.GetAttribute("a", "depth")
	assert.ErrorIs(t, err, ErrUnknownAttribute)
	_, _, err = c.GetAttribute("zzz", AttrWidth)
	assert.ErrorIs(t, err, ErrUnknownImage)

	assert.Equal(t, map[Attribute]string{AttrHeight: "480", AttrNodeType: "scratch", AttrWidth: "ref_width/2"}, c.DeclaredAttributes("a"))
}

func TestReferenceExpressionWarning(t *testing.T) {
	_, ov := populate(t, document.NewBuilder("warn").
		UserData("ud", "[int ref_width]").
		Image("a", "[width ref_width/]"))

	assert.False(t, ov.HasErrors())
	require.Equal(t, 1, ov.Count(diagnostics.SeverityWarning))
	assert.Equal(t, "a", ov.List()[0].NodeID)
}

func TestZeroCatalog(t *testing.T) {
	var c Catalog
	assert.False(t, c.Populated())
	assert.Nil(t, c.IDs(RoleInput))
	_, _, err := c.GetAttribute("a", AttrWidth)
	assert.ErrorIs(t, err, ErrNotPopulated)
}

func TestUniformValueMissing(t *testing.T) {
	c, ov := populate(t, document.NewBuilder("novalue").
		Image("u0", "[uniform_input_image] [vx_df_image_e VX_DF_IMAGE_U8]"))

	assert.Empty(t, c.Uniforms())
	errs := ov.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "Uniform input image value missing", errs[0].Message)
}

func TestUniformWithNumberedRole(t *testing.T) {
	c, ov := populate(t, document.NewBuilder("both").
		Image("img0", "[input_image[0]] [uniform_input_image] [uniform_value 3]\n[vx_df_image_e VX_DF_IMAGE_U8]"))

	assert.Equal(t, []string{"img0"}, c.IDs(RoleInput))
	assert.Empty(t, c.IDs(RoleUniform))
	assert.Empty(t, c.IDs(RoleVirtual))
	assert.Equal(t, []Role{RoleInput}, c.RolesOf("img0"))

	errs := ov.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "img0", errs[0].NodeID)
	assert.Equal(t, "Uniform input image cannot carry another image role", errs[0].Message)
	assert.Equal(t, errors.ErrCodeStructural, errs[0].Code)
}

func TestAttributesSharingALine(t *testing.T) {
	c, ov := populate(t, document.NewBuilder("line").
		Image("v0", "[width 640] [height 480]"))

	assert.False(t, ov.HasErrors(), "%v", ov.List())
	_, w, err := c.GetAttribute("v0", AttrWidth)
	require.NoError(t, err)
	assert.Equal(t, "640", w)
	_, h, err := c.GetAttribute("v0", AttrHeight)
	require.NoError(t, err)
	assert.Equal(t, "480", h)
}
