package nodelib

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/vxgraph/pkg/errors"
)

func TestDefaultCoversAllTypes(t *testing.T) {
	for _, v := range Versions() {
		lib, err := Default(v)
		require.NoError(t, err, "version %s", v)
		assert.Equal(t, v, lib.Version())

		for _, op := range AllOpTypes() {
			info, ok := lib.Lookup(op)
			require.True(t, ok, "missing %s", op)
			assert.Equal(t, op, info.Type)
			assert.Positive(t, info.InputArity(), "%s input arity", op)
			assert.Positive(t, info.OutputArity(), "%s output arity", op)
		}
		assert.Len(t, lib.Types(), len(AllOpTypes()))
	}
}

func TestDefaultSlots(t *testing.T) {
	lib := MustDefault(Version12)

	tests := []struct {
		op          OpType
		firstInput  int
		firstOutput int
		in, out     int
	}{
		{OpHalfScaleGaussian, 0, 1, 1, 1},
		{OpSubtract, 0, 3, 2, 1},
		{OpThreshold, 0, 2, 1, 1},
		{OpSobel3x3, 0, 1, 1, 2},
		{OpMultiply, 0, 5, 2, 1},
		{OpWarpAffine, 0, 3, 1, 1},
		{OpDubbelIoTest, 0, 2, 2, 2},
		{OpDilate2x2, 1, 3, 1, 1},
		{OpErode2x2, 1, 3, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			info, ok := lib.Lookup(tt.op)
			require.True(t, ok)
			assert.Equal(t, tt.firstInput, info.FirstInput)
			assert.Equal(t, tt.firstOutput, info.FirstOutput)
			assert.Equal(t, tt.in, info.InputArity())
			assert.Equal(t, tt.out, info.OutputArity())
		})
	}
}

func TestVersionOverrides(t *testing.T) {
	old := MustDefault(Version101)
	for _, op := range []OpType{OpDilate2x2, OpErode2x2} {
		info, _ := old.Lookup(op)
		assert.Equal(t, 0, info.FirstInput, "%s first input", op)
		assert.Equal(t, 1, info.FirstOutput, "%s first output", op)
	}

	// Overrides must not leak into other versions.
	cur := MustDefault(Version11)
	info, _ := cur.Lookup(OpDilate2x2)
	assert.Equal(t, 1, info.FirstInput)
	assert.Equal(t, 3, info.FirstOutput)
}

func TestParamSlots(t *testing.T) {
	lib := MustDefault(DefaultVersion)

	info, _ := lib.Lookup(OpMultiply)
	if diff := cmp.Diff([]string{"vx_scalar", "vx_convert_policy_e", "vx_round_policy_e"}, info.ParamNames()); diff != "" {
		t.Errorf("Multiply params mismatch (-want +got):\n%s", diff)
	}
	slot, ok := info.ParamSlot("vx_round_policy_e")
	require.True(t, ok)
	assert.Equal(t, 4, slot)

	_, ok = info.ParamSlot("vx_lut")
	assert.False(t, ok)

	info, _ = lib.Lookup(OpSobel3x3)
	assert.Empty(t, info.Params)
}

func TestFormatRules(t *testing.T) {
	lib := MustDefault(DefaultVersion)
	info, _ := lib.Lookup(OpThreshold)

	want := []FormatRule{
		{In: []string{"U8"}, Out: []string{"U8"}},
		{In: []string{"U8"}, Out: []string{"VIRT->U8"}},
	}
	if diff := cmp.Diff(want, info.Formats); diff != "" {
		t.Errorf("Threshold formats mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, info.Formats[0].IsVirtualDerived())
	assert.True(t, info.Formats[1].IsVirtualDerived())
	assert.Equal(t, "U8", ResolveVirtual("VIRT->U8"))
	assert.Equal(t, "S16", ResolveVirtual("S16"))
}

func TestLoadRejectsBadData(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", "[[operator]\nname ="},
		{"unknown type", `[[operator]]
name = "Blur"
formats = [{ in = ["U8"], out = ["U8"] }]`},
		{"missing types", `[[operator]]
name = "Threshold"
formats = [{ in = ["U8"], out = ["U8"] }]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.data), DefaultVersion)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidLibrary), "code = %s", errors.GetCode(err))
		})
	}
}

func TestValidateArity(t *testing.T) {
	info := &TypeInfo{
		Type: OpAdd,
		Formats: []FormatRule{
			{In: []string{"U8", "U8"}, Out: []string{"U8"}},
			{In: []string{"U8"}, Out: []string{"U8"}},
		},
	}
	assert.Error(t, validate(info))

	info.Formats = []FormatRule{{In: []string{"U8"}, Out: []string{"U8", "VIRT->U8"}}}
	assert.Error(t, validate(info), "mixed virtual and explicit outputs")

	info.Formats = []FormatRule{{In: []string{"U8"}, Out: []string{"U8"}}}
	info.Params = []Param{{Name: "a", Slot: 2}, {Name: "b", Slot: 2}}
	assert.Error(t, validate(info), "duplicate slot")
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	_, err := Default(Version("2.0"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidVersion))
}
