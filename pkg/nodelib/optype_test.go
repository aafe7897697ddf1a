package nodelib

import (
	"testing"
)

func TestParseOpType(t *testing.T) {
	tests := []struct {
		name string
		want OpType
		ok   bool
	}{
		{"Threshold", OpThreshold, true},
		{"Erode2x2", OpErode2x2, true},
		{"DubbelIoTest", OpDubbelIoTest, true},
		{"threshold", OpUnknown, false},
		{"Unknown", OpUnknown, false},
		{"", OpUnknown, false},
	}

	for _, tt := range tests {
		got, ok := ParseOpType(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseOpType(%q) = (%v, %v), want (%v, %v)", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestOpTypeRoundTrip(t *testing.T) {
	all := AllOpTypes()
	if len(all) != 19 {
		t.Fatalf("AllOpTypes() len = %d, want 19", len(all))
	}
	for _, op := range all {
		if !op.Valid() {
			t.Errorf("%v.Valid() = false", op)
		}
		got, ok := ParseOpType(op.String())
		if !ok || got != op {
			t.Errorf("ParseOpType(%q) = %v, want %v", op.String(), got, op)
		}
	}
	if OpUnknown.Valid() {
		t.Error("OpUnknown.Valid() = true")
	}
	if OpType(99).String() != "Unknown" {
		t.Errorf("OpType(99).String() = %q", OpType(99).String())
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in      string
		want    Version
		wantErr bool
	}{
		{"", DefaultVersion, false},
		{"1.0.1", Version101, false},
		{"1.1", Version11, false},
		{"1.2", Version12, false},
		{"1.3", "", true},
	}
	for _, tt := range tests {
		got, err := ParseVersion(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseVersion(%q) = (%v, %v), want (%v, wantErr %v)", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}
