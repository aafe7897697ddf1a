package errors

import (
	"testing"
)

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "ref_width", false},
		{"leading underscore", "_h", false},
		{"digits", "w2", false},
		{"upper", "REF", false},

		{"empty", "", true},
		{"leading digit", "2w", true},
		{"dash", "ref-width", true},
		{"space", "ref width", true},
		{"keyword", "int", true},
		{"keyword unsigned", "unsigned", true},
		{"too long", string(make([]byte, 64)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifier(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIdentifier(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeUserData) {
				t.Errorf("ValidateIdentifier(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeUserData)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "out/report.json", false},
		{"absolute", "/tmp/view.svg", false},
		{"file only", "view.dot", false},

		{"empty", "", true},
		{"traversal", "../etc/passwd", true},
		{"null byte", "a\x00b", true},
		{"newline", "a\nb", true},
		{"too long", string(make([]byte, 501)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
