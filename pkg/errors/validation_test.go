package errors

import (
	"strings"
	"testing"
)

func TestValidateSliceName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"auto name", "slice_000", false},
		{"empty grid name", "", false},
		{"with dash and dot", "hero-idle.1", false},
		{"unicode", "héros", false},
		{"double dot inside", "walk..1", false},
		{"leading double dot", "..evil", false},

		{"too long", strings.Repeat("a", 201), true},
		{"slash", "a/b", true},
		{"backslash", `a\b`, true},
		{"parent", "..", true},
		{"dot", ".", true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSliceName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSliceName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidSlice) {
				t.Errorf("ValidateSliceName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidSlice)
			}
		})
	}
}

func TestValidateOutputDir(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "out", false},
		{"absolute", "/tmp/sprites", false},
		{"nested", "a/b/c", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"null byte", "out\x00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputDir(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputDir(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
