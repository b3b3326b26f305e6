package errors

import (
	"strings"
	"testing"
)

func TestValidateTableDir(t *testing.T) {
	tests := []struct {
		name    string
		dir     string
		wantErr bool
	}{
		{"valid relative", "warehouse/db/events", false},
		{"valid absolute", "/data/warehouse/db/events", false},
		{"empty", "", true},
		{"control character", "tbl\x01", true},
		{"null byte", "tbl\x00", true},
		{"too long", strings.Repeat("a", 5000), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTableDir(tt.dir)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTableDir(%q) error = %v, wantErr %v", tt.dir, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		wantErr  bool
	}{
		{"simple", "graph.json", false},
		{"empty", "", true},
		{"slash", "a/b.json", true},
		{"backslash", `a\b.json`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilename(tt.filename)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFilename(%q) error = %v, wantErr %v", tt.filename, err, tt.wantErr)
			}
		})
	}
}
