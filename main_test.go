package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	tests := []struct {
		path     string
		expected string
	}{
		{"~/Pictures/GeminiReImage", filepath.Join(home, "Pictures", "GeminiReImage")},
		{"~", home},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"~user/path", "~user/path"},
	}

	for _, test := range tests {
		if got := expandHome(test.path); got != test.expected {
			t.Errorf("expandHome(%q) = %q, want %q", test.path, got, test.expected)
		}
	}
}
