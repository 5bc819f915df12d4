// Package testsupport holds fixture and golden-file helpers shared by package
// tests.
package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formwidgets/pkg/model"
)

// MustLoadForm decodes a YAML or JSON form fixture.
func MustLoadForm(t *testing.T, path string) model.Form {
	t.Helper()

	var form model.Form
	if err := yaml.Unmarshal(MustReadGolden(t, path), &form); err != nil {
		t.Fatalf("decode form %s: %v", path, err)
	}
	return form
}

// WriteForm writes a form fixture as YAML when UPDATE_GOLDENS is set.
func WriteForm(t *testing.T, path string, form model.Form) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := yaml.Marshal(form)
	if err != nil {
		t.Fatalf("marshal form: %v", err)
	}
	WriteMaybeGolden(t, path, payload)
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
