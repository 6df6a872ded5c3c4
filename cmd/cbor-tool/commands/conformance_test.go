package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunConformanceVectors(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	failed, err := RunConformance(env, "../../../pkg/value/testdata", ConformanceOptions{Format: "text"}, &buf)
	if err != nil {
		t.Fatalf("RunConformance failed: %v\n%s", err, buf.String())
	}
	if failed != 0 {
		t.Errorf("expected no failures, got %d", failed)
	}
	if !strings.Contains(buf.String(), "rfc8949-appendix-a") {
		t.Errorf("expected suite name in report, got %q", buf.String())
	}
}

func TestRunConformanceFailure(t *testing.T) {
	env := newTestEnv(t)

	path := filepath.Join(t.TempDir(), "suite.yaml")
	suite := `
name: wrong
vectors:
  - id: W-1
    hex: "01"
    diag: "2"
  - id: W-2
    hex: "02"
    diag: "2"
`
	if err := os.WriteFile(path, []byte(suite), 0644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	failed, err := RunConformance(env, path, ConformanceOptions{Format: "json"}, &buf)
	if failed != 1 {
		t.Errorf("expected 1 failure, got %d", failed)
	}
	if err == nil || err.Error() != "1 vectors failed" {
		t.Errorf("expected failure count error, got %v", err)
	}
	if !json.Valid(bytes.TrimSpace(buf.Bytes())) {
		t.Errorf("expected a JSON report, got %q", buf.String())
	}
}

func TestRunConformanceErrors(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	if _, err := RunConformance(env, "../../../pkg/value/testdata", ConformanceOptions{Format: "xml"}, &buf); err == nil {
		t.Error("expected error for unknown report format")
	}
	if _, err := RunConformance(env, filepath.Join(t.TempDir(), "missing"), ConformanceOptions{Format: "text"}, &buf); err == nil {
		t.Error("expected error for missing path")
	}
}
