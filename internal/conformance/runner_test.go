package conformance_test

import (
	"strings"
	"testing"

	"github.com/mash-protocol/cbor-go/internal/conformance"
	"github.com/mash-protocol/cbor-go/pkg/wire"
)

func runSuite(t *testing.T, yaml string) *conformance.SuiteResult {
	t.Helper()
	s, err := conformance.ParseSuite([]byte(yaml))
	if err != nil {
		t.Fatalf("Failed to parse suite: %v", err)
	}
	res, err := conformance.NewRunner(wire.DecOptions{}, nil).Run(s)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return res
}

// TestRunnerPasses tests every kind of expectation that holds.
func TestRunnerPasses(t *testing.T) {
	res := runSuite(t, basicSuite)

	if res.SuiteName != "basic" {
		t.Errorf("SuiteName mismatch: got %s", res.SuiteName)
	}
	if res.PassCount != 4 || res.FailCount != 0 || res.SkipCount != 1 {
		for _, r := range res.Results {
			t.Logf("%s: passed=%v error=%v", r.Vector.ID, r.Passed, r.Error)
		}
		t.Fatalf("Counts mismatch: %d passed, %d failed, %d skipped", res.PassCount, res.FailCount, res.SkipCount)
	}

	actual := []string{"1", "24", "unassigned", "{1: 2, 3: 4}", ""}
	for i, r := range res.Results {
		if r.Actual != actual[i] {
			t.Errorf("%s: Actual mismatch: expected %q, got %q", r.Vector.ID, actual[i], r.Actual)
		}
	}
	if !res.Results[4].Skipped || res.Results[4].SkipReason != "not decidable" {
		t.Errorf("V-5 should be skipped: %+v", res.Results[4])
	}
}

// TestRunnerFailures tests that each broken expectation is reported.
func TestRunnerFailures(t *testing.T) {
	res := runSuite(t, `
name: failures
vectors:
  - {id: F-diag, hex: "01", diag: "2"}
  - {id: F-decoded, hex: "01", error: io}
  - {id: F-kind, hex: "1c", error: reserved}
  - {id: F-decode, hex: "1c", diag: "0"}
  - {id: F-roundtrip, hex: "1900 17", diag: "23", roundtrip: true}
  - {id: F-encoded, hex: "a1616101", diag: '{"a": 1}', encode_error: invalid map key}
`)

	if res.FailCount != 6 || res.PassCount != 0 {
		t.Fatalf("Expected 6 failures, got %d passed, %d failed", res.PassCount, res.FailCount)
	}

	want := map[string]string{
		"F-diag":      "diag mismatch: got 1, want 2",
		"F-decoded":   "expected io error, decoded 1",
		"F-kind":      "expected reserved error, got cbor: unassigned",
		"F-decode":    "decode: cbor: unassigned",
		"F-roundtrip": "re-encoded 17, want 190017",
		"F-encoded":   "expected invalid map key error on encode, wrote a1616101",
	}
	for _, r := range res.Results {
		if r.Passed {
			t.Errorf("%s: expected failure", r.Vector.ID)
			continue
		}
		if !strings.HasPrefix(r.Error.Error(), want[r.Vector.ID]) {
			t.Errorf("%s: Error mismatch: expected prefix %q, got %q", r.Vector.ID, want[r.Vector.ID], r.Error)
		}
	}
}

// TestRunnerLimits tests that suite limits override the base options.
func TestRunnerLimits(t *testing.T) {
	res := runSuite(t, `
name: limits
limits:
  max_nested_levels: 4
  max_string_len: 2
vectors:
  - {id: L-1, hex: "8181818100", diag: "[[[[0]]]]"}
  - {id: L-2, hex: "818181818100", error: depth exceeded}
  - {id: L-3, hex: "626161", diag: '"aa"'}
  - {id: L-4, hex: "63616161", error: structural}
`)
	if res.FailCount != 0 {
		for _, r := range res.Results {
			t.Logf("%s: passed=%v error=%v", r.Vector.ID, r.Passed, r.Error)
		}
		t.Fatalf("Expected no failures, got %d", res.FailCount)
	}

	// The same input passes without the suite limits.
	res = runSuite(t, `
name: defaults
vectors:
  - {id: D-1, hex: "818181818100", diag: "[[[[[0]]]]]"}
`)
	if res.PassCount != 1 {
		t.Errorf("Expected default limits to accept depth 5: %v", res.Results[0].Error)
	}
}

// TestRunnerInvalidLimits tests that invalid suite limits fail the run.
func TestRunnerInvalidLimits(t *testing.T) {
	s, err := conformance.ParseSuite([]byte(`
name: bad-limits
limits:
  max_nested_levels: 2
vectors:
  - {id: X, hex: "00", diag: "0"}
`))
	if err != nil {
		t.Fatalf("Failed to parse suite: %v", err)
	}

	_, err = conformance.NewRunner(wire.DecOptions{}, nil).Run(s)
	if err == nil {
		t.Fatal("Expected error for nesting limit below minimum")
	}
	if !strings.HasPrefix(err.Error(), "suite bad-limits: ") {
		t.Errorf("Error should name the suite: %v", err)
	}
}
