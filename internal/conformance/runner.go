package conformance

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mash-protocol/cbor-go/pkg/value"
	"github.com/mash-protocol/cbor-go/pkg/wire"
)

// Runner executes suites with a base decoder configuration.
type Runner struct {
	opts   wire.DecOptions
	logger *slog.Logger
}

// NewRunner creates a runner. Suite limits override opts per suite.
func NewRunner(opts wire.DecOptions, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{opts: opts, logger: logger}
}

// Run executes every vector of the suite.
func (r *Runner) Run(s *Suite) (*SuiteResult, error) {
	mode, err := s.Limits.Apply(r.opts).DecMode()
	if err != nil {
		return nil, fmt.Errorf("suite %s: %w", s.Name, err)
	}

	start := time.Now()
	result := &SuiteResult{SuiteName: s.Name}
	for _, v := range s.Vectors {
		res := r.runVector(mode, v)
		switch {
		case res.Skipped:
			result.SkipCount++
		case res.Passed:
			result.PassCount++
		default:
			result.FailCount++
			r.logger.Debug("vector failed", "suite", s.Name, "id", v.ID, "error", res.Error)
		}
		result.Results = append(result.Results, res)
	}
	result.Duration = time.Since(start)
	return result, nil
}

func (r *Runner) runVector(mode wire.DecMode, v *Vector) *Result {
	res := &Result{Vector: v}
	if v.Skip != "" {
		res.Skipped = true
		res.SkipReason = v.Skip
		return res
	}

	start := time.Now()
	res.Error = check(mode, v, res)
	res.Passed = res.Error == nil
	res.Duration = time.Since(start)
	return res
}

// check runs the expectations of v in order and returns the first that
// fails.
func check(mode wire.DecMode, v *Vector, res *Result) error {
	data, err := v.Bytes()
	if err != nil {
		return fmt.Errorf("invalid hex: %w", err)
	}

	vals, err := value.ReadAll(mode.NewDecoder(bytes.NewReader(data)))
	if v.Error != "" {
		if err == nil {
			res.Actual = diagJoin(vals)
			return fmt.Errorf("expected %s error, decoded %s", v.Error, res.Actual)
		}
		res.Actual = kindName(err)
		if res.Actual != v.Error {
			return fmt.Errorf("expected %s error, got %w", v.Error, err)
		}
		return nil
	}
	if err != nil {
		res.Actual = kindName(err)
		return fmt.Errorf("decode: %w", err)
	}

	res.Actual = diagJoin(vals)
	if v.Diag != "" && res.Actual != v.Diag {
		return fmt.Errorf("diag mismatch: got %s, want %s", res.Actual, v.Diag)
	}

	if !v.Roundtrip && v.EncodeError == "" {
		return nil
	}
	var buf bytes.Buffer
	enc := wire.NewEncoder(&buf)
	for _, item := range vals {
		if err = enc.Encode(item); err != nil {
			break
		}
	}
	if v.EncodeError != "" {
		if err == nil {
			return fmt.Errorf("expected %s error on encode, wrote %x", v.EncodeError, buf.Bytes())
		}
		if got := kindName(err); got != v.EncodeError {
			return fmt.Errorf("expected %s error on encode, got %w", v.EncodeError, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if !bytes.Equal(buf.Bytes(), data) {
		return fmt.Errorf("re-encoded %x, want %x", buf.Bytes(), data)
	}
	return nil
}

func kindName(err error) string {
	if kind, ok := wire.KindOf(err); ok {
		return kind.String()
	}
	return "unknown"
}

func diagJoin(vals []value.Value) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = value.Diag(v)
	}
	return strings.Join(parts, ", ")
}
