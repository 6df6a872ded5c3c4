// Package conformance runs YAML test vectors against the codec.
//
// A vector names an encoded item in hex and what decoding it must produce:
// either its diagnostic notation or an error kind. Vectors can also require
// that the decoded value re-encodes to the same bytes.
package conformance

import (
	"fmt"
	"time"

	"github.com/mash-protocol/cbor-go/pkg/wire"
)

// Vector is a single test vector loaded from YAML.
type Vector struct {
	// ID is the unique vector identifier (e.g., "A-uint-24").
	ID string `yaml:"id"`

	// Name is an optional human-readable description.
	Name string `yaml:"name,omitempty"`

	// Hex is the encoded input. Whitespace is ignored.
	Hex string `yaml:"hex"`

	// Diag is the expected diagnostic notation. Items of a sequence are
	// separated by ", ".
	Diag string `yaml:"diag,omitempty"`

	// Roundtrip requires the decoded items to re-encode to Hex exactly.
	Roundtrip bool `yaml:"roundtrip,omitempty"`

	// Error is the expected decode error kind (e.g., "structural").
	Error string `yaml:"error,omitempty"`

	// EncodeError is the expected error kind when re-encoding a value
	// that decodes fine but cannot be written (e.g., "invalid map key").
	EncodeError string `yaml:"encode_error,omitempty"`

	// Skip, when set, is the reason the vector is not run.
	Skip string `yaml:"skip,omitempty"`

	// Tags for categorizing vectors.
	Tags []string `yaml:"tags,omitempty"`
}

// Limits overrides decoder limits for a suite.
type Limits struct {
	MaxNestedLevels  int    `yaml:"max_nested_levels,omitempty"`
	MaxArrayElements uint64 `yaml:"max_array_elements,omitempty"`
	MaxMapPairs      uint64 `yaml:"max_map_pairs,omitempty"`
	MaxStringLen     uint64 `yaml:"max_string_len,omitempty"`
}

// Apply returns opts with the non-zero limits replaced.
func (l *Limits) Apply(opts wire.DecOptions) wire.DecOptions {
	if l == nil {
		return opts
	}
	if l.MaxNestedLevels != 0 {
		opts.MaxNestedLevels = l.MaxNestedLevels
	}
	if l.MaxArrayElements != 0 {
		opts.MaxArrayElements = l.MaxArrayElements
	}
	if l.MaxMapPairs != 0 {
		opts.MaxMapPairs = l.MaxMapPairs
	}
	if l.MaxStringLen != 0 {
		opts.MaxStringLen = l.MaxStringLen
	}
	return opts
}

// Suite is a collection of vectors sharing decoder limits.
type Suite struct {
	// Name of the suite.
	Name string `yaml:"name"`

	// Description of what this suite covers.
	Description string `yaml:"description,omitempty"`

	// Limits apply to every vector in the suite.
	Limits *Limits `yaml:"limits,omitempty"`

	// Vectors in file order.
	Vectors []*Vector `yaml:"vectors"`
}

// Result is the outcome of running one vector.
type Result struct {
	// Vector is the vector that was run.
	Vector *Vector

	// Passed indicates every expectation held.
	Passed bool

	// Error describes the first failed expectation.
	Error error

	// Actual is the diagnostic notation or error kind observed.
	Actual string

	// Skipped indicates the vector was not run.
	Skipped bool

	// SkipReason explains why the vector was skipped.
	SkipReason string

	// Duration is how long the vector took.
	Duration time.Duration
}

// SuiteResult aggregates the results of a suite.
type SuiteResult struct {
	// SuiteName identifies the suite.
	SuiteName string

	// Results contains one result per vector.
	Results []*Result

	// PassCount is the number of passed vectors.
	PassCount int

	// FailCount is the number of failed vectors.
	FailCount int

	// SkipCount is the number of skipped vectors.
	SkipCount int

	// Duration is the total time for all vectors.
	Duration time.Duration
}

// LoadError provides details about a vector file loading error.
type LoadError struct {
	// File is the path to the file that failed to load.
	File string

	// Vector is the ID or index of the offending vector, if any.
	Vector string

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Vector != "" {
		msg = fmt.Sprintf("vector %s: %s", e.Vector, msg)
	}
	if e.File != "" {
		msg = e.File + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
