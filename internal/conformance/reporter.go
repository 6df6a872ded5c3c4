package conformance

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Reporter formats and outputs vector results.
type Reporter interface {
	// ReportSuite reports results for a suite.
	ReportSuite(result *SuiteResult)

	// ReportVector reports the result of a single vector.
	ReportVector(result *Result)
}

// NewReporter returns the reporter for a format name: text, json or junit.
func NewReporter(format string, w io.Writer, verbose bool) (Reporter, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return NewTextReporter(w, verbose), nil
	case "json":
		return NewJSONReporter(w, verbose), nil
	case "junit":
		return NewJUnitReporter(w), nil
	default:
		return nil, fmt.Errorf("unknown report format: %s (supported: text, json, junit)", format)
	}
}

// TextReporter outputs human-readable text reports.
type TextReporter struct {
	writer  io.Writer
	verbose bool
}

// NewTextReporter creates a new text reporter. Unless verbose, only failed
// and skipped vectors are listed.
func NewTextReporter(w io.Writer, verbose bool) *TextReporter {
	return &TextReporter{
		writer:  w,
		verbose: verbose,
	}
}

// ReportSuite reports suite results in text format.
func (r *TextReporter) ReportSuite(result *SuiteResult) {
	fmt.Fprintf(r.writer, "=== Suite: %s ===\n", result.SuiteName)

	for _, res := range result.Results {
		if r.verbose || !res.Passed {
			r.ReportVector(res)
		}
	}

	fmt.Fprintf(r.writer, "--- %d passed, %d failed, %d skipped (%s)\n",
		result.PassCount, result.FailCount, result.SkipCount,
		result.Duration.Round(time.Microsecond))
}

// ReportVector reports a single vector result in text format.
func (r *TextReporter) ReportVector(result *Result) {
	v := result.Vector

	fmt.Fprintf(r.writer, "[%s] %s", status(result), v.ID)
	if v.Name != "" {
		fmt.Fprintf(r.writer, " - %s", v.Name)
	}
	fmt.Fprintln(r.writer)

	if result.Skipped && result.SkipReason != "" {
		fmt.Fprintf(r.writer, "       Skip reason: %s\n", result.SkipReason)
	}
	if !result.Passed && result.Error != nil {
		fmt.Fprintf(r.writer, "       Error: %v\n", result.Error)
	}
	if r.verbose && result.Actual != "" {
		fmt.Fprintf(r.writer, "       Actual: %s\n", result.Actual)
	}
}

func status(result *Result) string {
	switch {
	case result.Skipped:
		return "SKIP"
	case result.Passed:
		return "PASS"
	default:
		return "FAIL"
	}
}

// JSONReporter outputs JSON-formatted reports.
type JSONReporter struct {
	writer io.Writer
	pretty bool
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(w io.Writer, pretty bool) *JSONReporter {
	return &JSONReporter{
		writer: w,
		pretty: pretty,
	}
}

// JSONSuiteResult is the JSON representation of suite results.
type JSONSuiteResult struct {
	SuiteName string             `json:"suite_name"`
	Duration  string             `json:"duration"`
	Total     int                `json:"total"`
	Passed    int                `json:"passed"`
	Failed    int                `json:"failed"`
	Skipped   int                `json:"skipped"`
	Vectors   []JSONVectorResult `json:"vectors"`
}

// JSONVectorResult is the JSON representation of a vector result.
type JSONVectorResult struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	Actual     string `json:"actual,omitempty"`
	Error      string `json:"error,omitempty"`
	SkipReason string `json:"skip_reason,omitempty"`
}

// ReportSuite reports suite results in JSON format.
func (r *JSONReporter) ReportSuite(result *SuiteResult) {
	jr := JSONSuiteResult{
		SuiteName: result.SuiteName,
		Duration:  result.Duration.String(),
		Total:     len(result.Results),
		Passed:    result.PassCount,
		Failed:    result.FailCount,
		Skipped:   result.SkipCount,
		Vectors:   make([]JSONVectorResult, 0, len(result.Results)),
	}
	for _, res := range result.Results {
		jr.Vectors = append(jr.Vectors, vectorToJSON(res))
	}
	r.writeJSON(jr)
}

// ReportVector reports a single vector result in JSON format.
func (r *JSONReporter) ReportVector(result *Result) {
	r.writeJSON(vectorToJSON(result))
}

func vectorToJSON(result *Result) JSONVectorResult {
	jr := JSONVectorResult{
		ID:         result.Vector.ID,
		Status:     strings.ToLower(status(result)),
		Actual:     result.Actual,
		SkipReason: result.SkipReason,
	}
	if result.Error != nil {
		jr.Error = result.Error.Error()
	}
	return jr
}

func (r *JSONReporter) writeJSON(v any) {
	var data []byte
	var err error

	if r.pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		fmt.Fprintf(r.writer, `{"error": "failed to marshal: %s"}`, err)
		return
	}

	fmt.Fprintln(r.writer, string(data))
}

// JUnitReporter outputs JUnit XML format for CI integration.
type JUnitReporter struct {
	writer io.Writer
}

// NewJUnitReporter creates a new JUnit reporter.
func NewJUnitReporter(w io.Writer) *JUnitReporter {
	return &JUnitReporter{writer: w}
}

// ReportSuite reports suite results in JUnit XML format.
func (r *JUnitReporter) ReportSuite(result *SuiteResult) {
	var b strings.Builder

	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString("\n")

	fmt.Fprintf(&b, `<testsuite name="%s" tests="%d" failures="%d" skipped="%d" time="%.3f">`,
		escapeXML(result.SuiteName),
		len(result.Results),
		result.FailCount,
		result.SkipCount,
		result.Duration.Seconds())
	b.WriteString("\n")

	for _, res := range result.Results {
		fmt.Fprintf(&b, `  <testcase name="%s" classname="%s" time="%.3f">`,
			escapeXML(res.Vector.ID),
			escapeXML(result.SuiteName),
			res.Duration.Seconds())
		b.WriteString("\n")

		if res.Skipped {
			fmt.Fprintf(&b, `    <skipped message="%s"/>`, escapeXML(res.SkipReason))
			b.WriteString("\n")
		} else if !res.Passed && res.Error != nil {
			fmt.Fprintf(&b, `    <failure message="%s"/>`, escapeXML(res.Error.Error()))
			b.WriteString("\n")
		}

		b.WriteString("  </testcase>\n")
	}

	b.WriteString("</testsuite>\n")

	fmt.Fprint(r.writer, b.String())
}

// ReportVector reports a single vector wrapped in a minimal testsuite.
func (r *JUnitReporter) ReportVector(result *Result) {
	suite := &SuiteResult{
		SuiteName: "single vector",
		Results:   []*Result{result},
		Duration:  result.Duration,
	}
	switch {
	case result.Skipped:
		suite.SkipCount = 1
	case result.Passed:
		suite.PassCount = 1
	default:
		suite.FailCount = 1
	}
	r.ReportSuite(suite)
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
