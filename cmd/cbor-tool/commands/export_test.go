package commands

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mash-protocol/cbor-go/pkg/log"
)

func createTestTraceFile(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.ctrace")

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

// sampleEvents returns a decode session with a value and an error, and an
// encode session with one value.
func sampleEvents() []log.Event {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 123456000, time.UTC)
	return []log.Event{
		{
			Timestamp: ts,
			SessionID: "dec-session-1",
			Direction: log.DirectionDecode,
			Category:  log.CategoryValue,
			Source:    "data.cbor",
			Value:     &log.ValueEvent{Major: 4, Offset: 0, Size: 3, Data: []byte{0x82, 0x01, 0x02}},
		},
		{
			Timestamp: ts.Add(time.Millisecond),
			SessionID: "dec-session-1",
			Direction: log.DirectionDecode,
			Category:  log.CategoryError,
			Source:    "data.cbor",
			Error:     &log.ErrorEventData{Kind: "structural", Message: "cbor: structural: indefinite-length items are not supported", Offset: 3},
		},
		{
			Timestamp: ts.Add(2 * time.Second),
			SessionID: "enc-session-2",
			Direction: log.DirectionEncode,
			Category:  log.CategoryValue,
			Value:     &log.ValueEvent{Major: 5, Offset: 0, Size: 9},
		},
	}
}

func TestExportToJSONL(t *testing.T) {
	path := createTestTraceFile(t, sampleEvents())

	var buf bytes.Buffer
	if err := RunExport(path, "jsonl", "", &buf); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	for i, line := range lines {
		var obj map[string]any
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			t.Errorf("line %d is not valid JSON: %v", i, err)
		}
	}
	if !strings.Contains(lines[0], "dec-session-1") {
		t.Errorf("expected session ID in first line, got %s", lines[0])
	}
}

func TestExportToCSV(t *testing.T) {
	path := createTestTraceFile(t, sampleEvents())

	var buf bytes.Buffer
	if err := RunExport(path, "csv", "", &buf); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse CSV: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected header and 3 rows, got %d records", len(records))
	}
	if strings.Join(records[0], ",") != "timestamp,session_id,direction,category,source,major,offset,size,error_kind,error_message" {
		t.Errorf("unexpected header: %v", records[0])
	}

	value := records[1]
	if value[0] != "2026-01-28T10:15:32.123456Z" || value[2] != "DECODE" || value[3] != "VALUE" {
		t.Errorf("unexpected value row: %v", value)
	}
	if value[4] != "data.cbor" || value[5] != "4" || value[7] != "3" {
		t.Errorf("unexpected value details: %v", value)
	}

	errRow := records[2]
	if errRow[3] != "ERROR" || errRow[6] != "3" || errRow[8] != "structural" {
		t.Errorf("unexpected error row: %v", errRow)
	}
	if errRow[5] != "" {
		t.Errorf("expected no major for error row, got %q", errRow[5])
	}

	if records[3][2] != "ENCODE" || records[3][5] != "5" {
		t.Errorf("unexpected encode row: %v", records[3])
	}
}

func TestExportToFile(t *testing.T) {
	path := createTestTraceFile(t, sampleEvents())
	outPath := filepath.Join(t.TempDir(), "out.jsonl")

	var buf bytes.Buffer
	if err := RunExport(path, "jsonl", outPath, &buf); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected nothing written to w, got %q", buf.String())
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if n := strings.Count(string(data), "\n"); n != 3 {
		t.Errorf("expected 3 lines in output file, got %d", n)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	path := createTestTraceFile(t, sampleEvents())

	var buf bytes.Buffer
	err := RunExport(path, "xml", "", &buf)
	if err == nil || !strings.Contains(err.Error(), "unknown format: xml") {
		t.Errorf("expected unknown format error, got %v", err)
	}
}
