package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mash-protocol/cbor-go/pkg/log"
	"github.com/mash-protocol/cbor-go/pkg/value"
	"github.com/mash-protocol/cbor-go/pkg/wire"
)

// majorNames are the short names accepted by --major.
var majorNames = map[string]wire.Major{
	"uint":   wire.MajorUint,
	"nint":   wire.MajorNegInt,
	"bytes":  wire.MajorBytes,
	"text":   wire.MajorText,
	"array":  wire.MajorArray,
	"map":    wire.MajorMap,
	"tag":    wire.MajorTag,
	"simple": wire.MajorSimple,
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [session] DIRECTION CATEGORY type
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	session := shortenID(event.SessionID)

	typeLabel := "-"
	if event.Value != nil {
		typeLabel = wire.Major(event.Value.Major).String()
	} else if event.Error != nil && event.Error.Kind != "" {
		typeLabel = event.Error.Kind
	}

	fmt.Fprintf(w, "%s [%s] %-6s %-5s %s\n", ts, session, event.Direction, event.Category, typeLabel)
	if event.Source != "" {
		fmt.Fprintf(w, "  Source: %s\n", event.Source)
	}

	switch {
	case event.Value != nil:
		formatValueDetails(w, event.Value)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

// shortenID returns the first 8 characters of a session ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatValueDetails(w io.Writer, v *log.ValueEvent) {
	fmt.Fprintf(w, "  Offset: %d  Size: %d bytes\n", v.Offset, v.Size)
	if len(v.Data) == 0 {
		return
	}

	fmt.Fprintf(w, "  Data: %s", hex.EncodeToString(v.Data))
	if v.Truncated {
		fmt.Fprint(w, " (truncated)")
	}
	fmt.Fprintln(w)

	if !v.Truncated {
		if vals, err := value.Parse(v.Data); err == nil && len(vals) == 1 {
			fmt.Fprintf(w, "  Diag: %s\n", value.Diag(vals[0]))
		}
	}
}

func formatErrorDetails(w io.Writer, e *log.ErrorEventData) {
	fmt.Fprintf(w, "  Message: %s\n", e.Message)
	if e.Offset >= 0 {
		fmt.Fprintf(w, "  Offset: %d\n", e.Offset)
	}
}

// ParseDirectionFlag parses a direction from a command-line flag (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	d, ok := log.ParseDirection(s)
	if !ok {
		return 0, fmt.Errorf("invalid direction: %s (must be encode or decode)", s)
	}
	return d, nil
}

// ParseCategoryFlag parses a category from a command-line flag (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	c, ok := log.ParseCategory(s)
	if !ok {
		return 0, fmt.Errorf("invalid category: %s (must be value or error)", s)
	}
	return c, nil
}

// ParseMajorFlag parses a major type given as 0-7 or as a short name
// (uint, nint, bytes, text, array, map, tag, simple).
func ParseMajorFlag(s string) (uint8, error) {
	if m, ok := majorNames[strings.ToLower(s)]; ok {
		return uint8(m), nil
	}
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil || n > 7 {
		return 0, fmt.Errorf("invalid major type: %s (must be 0-7 or uint, nint, bytes, text, array, map, tag, simple)", s)
	}
	return uint8(n), nil
}

// RunView prints the events of a trace file that match filter.
func RunView(path string, filter log.Filter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}

	return nil
}
