package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/mash-protocol/cbor-go/pkg/log"
	"github.com/mash-protocol/cbor-go/pkg/wire"
)

// Stats holds aggregate statistics about a trace file.
type Stats struct {
	TotalEvents       int
	TotalBytes        int64
	EventsByDirection map[log.Direction]int
	EventsByCategory  map[log.Category]int
	ValuesByMajor     map[uint8]int
	ErrorsByKind      map[string]int
	Sessions          map[string]*SessionStats
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// SessionStats holds statistics for a single encoder or decoder.
type SessionStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Direction log.Direction
	Source    string
	Values    int
	Bytes     int64
	Errors    int
}

// CollectStats reads every event of a trace file.
func CollectStats(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByDirection: make(map[log.Direction]int),
		EventsByCategory:  make(map[log.Category]int),
		ValuesByMajor:     make(map[uint8]int),
		ErrorsByKind:      make(map[string]int),
		Sessions:          make(map[string]*SessionStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByDirection[event.Direction]++
		stats.EventsByCategory[event.Category]++

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		sess, ok := stats.Sessions[event.SessionID]
		if !ok {
			sess = &SessionStats{
				FirstSeen: event.Timestamp,
				LastSeen:  event.Timestamp,
				Direction: event.Direction,
				Source:    event.Source,
			}
			stats.Sessions[event.SessionID] = sess
		}
		if event.Timestamp.After(sess.LastSeen) {
			sess.LastSeen = event.Timestamp
		}

		switch {
		case event.Value != nil:
			stats.ValuesByMajor[event.Value.Major]++
			stats.TotalBytes += event.Value.Size
			sess.Values++
			sess.Bytes += event.Value.Size
		case event.Error != nil:
			kind := event.Error.Kind
			if kind == "" {
				kind = "other"
			}
			stats.ErrorsByKind[kind]++
			sess.Errors++
		}
	}

	return stats, nil
}

// RunStats analyzes the trace file and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := CollectStats(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== CBOR Trace Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintf(w, "Total Bytes:  %d\n", stats.TotalBytes)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Direction:")
	for _, dir := range []log.Direction{log.DirectionDecode, log.DirectionEncode} {
		if count := stats.EventsByDirection[dir]; count > 0 {
			fmt.Fprintf(w, "  %-18s %d\n", dir.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Values by Major Type:")
	for m := uint8(0); m < 8; m++ {
		if count := stats.ValuesByMajor[m]; count > 0 {
			fmt.Fprintf(w, "  %-18s %d\n", wire.Major(m).String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Sessions: %d\n", len(stats.Sessions))
	if len(stats.Sessions) > 0 {
		type sessionInfo struct {
			id    string
			stats *SessionStats
		}
		sessions := make([]sessionInfo, 0, len(stats.Sessions))
		for id, ss := range stats.Sessions {
			sessions = append(sessions, sessionInfo{id, ss})
		}
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].stats.FirstSeen.Before(sessions[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, s := range sessions {
			fmt.Fprintf(w, "  [%s] %s %d values, %d bytes", shortenID(s.id), s.stats.Direction, s.stats.Values, s.stats.Bytes)
			if s.stats.Errors > 0 {
				fmt.Fprintf(w, ", %d errors", s.stats.Errors)
			}
			fmt.Fprintln(w)
			if s.stats.Source != "" {
				fmt.Fprintf(w, "           Source: %s\n", s.stats.Source)
			}
		}
	}

	if len(stats.ErrorsByKind) > 0 {
		kinds := make([]string, 0, len(stats.ErrorsByKind))
		for k := range stats.ErrorsByKind {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)

		fmt.Fprintln(w)
		fmt.Fprintln(w, "Errors by Kind:")
		for _, k := range kinds {
			fmt.Fprintf(w, "  %-18s %d\n", k+":", stats.ErrorsByKind[k])
		}
	}
}
