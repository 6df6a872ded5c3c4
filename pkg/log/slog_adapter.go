package log

import (
	"context"
	"encoding/hex"
	"log/slog"
)

// SlogAdapter writes codec events to an slog.Logger.
// Useful for development when you want to see traffic in the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session", event.SessionID),
		slog.String("direction", event.Direction.String()),
		slog.String("category", event.Category.String()),
	}
	if event.Source != "" {
		attrs = append(attrs, slog.String("source", event.Source))
	}

	switch {
	case event.Value != nil:
		attrs = append(attrs,
			slog.Int("major", int(event.Value.Major)),
			slog.Int64("offset", event.Value.Offset),
			slog.Int64("size", event.Value.Size),
		)
		if len(event.Value.Data) > 0 {
			attrs = append(attrs,
				slog.String("data", hex.EncodeToString(event.Value.Data)),
				slog.Bool("truncated", event.Value.Truncated),
			)
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_kind", event.Error.Kind),
			slog.String("error_msg", event.Error.Message),
			slog.Int64("error_offset", event.Error.Offset),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "cbor", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
