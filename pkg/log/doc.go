// Package log provides structured tracing of CBOR codec calls.
//
// This package defines the Logger interface and Event types for capturing
// every top-level value an Encoder writes or a Decoder reads, along with
// the errors that stop them. It is separate from operational logging
// (slog): tracing gives a complete machine-readable record of a stream for
// debugging and analysis.
//
// # Basic Usage
//
// Codec modes take a Logger:
//
//	// For development: log to console via slog
//	opts.Logger = log.NewSlogAdapter(slog.Default())
//
//	// For capture: write to a binary trace file
//	opts.Logger, _ = log.NewFileLogger("/tmp/session.ctrace")
//
//	// Both: use MultiLogger
//	opts.Logger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # File Format
//
// Trace files are a sequence of CBOR-encoded events. The cbor-tool trace
// command views, filters and summarizes them.
package log
