package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/mash-protocol/cbor-go/cmd/cbor-tool/commands"
)

const traceUsage = `cbor-tool trace - View and analyze trace files

Trace files are written by the --trace flag of the other commands.

Usage:
  cbor-tool trace <command> [flags] <file.ctrace>

Commands:
  view     View trace file in human-readable format
  stats    Show statistics about the trace file
  export   Export trace file to JSONL or CSV
  filter   Filter trace file and write to new file
`

func runTrace(args []string) error {
	if len(args) < 1 {
		fmt.Fprint(os.Stderr, traceUsage)
		return errors.New("trace command required")
	}

	switch args[0] {
	case "view":
		return runTraceView(args[1:])
	case "stats":
		return runTraceStats(args[1:])
	case "export":
		return runTraceExport(args[1:])
	case "filter":
		return runTraceFilter(args[1:])
	case "-h", "-help", "--help", "help":
		fmt.Print(traceUsage)
		return nil
	default:
		fmt.Fprint(os.Stderr, traceUsage)
		return fmt.Errorf("unknown trace command: %s", args[0])
	}
}

func traceFlagSet(name, help string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, help)
		fmt.Fprintln(os.Stderr, "\nFlags:")
		fs.PrintDefaults()
	}
	return fs
}

func addFilterFlags(fs *pflag.FlagSet, opts *commands.FilterOptions) {
	fs.StringVar(&opts.SessionID, "session", "", "Filter by session ID")
	fs.StringVar(&opts.Direction, "direction", "", "Filter by direction (encode, decode)")
	fs.StringVar(&opts.Category, "category", "", "Filter by category (value, error)")
	fs.StringVar(&opts.Major, "major", "", "Filter values by major type (0-7 or uint, text, array, ...)")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")
}

// traceFile parses flags and returns the single trace file argument.
func traceFile(fs *pflag.FlagSet, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return "", errors.New("trace file path required")
	}
	return fs.Arg(0), nil
}

func runTraceView(args []string) error {
	fs := traceFlagSet("view", `cbor-tool trace view - View trace file in human-readable format

Usage:
  cbor-tool trace view [flags] <file.ctrace>
`)
	var opts commands.FilterOptions
	addFilterFlags(fs, &opts)

	path, err := traceFile(fs, args)
	if err != nil {
		return err
	}
	filter, err := opts.Filter()
	if err != nil {
		return err
	}
	return commands.RunView(path, filter, os.Stdout)
}

func runTraceStats(args []string) error {
	fs := traceFlagSet("stats", `cbor-tool trace stats - Show statistics about the trace file

Usage:
  cbor-tool trace stats <file.ctrace>
`)

	path, err := traceFile(fs, args)
	if err != nil {
		return err
	}
	return commands.RunStats(path, os.Stdout)
}

func runTraceExport(args []string) error {
	fs := traceFlagSet("export", `cbor-tool trace export - Export trace file to JSONL or CSV

Usage:
  cbor-tool trace export [flags] <file.ctrace>
`)
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.StringP("output", "o", "", "Output file (default: stdout)")

	path, err := traceFile(fs, args)
	if err != nil {
		return err
	}
	return commands.RunExport(path, *format, *output, os.Stdout)
}

func runTraceFilter(args []string) error {
	fs := traceFlagSet("filter", `cbor-tool trace filter - Filter trace file and write to new file

Usage:
  cbor-tool trace filter [flags] -o <out.ctrace> <file.ctrace>
`)
	output := fs.StringP("output", "o", "", "Output file (required)")
	var opts commands.FilterOptions
	addFilterFlags(fs, &opts)

	path, err := traceFile(fs, args)
	if err != nil {
		return err
	}
	if *output == "" {
		fs.Usage()
		return errors.New("output file (-o) required")
	}
	return commands.RunFilter(path, *output, opts, os.Stdout)
}
