// Command cbor-tool inspects, converts and verifies CBOR data.
//
// Input is read from a file given as the last argument, or from stdin.
// With --hex the input is hex text instead of binary.
//
// Usage:
//
//	cbor-tool <command> [flags] [file]
//
// Commands:
//
//	diag         Print items in diagnostic notation
//	encode       Convert JSON or YAML to CBOR
//	verify       Check that input is well-formed and canonical
//	digest       Print a BLAKE2b digest of each item
//	repl         Interactive decode/encode session
//	conformance  Run YAML test vector suites
//	trace        View and analyze trace files (view, stats, export, filter)
//
// Examples:
//
//	# Show a hex item in diagnostic notation
//	echo 'a26161016162820203' | cbor-tool diag --hex
//
//	# Encode JSON and check the result
//	echo '{"b":[2,3],"a":1}' | cbor-tool encode | cbor-tool verify
//
//	# Record a trace of everything decoded, then summarize it
//	cbor-tool diag --trace session.ctrace data.cbor
//	cbor-tool trace stats session.ctrace
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"github.com/mash-protocol/cbor-go/cmd/cbor-tool/commands"
)

const usage = `cbor-tool - CBOR inspection and conversion

Usage:
  cbor-tool <command> [flags] [file]

Commands:
  diag         Print items in diagnostic notation
  encode       Convert JSON or YAML to CBOR
  verify       Check that input is well-formed and canonical
  digest       Print a BLAKE2b digest of each item
  repl         Interactive decode/encode session
  conformance  Run YAML test vector suites
  trace        View and analyze trace files (view, stats, export, filter)

Use "cbor-tool <command> --help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "diag":
		err = runDiag(args)
	case "encode":
		err = runEncode(args)
	case "verify":
		err = runVerify(args)
	case "digest":
		err = runDigest(args)
	case "repl":
		err = runREPL(args)
	case "conformance":
		err = runConformance(args)
	case "trace":
		err = runTrace(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// common holds the flags shared by the codec commands.
type common struct {
	config   string
	logLevel string
	trace    string
	hex      bool
}

func newFlagSet(name, help string, c *common, hexInput bool) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, help)
		fmt.Fprintln(os.Stderr, "\nFlags:")
		fs.PrintDefaults()
	}
	fs.StringVar(&c.config, "config", "", "YAML config file (limits, trace, log_level)")
	fs.StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	fs.StringVar(&c.trace, "trace", "", "Append trace events to this file (overrides config)")
	if hexInput {
		fs.BoolVarP(&c.hex, "hex", "x", false, "Treat input as hex-encoded CBOR")
	}
	return fs
}

// env loads the config, applies flag overrides and builds the codec
// environment.
func (c *common) env(source string) (*commands.Env, error) {
	cfg, err := commands.LoadConfig(c.config)
	if err != nil {
		return nil, err
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	if c.trace != "" {
		cfg.Trace = c.trace
	}

	logger, err := commands.NewLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return commands.NewEnv(cfg, source, logger)
}

// withInput parses flags, reads the input and runs fn.
func withInput(fs *pflag.FlagSet, c *common, args []string, fn func(*commands.Env, *commands.Input) error) error {
	if err := fs.Parse(args); err != nil {
		return err
	}

	in, err := commands.ReadInput(fs.Args(), os.Stdin, c.hex)
	if err != nil {
		return err
	}

	env, err := c.env(in.Name)
	if err != nil {
		return err
	}
	defer env.Close()

	return fn(env, in)
}

func runDiag(args []string) error {
	var c common
	fs := newFlagSet("diag", `cbor-tool diag - Print items in diagnostic notation

Usage:
  cbor-tool diag [flags] [file]
`, &c, true)
	var opts commands.DiagOptions
	fs.BoolVarP(&opts.Offsets, "offsets", "o", false, "Prefix each item with its byte offset")
	fs.BoolVar(&opts.Reference, "reference", false, "Use the fxamacker/cbor diagnostic encoder")

	return withInput(fs, &c, args, func(env *commands.Env, in *commands.Input) error {
		return commands.RunDiag(env, in, opts, os.Stdout)
	})
}

func runEncode(args []string) error {
	var c common
	fs := newFlagSet("encode", `cbor-tool encode - Convert JSON or YAML to CBOR

Several documents (a JSON stream or a multi-document YAML file) become a
CBOR sequence. Map keys are written in canonical order.

Usage:
  cbor-tool encode [flags] [file]
`, &c, false)
	var opts commands.EncodeOptions
	fs.StringVarP(&opts.Format, "format", "f", "", "Input format: json, yaml (default: by extension or content)")
	fs.BoolVarP(&opts.Hex, "hex", "x", false, "Write hex instead of binary")

	return withInput(fs, &c, args, func(env *commands.Env, in *commands.Input) error {
		return commands.RunEncode(env, in, opts, os.Stdout)
	})
}

func runVerify(args []string) error {
	var c common
	fs := newFlagSet("verify", `cbor-tool verify - Check that input is well-formed and canonical

Every item must decode and re-encode to the same bytes.

Usage:
  cbor-tool verify [flags] [file]
`, &c, true)

	return withInput(fs, &c, args, func(env *commands.Env, in *commands.Input) error {
		return commands.RunVerify(env, in, os.Stdout)
	})
}

func runDigest(args []string) error {
	var c common
	fs := newFlagSet("digest", `cbor-tool digest - Print a BLAKE2b digest of each item

The digest covers the canonical encoding, so equal data has equal digests
whatever width its integers were written with.

Usage:
  cbor-tool digest [flags] [file]
`, &c, true)
	var opts commands.DigestOptions
	fs.IntVar(&opts.Size, "size", 0, "Digest size in bytes, 1-64 (default 32)")
	fs.StringVar(&opts.Key, "key", "", "Hex MAC key (default size only)")
	fs.StringVar(&opts.Check, "check", "", "Expected hex digest of a single item")

	return withInput(fs, &c, args, func(env *commands.Env, in *commands.Input) error {
		return commands.RunDigest(env, in, opts, os.Stdout)
	})
}

func runREPL(args []string) error {
	var c common
	fs := newFlagSet("repl", `cbor-tool repl - Interactive decode/encode session

Usage:
  cbor-tool repl [flags]
`, &c, false)
	history := fs.String("history", "", "Readline history file")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("repl takes no positional arguments, got %q", fs.Arg(0))
	}

	env, err := c.env("repl")
	if err != nil {
		return err
	}
	defer env.Close()

	repl, err := commands.NewREPL(env, *history)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := repl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runConformance(args []string) error {
	var c common
	fs := newFlagSet("conformance", `cbor-tool conformance - Run YAML test vector suites

Each suite lists hex inputs with the diagnostic notation or error kind they
must produce. Suite limits override the configured decoder limits.

Usage:
  cbor-tool conformance [flags] <file-or-directory>
`, &c, false)
	var opts commands.ConformanceOptions
	fs.StringVar(&opts.Format, "format", "text", "Report format: text, json, junit")
	fs.BoolVarP(&opts.Verbose, "verbose", "v", false, "List passed vectors too")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("suite file or directory required")
	}

	env, err := c.env(fs.Arg(0))
	if err != nil {
		return err
	}
	defer env.Close()

	_, err = commands.RunConformance(env, fs.Arg(0), opts, os.Stdout)
	return err
}
