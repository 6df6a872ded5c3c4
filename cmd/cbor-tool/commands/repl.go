package commands

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/mash-protocol/cbor-go/pkg/digest"
	"github.com/mash-protocol/cbor-go/pkg/value"
)

// REPL is the interactive mode of cbor-tool.
type REPL struct {
	env *Env
	rl  *readline.Instance
	out io.Writer

	// last is the most recently decoded or encoded sequence.
	last []value.Value
}

// NewREPL creates a REPL reading from the terminal.
func NewREPL(env *Env, historyFile string) (*REPL, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "cbor> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &REPL{env: env, rl: rl, out: rl.Stdout()}, nil
}

// Run starts the command loop. It returns when the user quits, input ends
// or ctx is done.
func (r *REPL) Run(ctx context.Context) error {
	defer r.rl.Close()

	r.printHelp()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(r.out, "Exiting...")
			return nil
		}

		if r.Exec(line) {
			fmt.Fprintln(r.out, "Exiting...")
			return nil
		}
	}
}

// Exec runs one command line and reports whether the user asked to quit.
func (r *REPL) Exec(line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	cmd, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(cmd) {
	case "help", "?":
		r.printHelp()

	case "decode", "d":
		r.cmdDecode(rest)

	case "json", "j":
		r.cmdEncode(rest, "json")

	case "yaml", "y":
		r.cmdEncode(rest, "yaml")

	case "digest":
		r.cmdDigest()

	case "limits":
		r.cmdLimits()

	case "quit", "exit", "q":
		return true

	default:
		if _, err := DecodeHex([]byte(input)); err == nil {
			r.cmdDecode(input)
			return false
		}
		fmt.Fprintf(r.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (r *REPL) printHelp() {
	fmt.Fprintln(r.out, `
cbor-tool interactive mode:
  <hex>                  - Decode hex input (same as decode)
  decode <hex>           - Decode hex and show diagnostic notation
  json <document>        - Encode a JSON document and show the hex
  yaml <document>        - Encode a flow-style YAML document
  digest                 - Digest the last decoded or encoded items
  limits                 - Show decoder limits
  help                   - Show this help
  quit                   - Exit`)
}

func (r *REPL) cmdDecode(args string) {
	data, err := DecodeHex([]byte(args))
	if err != nil {
		fmt.Fprintf(r.out, "Error: %v\n", err)
		return
	}

	var vals []value.Value
	err = eachValue(r.env.Dec.NewDecoder(bytes.NewReader(data)), func(offset int64, v value.Value) error {
		fmt.Fprintf(r.out, "  [%d] %s\n", offset, value.Diag(v))
		vals = append(vals, v)
		return nil
	})
	if err != nil {
		fmt.Fprintf(r.out, "Error: %v\n", err)
	}
	r.last = vals
}

func (r *REPL) cmdEncode(args, format string) {
	if args == "" {
		fmt.Fprintf(r.out, "Usage: %s <document>\n", format)
		return
	}

	docs, err := parseDocuments(&Input{Data: []byte(args)}, format)
	if err != nil {
		fmt.Fprintf(r.out, "Error: %v\n", err)
		return
	}

	var vals []value.Value
	var buf bytes.Buffer
	enc := r.env.Enc.NewEncoder(&buf)
	for _, doc := range docs {
		v, err := value.FromGo(doc)
		if err == nil {
			err = enc.Encode(v)
		}
		if err != nil {
			fmt.Fprintf(r.out, "Error: %v\n", err)
			return
		}
		vals = append(vals, v)
	}

	fmt.Fprintf(r.out, "  %s\n", hex.EncodeToString(buf.Bytes()))
	for _, v := range vals {
		fmt.Fprintf(r.out, "  %s\n", value.Diag(v))
	}
	r.last = vals
}

func (r *REPL) cmdDigest() {
	if len(r.last) == 0 {
		fmt.Fprintln(r.out, "Nothing to digest: decode or encode something first")
		return
	}
	for _, v := range r.last {
		sum, err := digest.Of(v)
		if err != nil {
			fmt.Fprintf(r.out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(r.out, "  %s  %s\n", sum, value.Summary(v))
	}
}

func (r *REPL) cmdLimits() {
	opts := r.env.Dec.DecOptions()
	fmt.Fprintf(r.out, "  max nested levels:  %d\n", opts.MaxNestedLevels)
	fmt.Fprintf(r.out, "  max array elements: %d\n", opts.MaxArrayElements)
	fmt.Fprintf(r.out, "  max map pairs:      %d\n", opts.MaxMapPairs)
	fmt.Fprintf(r.out, "  max string length:  %d\n", opts.MaxStringLen)
}
