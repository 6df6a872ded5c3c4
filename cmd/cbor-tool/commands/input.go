package commands

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode"
)

// Input is the data a command operates on.
type Input struct {
	// Data is the raw (binary) input.
	Data []byte

	// Name is the file path, or "stdin".
	Name string

	// Args are the positional arguments left after the file path.
	Args []string
}

// ReadInput resolves input data from a file (the last element of args, if
// it names a regular file) or from stdin. When hexMode is set the input is
// hex with optional whitespace between digit pairs.
func ReadInput(args []string, stdin io.Reader, hexMode bool) (*Input, error) {
	in := &Input{Name: "stdin", Args: args}

	if n := len(args); n > 0 {
		candidate := args[n-1]
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			in.Data, err = os.ReadFile(candidate)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", candidate, err)
			}
			in.Name = candidate
			in.Args = args[:n-1]
		}
	}

	if in.Data == nil {
		var err error
		in.Data, err = io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
	}

	if hexMode {
		decoded, err := DecodeHex(in.Data)
		if err != nil {
			return nil, err
		}
		in.Data = decoded
	}

	return in, nil
}

// DecodeHex strips whitespace from hex input and decodes it
// (e.g., "a1 63 6b 65 79" or "a1636b6579").
func DecodeHex(data []byte) ([]byte, error) {
	cleaned := bytes.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, data)

	if len(cleaned) == 0 {
		return nil, errors.New("empty input after stripping whitespace from hex")
	}

	decoded := make([]byte, hex.DecodedLen(len(cleaned)))
	n, err := hex.Decode(decoded, cleaned)
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	return decoded[:n], nil
}

// noArgs rejects positional arguments besides the input file.
func noArgs(cmd string, in *Input) error {
	if len(in.Args) > 0 {
		return fmt.Errorf("%s takes no positional arguments besides an optional file path, got %q", cmd, in.Args[0])
	}
	return nil
}
