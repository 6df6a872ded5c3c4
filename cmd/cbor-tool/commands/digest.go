package commands

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mash-protocol/cbor-go/pkg/digest"
	"github.com/mash-protocol/cbor-go/pkg/value"
)

// DigestOptions configures the digest command.
type DigestOptions struct {
	// Size is the digest length in bytes, 1 to 64. Zero means digest.Size.
	Size int

	// Key is a hex MAC key. It requires the default size.
	Key string

	// Check is an expected digest. With Check set the input must hold
	// exactly one item.
	Check string
}

// RunDigest prints a digest of the canonical encoding of each input item,
// followed by a summary of the item.
func RunDigest(env *Env, in *Input, opts DigestOptions, w io.Writer) error {
	if err := noArgs("digest", in); err != nil {
		return err
	}
	if len(in.Data) == 0 {
		return errors.New("empty input: expected CBOR data")
	}

	sum, err := digester(opts)
	if err != nil {
		return err
	}

	var vals []value.Value
	err = eachValue(env.Dec.NewDecoder(bytes.NewReader(in.Data)), func(_ int64, v value.Value) error {
		vals = append(vals, v)
		return nil
	})
	if err != nil {
		return err
	}

	if opts.Check != "" {
		return checkDigest(vals, sum, opts.Check, w)
	}
	for _, v := range vals {
		s, err := sum(v)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s  %s\n", s, value.Summary(v)); err != nil {
			return err
		}
	}
	return nil
}

func checkDigest(vals []value.Value, sum func(value.Value) (string, error), want string, w io.Writer) error {
	if len(vals) != 1 {
		return fmt.Errorf("--check needs exactly one item, got %d", len(vals))
	}
	if _, err := hex.DecodeString(want); err != nil {
		return fmt.Errorf("invalid digest: %w", err)
	}
	got, err := sum(vals[0])
	if err != nil {
		return err
	}
	if got != strings.ToLower(want) {
		return fmt.Errorf("digest mismatch: got %s", got)
	}
	_, err = fmt.Fprintln(w, "OK")
	return err
}

// digester returns the hex digest function selected by opts.
func digester(opts DigestOptions) (func(value.Value) (string, error), error) {
	size := opts.Size
	if size == 0 {
		size = digest.Size
	}
	if size < 1 || size > 64 {
		return nil, fmt.Errorf("invalid digest size %d (must be 1 to 64)", size)
	}

	if opts.Key != "" {
		if size != digest.Size {
			return nil, fmt.Errorf("--key requires the default size %d", digest.Size)
		}
		key, err := hex.DecodeString(opts.Key)
		if err != nil {
			return nil, fmt.Errorf("invalid key: %w", err)
		}
		return func(v value.Value) (string, error) {
			s, err := digest.Keyed(key, v)
			return s.String(), err
		}, nil
	}

	if size == digest.Size {
		return func(v value.Value) (string, error) {
			s, err := digest.Of(v)
			return s.String(), err
		}, nil
	}
	return func(v value.Value) (string, error) {
		b, err := digest.Sized(size, v)
		return hex.EncodeToString(b), err
	}, nil
}
