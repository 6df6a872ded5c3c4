package commands

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/mash-protocol/cbor-go/pkg/value"
	"github.com/mash-protocol/cbor-go/pkg/wire"
)

// DiagOptions configures the diag command.
type DiagOptions struct {
	// Offsets prefixes each item with its byte offset.
	Offsets bool

	// Reference renders with the fxamacker/cbor diagnostic encoder, which
	// accepts every well-formed item, including ones this codec rejects.
	Reference bool
}

// RunDiag writes the diagnostic notation of each item of the input, one
// per line.
func RunDiag(env *Env, in *Input, opts DiagOptions, w io.Writer) error {
	if err := noArgs("diag", in); err != nil {
		return err
	}
	if len(in.Data) == 0 {
		return errors.New("empty input: expected CBOR data")
	}
	if opts.Reference {
		return referenceDiag(in.Data, opts.Offsets, w)
	}

	return eachValue(env.Dec.NewDecoder(bytes.NewReader(in.Data)), func(offset int64, v value.Value) error {
		if opts.Offsets {
			fmt.Fprintf(w, "%08x: ", offset)
		}
		_, err := fmt.Fprintln(w, value.Diag(v))
		return err
	})
}

// eachValue decodes items until the input ends, calling fn with the
// offset and value of each.
func eachValue(d *wire.Decoder, fn func(offset int64, v value.Value) error) error {
	for count := 0; ; count++ {
		offset := d.Offset()
		v, err := value.Decode(d)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("decode item %d: %w", count, err)
		}
		if err := fn(offset, v); err != nil {
			return err
		}
	}
}

// referenceDiag diagnoses each item with fxamacker/cbor.
func referenceDiag(data []byte, offsets bool, w io.Writer) error {
	remaining := data
	for len(remaining) > 0 {
		offset := len(data) - len(remaining)
		notation, rest, err := cbor.DiagnoseFirst(remaining)
		if err != nil {
			return fmt.Errorf("diagnose CBOR at byte %d: %w", offset, err)
		}
		if offsets {
			fmt.Fprintf(w, "%08x: ", offset)
		}
		if _, err := fmt.Fprintln(w, notation); err != nil {
			return err
		}
		remaining = rest
	}
	return nil
}
