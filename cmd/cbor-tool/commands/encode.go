package commands

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mash-protocol/cbor-go/pkg/value"
)

// EncodeOptions configures the encode command.
type EncodeOptions struct {
	// Format is json or yaml. Empty selects by file extension, then by
	// the first character of the input.
	Format string

	// Hex writes hex text instead of binary.
	Hex bool
}

// RunEncode converts JSON or YAML documents to CBOR. Several documents
// (a JSON stream or a multi-document YAML file) become a CBOR sequence.
// Map keys are written in canonical order.
func RunEncode(env *Env, in *Input, opts EncodeOptions, w io.Writer) error {
	if err := noArgs("encode", in); err != nil {
		return err
	}
	if len(bytes.TrimSpace(in.Data)) == 0 {
		return errors.New("empty input: expected JSON or YAML data")
	}

	docs, err := parseDocuments(in, opts.Format)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := env.Enc.NewEncoder(&buf)
	for i, doc := range docs {
		v, err := value.FromGo(doc)
		if err != nil {
			return fmt.Errorf("document %d: %w", i, err)
		}
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode document %d: %w", i, err)
		}
	}

	if opts.Hex {
		_, err = fmt.Fprintln(w, hex.EncodeToString(buf.Bytes()))
		return err
	}
	_, err = w.Write(buf.Bytes())
	return err
}

func inputFormat(in *Input, format string) (string, error) {
	switch strings.ToLower(format) {
	case "json":
		return "json", nil
	case "yaml", "yml":
		return "yaml", nil
	case "":
	default:
		return "", fmt.Errorf("unknown format: %s (supported: json, yaml)", format)
	}

	switch strings.ToLower(filepath.Ext(in.Name)) {
	case ".json":
		return "json", nil
	case ".yaml", ".yml":
		return "yaml", nil
	}
	if trimmed := bytes.TrimSpace(in.Data); trimmed[0] == '{' || trimmed[0] == '[' {
		return "json", nil
	}
	return "yaml", nil
}

func parseDocuments(in *Input, format string) ([]any, error) {
	format, err := inputFormat(in, format)
	if err != nil {
		return nil, err
	}

	var docs []any
	if format == "json" {
		dec := json.NewDecoder(bytes.NewReader(in.Data))
		dec.UseNumber()
		for {
			var doc any
			if err := dec.Decode(&doc); errors.Is(err, io.EOF) {
				return docs, nil
			} else if err != nil {
				return nil, fmt.Errorf("decode JSON: %w", err)
			}
			docs = append(docs, doc)
		}
	}

	dec := yaml.NewDecoder(bytes.NewReader(in.Data))
	for {
		var doc any
		if err := dec.Decode(&doc); errors.Is(err, io.EOF) {
			return docs, nil
		} else if err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
		docs = append(docs, doc)
	}
}
