package conformance

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseSuite parses a suite from YAML bytes.
func ParseSuite(data []byte) (*Suite, error) {
	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, &LoadError{
			Message: "failed to parse YAML",
			Cause:   err,
		}
	}

	if s.Name == "" {
		return nil, &LoadError{Message: "suite name is required"}
	}
	if len(s.Vectors) == 0 {
		return nil, &LoadError{Message: "suite must have at least one vector"}
	}

	seen := make(map[string]bool, len(s.Vectors))
	for i, v := range s.Vectors {
		id := v.ID
		if id == "" {
			id = fmt.Sprintf("#%d", i+1)
		}
		if err := validateVector(v); err != nil {
			return nil, &LoadError{Vector: id, Message: err.Error()}
		}
		if seen[v.ID] {
			return nil, &LoadError{Vector: id, Message: "duplicate id"}
		}
		seen[v.ID] = true
	}

	return &s, nil
}

func validateVector(v *Vector) error {
	if v.ID == "" {
		return errors.New("id is required")
	}
	if _, err := v.Bytes(); err != nil {
		return fmt.Errorf("invalid hex: %w", err)
	}
	if v.Diag == "" && v.Error == "" && v.Skip == "" {
		return errors.New("one of diag or error is required")
	}
	if v.Error != "" && (v.Diag != "" || v.Roundtrip || v.EncodeError != "") {
		return errors.New("error excludes diag, roundtrip and encode_error")
	}
	if v.Roundtrip && v.EncodeError != "" {
		return errors.New("roundtrip excludes encode_error")
	}
	return nil
}

// Bytes returns the decoded input.
func (v *Vector) Bytes() ([]byte, error) {
	return hex.DecodeString(strings.Join(strings.Fields(v.Hex), ""))
}

// LoadSuite loads a suite from a file.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: "failed to read file",
			Cause:   err,
		}
	}

	s, err := ParseSuite(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = path
			return nil, le
		}
		return nil, &LoadError{File: path, Message: err.Error()}
	}

	return s, nil
}

// LoadDirectory loads all suites from a directory.
// Only files with .yaml or .yml extensions are loaded.
func LoadDirectory(dir string) ([]*Suite, error) {
	var suites []*Suite

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{
			File:    dir,
			Message: "failed to read directory",
			Cause:   err,
		}
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		s, err := LoadSuite(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		suites = append(suites, s)
	}

	return suites, nil
}

// Load loads a single suite file or every suite in a directory.
func Load(path string) ([]*Suite, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{File: path, Message: "failed to stat", Cause: err}
	}
	if info.IsDir() {
		return LoadDirectory(path)
	}
	s, err := LoadSuite(path)
	if err != nil {
		return nil, err
	}
	return []*Suite{s}, nil
}
