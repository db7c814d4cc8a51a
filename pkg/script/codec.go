package script

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/boxlayout/pkg/errors"
)

// Script encodings.
const (
	FormatTOML = "toml"
	FormatJSON = "json"
)

// FormatOf returns the encoding implied by a file name's extension.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "%s: script must be .toml or .json", path)
}

// Decode parses a script and validates it.
func Decode(data []byte, format string) (Script, error) {
	var s Script
	switch format {
	case FormatTOML:
		md, err := toml.Decode(string(data), &s)
		if err != nil {
			return Script{}, errors.Wrap(errors.ErrCodeInvalidScript, err, "decode toml")
		}
		if keys := md.Undecoded(); len(keys) > 0 {
			return Script{}, errors.New(errors.ErrCodeInvalidScript, "unknown key %q", keys[0].String())
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return Script{}, errors.Wrap(errors.ErrCodeInvalidScript, err, "decode json")
		}
	default:
		return Script{}, errors.New(errors.ErrCodeInvalidFormat, "unknown script format %q", format)
	}
	if err := s.Validate(); err != nil {
		return Script{}, err
	}
	return s, nil
}

// Encode serializes a script.
func Encode(s Script, format string) ([]byte, error) {
	switch format {
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(s); err != nil {
			return nil, fmt.Errorf("encode toml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatJSON:
		return json.MarshalIndent(s, "", "  ")
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown script format %q", format)
}

// Load reads a script file, choosing the decoder by extension.
func Load(path string) (Script, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Script{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Script{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s", path)
		}
		return Script{}, fmt.Errorf("read %s: %w", path, err)
	}
	s, err := Decode(data, format)
	if err != nil {
		return Script{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Save writes a script file, choosing the encoder by extension.
func Save(s Script, path string) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := Encode(s, format)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
