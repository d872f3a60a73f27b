package mapping

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

// Format is a mapping file encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatTOML
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatJSON:
		return "json"
	default:
		return "yaml"
	}
}

// ErrUnknownFormat is returned for file extensions no decoder handles.
var ErrUnknownFormat = errors.New("unknown mapping file format")

// FormatOf picks the format from a file extension: .yaml/.yml, .toml, .json/.jsonc/.hujson.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json", ".jsonc", ".hujson":
		return FormatJSON, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// LoadFile loads and parses a mapping file, choosing the decoder by extension.
func LoadFile(path string) (*MappingFile, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file %s: %w", path, err)
	}

	mf, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return mf, nil
}

// Parse decodes data in the given format. Unknown keys are errors.
func Parse(data []byte, format Format) (*MappingFile, error) {
	var mf MappingFile

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)

		if err := dec.Decode(&mf); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse mapping YAML: %w", err)
		}

	case FormatTOML:
		md, err := toml.Decode(string(data), &mf)
		if err != nil {
			return nil, fmt.Errorf("failed to parse mapping TOML: %w", err)
		}

		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("failed to parse mapping TOML: unknown keys %v", undecoded)
		}

	case FormatJSON:
		standard, err := hujson.Standardize(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse mapping JSON: %w", err)
		}

		dec := json.NewDecoder(bytes.NewReader(standard))
		dec.DisallowUnknownFields()

		if err := dec.Decode(&mf); err != nil {
			return nil, fmt.Errorf("failed to parse mapping JSON: %w", err)
		}

	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, format)
	}

	applyDefaults(&mf)

	return &mf, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(mf *MappingFile) {
	if mf.Version == "" {
		mf.Version = "1"
	}
}

// Marshal serializes a MappingFile to canonical YAML.
func Marshal(mf *MappingFile) ([]byte, error) {
	return MarshalFormat(mf, FormatYAML)
}

// MarshalFormat serializes a MappingFile in the given format.
func MarshalFormat(mf *MappingFile, format Format) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)

		if err := enc.Encode(mf); err != nil {
			return nil, err
		}

		if err := enc.Close(); err != nil {
			return nil, err
		}

	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(mf); err != nil {
			return nil, err
		}

	case FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")

		if err := enc.Encode(mf); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, format)
	}

	return buf.Bytes(), nil
}

// WriteFile writes a MappingFile to path, encoded by its extension.
func WriteFile(mf *MappingFile, path string) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}

	data, err := MarshalFormat(mf, format)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write mapping file %s: %w", path, err)
	}

	return nil
}

// NormalizeTypeMapping expands 121 shorthand into Fields entries, sorted by target,
// and canonicalizes member paths.
func NormalizeTypeMapping(tm *TypeMapping) {
	if len(tm.OneToOne) > 0 {
		expanded := make([]FieldMapping, 0, len(tm.OneToOne))

		for _, pair := range tm.sortedOneToOne() {
			expanded = append(expanded, FieldMapping{Source: pair[0], Target: pair[1]})
		}

		// 121 has highest priority, so it goes first
		tm.Fields = append(expanded, tm.Fields...)
		tm.OneToOne = nil
	}

	for _, fields := range [][]FieldMapping{tm.Fields, tm.Auto} {
		for i := range fields {
			fields[i].Target = NormalizePath(fields[i].Target)
			if fields[i].Source != "" {
				fields[i].Source = NormalizePath(fields[i].Source)
			}
		}
	}

	for i, path := range tm.Ignore {
		tm.Ignore[i] = NormalizePath(path)
	}
}

// NormalizeMappingFile normalizes all type mappings in a file.
func NormalizeMappingFile(mf *MappingFile) {
	applyDefaults(mf)

	for i := range mf.TypeMappings {
		NormalizeTypeMapping(&mf.TypeMappings[i])
	}
}
