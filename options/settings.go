package options

import (
	"fmt"

	"dario.cat/mergo"
)

// DefaultSeparator joins member names in flattened dictionary keys.
const DefaultSeparator = "."

// DefaultMaxDictionaryIndex bounds element indices read from dictionary keys such as
// "Lines[3].Sku".
const DefaultMaxDictionaryIndex = 10_000

// Settings are engine-wide knobs. Zero values in an overlay inherit the base value.
type Settings struct {
	// MaxRecursionDepth bounds runtime expansion of recursive members. Zero means unbounded.
	MaxRecursionDepth int `yaml:"max_recursion_depth,omitempty" toml:"max_recursion_depth,omitempty" json:"max_recursion_depth,omitempty"`
	// ValidateOnCompile fails plan compilation when target members stay unmapped.
	ValidateOnCompile bool `yaml:"validate_on_compile,omitempty" toml:"validate_on_compile,omitempty" json:"validate_on_compile,omitempty"`
	// Culture is a BCP 47 tag; empty means the process culture.
	Culture string `yaml:"culture,omitempty" toml:"culture,omitempty" json:"culture,omitempty"`
	// StrictNumeric reports numeric overflow as an error.
	StrictNumeric bool `yaml:"strict_numeric,omitempty" toml:"strict_numeric,omitempty" json:"strict_numeric,omitempty"`
	// LenientParsing maps unparseable strings to zero values.
	LenientParsing bool `yaml:"lenient_parsing,omitempty" toml:"lenient_parsing,omitempty" json:"lenient_parsing,omitempty"`
	// Conversions lists enabled conversion categories by name.
	Conversions []string `yaml:"conversions,omitempty" toml:"conversions,omitempty" json:"conversions,omitempty"`
	// Separator joins nested member names in flattened keys.
	Separator string `yaml:"separator,omitempty" toml:"separator,omitempty" json:"separator,omitempty"`
	// MapNullCollectionsToNull keeps nil source collections nil instead of empty.
	MapNullCollectionsToNull bool `yaml:"map_null_collections_to_null,omitempty" toml:"map_null_collections_to_null,omitempty" json:"map_null_collections_to_null,omitempty"`
	// MaxDictionaryIndex is the exclusive upper bound of element indices in dictionary keys.
	// Zero means DefaultMaxDictionaryIndex.
	MaxDictionaryIndex int `yaml:"max_dictionary_index,omitempty" toml:"max_dictionary_index,omitempty" json:"max_dictionary_index,omitempty"`
	// DisableObjectTracking maps repeated source instances independently.
	DisableObjectTracking bool `yaml:"disable_object_tracking,omitempty" toml:"disable_object_tracking,omitempty" json:"disable_object_tracking,omitempty"`
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Settings {
	return Settings{
		Separator:          DefaultSeparator,
		Conversions:        []string{"all"},
		MaxDictionaryIndex: DefaultMaxDictionaryIndex,
	}
}

// Merge returns s with every non-zero field of overlay applied on top.
func (s Settings) Merge(overlay Settings) (Settings, error) {
	merged := s
	merged.Conversions = append([]string(nil), s.Conversions...)

	if err := mergo.Merge(&merged, overlay, mergo.WithOverride); err != nil {
		return s, fmt.Errorf("merge settings: %w", err)
	}

	return merged, nil
}
