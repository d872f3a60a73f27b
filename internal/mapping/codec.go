package mapping

import (
	"encoding/json"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// StringArray is a string list that can be written as a single string or a list,
// in every supported file format.
type StringArray []string

// UnmarshalYAML accepts either a single string or an array of strings.
func (s *StringArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string
		if err := node.Decode(&str); err != nil {
			return err
		}

		*s = single(str)

		return nil

	case yaml.SequenceNode:
		var arr []string
		if err := node.Decode(&arr); err != nil {
			return err
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("expected string or array, got %v", node.Kind)
	}
}

// MarshalYAML outputs a single string if length is 1, otherwise an array.
func (s StringArray) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}

	return []string(s), nil
}

// UnmarshalJSON accepts either a single string or an array of strings.
func (s *StringArray) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = single(str)
		return nil
	}

	var arr []string
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("expected string or array: %w", err)
	}

	*s = arr

	return nil
}

// UnmarshalTOML accepts either a single string or an array of strings.
func (s *StringArray) UnmarshalTOML(v any) error {
	switch val := v.(type) {
	case string:
		*s = single(val)
	case []any:
		arr := make([]string, len(val))

		for i, item := range val {
			str, ok := item.(string)
			if !ok {
				return fmt.Errorf("expected string in array, got %T", item)
			}

			arr[i] = str
		}

		*s = arr
	default:
		return fmt.Errorf("expected string or array, got %T", v)
	}

	return nil
}

func single(s string) StringArray {
	if s == "" {
		return StringArray{}
	}

	return StringArray{s}
}

// Contains returns true if the array contains the given string.
func (s StringArray) Contains(str string) bool {
	return slices.Contains(s, str)
}
