package mapping

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// NoIndex marks a path segment without a fixed element index.
const NoIndex = -1

// PathSegment represents a parsed segment of a member path.
type PathSegment struct {
	// Name is the member name.
	Name string

	// IsSlice indicates this segment accesses collection elements ("Items[]" or "Items[2]").
	IsSlice bool

	// Index is the fixed element index of "Items[2]", NoIndex otherwise.
	Index int
}

// FieldPath represents a parsed member path like "Items[].ProductID".
type FieldPath struct {
	Segments []PathSegment
}

// ParsePath parses a member path string into a FieldPath.
// Supports: "Field", "Nested.Field", "Items[]", "Items[0]", "Items[].ProductID".
func ParsePath(path string) (FieldPath, error) {
	if path == "" {
		return FieldPath{}, errors.New("empty path")
	}

	var segments []PathSegment

	for part := range strings.SplitSeq(path, ".") {
		if part == "" {
			return FieldPath{}, fmt.Errorf("invalid path %q: empty segment", path)
		}

		seg := PathSegment{Name: part, Index: NoIndex}

		if open := strings.IndexByte(part, '['); open >= 0 {
			if !strings.HasSuffix(part, "]") {
				return FieldPath{}, fmt.Errorf("invalid path %q: unterminated index in %q", path, part)
			}

			seg.Name = part[:open]
			seg.IsSlice = true

			if index := part[open+1 : len(part)-1]; index != "" {
				n, err := strconv.Atoi(index)
				if err != nil || n < 0 {
					return FieldPath{}, fmt.Errorf("invalid path %q: bad index %q", path, index)
				}

				seg.Index = n
			}

			if seg.Name == "" {
				return FieldPath{}, fmt.Errorf("invalid path %q: index without member name", path)
			}
		}

		if !isValidIdent(seg.Name) {
			return FieldPath{}, fmt.Errorf("invalid path %q: invalid identifier %q", path, seg.Name)
		}

		segments = append(segments, seg)
	}

	return FieldPath{Segments: segments}, nil
}

// String returns the path as a string.
func (p FieldPath) String() string {
	var sb strings.Builder

	for i, seg := range p.Segments {
		if i > 0 {
			sb.WriteByte('.')
		}

		sb.WriteString(seg.Name)

		switch {
		case seg.Index != NoIndex:
			sb.WriteString("[" + strconv.Itoa(seg.Index) + "]")
		case seg.IsSlice:
			sb.WriteString("[]")
		}
	}

	return sb.String()
}

// Generic renders the path with fixed indexes widened to "[]".
func (p FieldPath) Generic() string {
	generic := FieldPath{Segments: make([]PathSegment, len(p.Segments))}
	for i, seg := range p.Segments {
		seg.Index = NoIndex
		generic.Segments[i] = seg
	}

	return generic.String()
}

// IsSimple returns true if this is a single member path (no nesting, no elements).
func (p FieldPath) IsSimple() bool {
	return len(p.Segments) == 1 && !p.Segments[0].IsSlice
}

// Root returns the first segment's member name.
func (p FieldPath) Root() string {
	if len(p.Segments) == 0 {
		return ""
	}

	return p.Segments[0].Name
}

// IsEmpty returns true if the path has no segments.
func (p FieldPath) IsEmpty() bool {
	return len(p.Segments) == 0
}

// Equals returns true if two paths are equal.
func (p FieldPath) Equals(other FieldPath) bool {
	if len(p.Segments) != len(other.Segments) {
		return false
	}

	for i, seg := range p.Segments {
		if seg != other.Segments[i] {
			return false
		}
	}

	return true
}

// NormalizePath parses and re-renders path, or returns it unchanged when it does not parse.
func NormalizePath(path string) string {
	fp, err := ParsePath(path)
	if err != nil {
		return path
	}

	return fp.String()
}

// isValidIdent checks if a string is a valid Go identifier.
func isValidIdent(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			// First character must be letter or underscore
			if !isLetter(r) && r != '_' {
				return false
			}
		} else if !isLetter(r) && !isDigit(r) && r != '_' {
			return false
		}
	}

	return true
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
