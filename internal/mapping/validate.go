package mapping

import (
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/multierr"

	"struct-mapper/internal/analyze"
	"struct-mapper/internal/common"
)

// Validate checks the configuration for contradictions: duplicate or unknown names,
// cyclic After ordering, malformed paths, data sources without exactly one value,
// redundant or conflicting separators. All problems are returned in one ConfigurationError.
func (s *Store) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var errs error

	errs = multierr.Append(errs, s.validateDataSources())
	errs = multierr.Append(errs, s.validateIgnores())
	errs = multierr.Append(errs, s.validateSeparators())

	for _, t := range sortedTypes(s.recursion) {
		if s.recursion[t].MaxDepth < 0 {
			errs = multierr.Append(errs, fmt.Errorf("%w: %s", ErrNegativeDepth, analyze.TypeString(t)))
		}
	}

	for _, d := range s.derived {
		if d.Target == nil || d.Concrete == nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: derived pair needs target and concrete types", ErrMissingType))
		}
	}

	if errs == nil {
		return nil
	}

	return &ConfigurationError{Err: errs}
}

func (s *Store) validateDataSources() error {
	var errs error

	names := make(map[string]int, len(s.dataSources))

	for i, d := range s.dataSources {
		where := describeEntry(d.TargetType, d.TargetPath, d.Name)

		if d.TargetType == nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: %s", ErrMissingType, where))
		}

		errs = multierr.Append(errs, checkPath(d.TargetPath, where))

		values := 0
		for _, set := range []bool{d.SourcePath != "", d.Value != nil, d.HasConstant} {
			if set {
				values++
			}
		}

		switch {
		case values == 0:
			errs = multierr.Append(errs, fmt.Errorf("%w: %s", ErrNoValue, where))
		case values > 1:
			errs = multierr.Append(errs, fmt.Errorf("%w: %s", ErrAmbiguousValue, where))
		}

		if d.SourcePath != "" {
			if _, err := ParsePath(d.SourcePath); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%w: %s: source: %w", ErrInvalidPath, where, err))
			}
		}

		if d.Name == "" {
			continue
		}

		if _, dup := names[d.Name]; dup {
			errs = multierr.Append(errs, fmt.Errorf("%w: %q", ErrDuplicateName, d.Name))
			continue
		}

		names[d.Name] = i
	}

	for _, d := range s.dataSources {
		for _, after := range d.After {
			if _, ok := names[after]; !ok {
				errs = multierr.Append(errs, fmt.Errorf("%w: %s after %q", ErrUnknownAfter, describeEntry(d.TargetType, d.TargetPath, d.Name), after))
			}
		}
	}

	_, cyclic, err := common.TopoSort(len(s.dataSources), func(i int) []int {
		var deps []int

		for _, after := range s.dataSources[i].After {
			if j, ok := names[after]; ok {
				deps = append(deps, j)
			}
		}

		return deps
	})
	if err != nil {
		involved := make([]string, len(cyclic))
		for i, idx := range cyclic {
			involved[i] = describeEntry(s.dataSources[idx].TargetType, s.dataSources[idx].TargetPath, s.dataSources[idx].Name)
		}

		errs = multierr.Append(errs, fmt.Errorf("%w: %s", ErrCyclicOrder, strings.Join(involved, ", ")))
	}

	return errs
}

func (s *Store) validateIgnores() error {
	var errs error

	for _, i := range s.ignores {
		where := describeEntry(i.TargetType, i.TargetPath, "ignore")

		if i.TargetType == nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: %s", ErrMissingType, where))
		}

		errs = multierr.Append(errs, checkPath(i.TargetPath, where))
	}

	return errs
}

func (s *Store) validateSeparators() error {
	var errs error

	seen := make(map[pairKey]string, len(s.separators))

	for _, e := range s.separators {
		where := analyze.TypeString(e.pair.source) + " -> " + analyze.TypeString(e.pair.target)

		switch {
		case e.separator == "" || strings.ContainsAny(e.separator, "[]"):
			errs = multierr.Append(errs, fmt.Errorf("%w: %q for %s", ErrInvalidSeparator, e.separator, where))
		case e.separator == s.settings.Separator:
			errs = multierr.Append(errs, fmt.Errorf("%w: %q for %s is already the default", ErrRedundantSeparator, e.separator, where))
		}

		if previous, ok := seen[e.pair]; ok {
			if previous == e.separator {
				errs = multierr.Append(errs, fmt.Errorf("%w: %q set twice for %s", ErrRedundantSeparator, e.separator, where))
			} else {
				errs = multierr.Append(errs, fmt.Errorf("%w: %q and %q for %s", ErrConflictingSeparator, previous, e.separator, where))
			}
		}

		seen[e.pair] = e.separator
	}

	return errs
}

func checkPath(path, where string) error {
	if path == "" {
		return fmt.Errorf("%w: %s", ErrEmptyTargetPath, where)
	}

	if _, err := ParsePath(path); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidPath, where, err)
	}

	return nil
}

func describeEntry(target reflect.Type, path, name string) string {
	where := analyze.TypeString(target) + "." + path
	if name != "" {
		where += " (" + name + ")"
	}

	return where
}
