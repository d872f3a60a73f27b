package mapping

import (
	"errors"
	"strings"

	"go.uber.org/multierr"
)

var (
	ErrCyclicOrder          = errors.New("cyclic After ordering")
	ErrDuplicateName        = errors.New("duplicate data source name")
	ErrUnknownAfter         = errors.New("After names an unknown data source")
	ErrEmptyTargetPath      = errors.New("empty target path")
	ErrInvalidPath          = errors.New("invalid member path")
	ErrNoValue              = errors.New("data source has no value")
	ErrAmbiguousValue       = errors.New("data source has more than one value")
	ErrRedundantSeparator   = errors.New("redundant key separator")
	ErrConflictingSeparator = errors.New("conflicting key separators")
	ErrInvalidSeparator     = errors.New("invalid key separator")
	ErrNegativeDepth        = errors.New("negative max depth")
	ErrMissingType          = errors.New("missing type")
)

// ConfigurationError reports contradictory or cyclic configuration. It is raised before
// any plan compiles and wraps every problem found.
type ConfigurationError struct {
	Err error // multierr combination
}

func (e *ConfigurationError) Error() string {
	errs := multierr.Errors(e.Err)

	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}

	return "mapping configuration: " + strings.Join(msgs, "; ")
}

// Unwrap exposes the individual problems to errors.Is and errors.As.
func (e *ConfigurationError) Unwrap() []error {
	return multierr.Errors(e.Err)
}

// Errors lists the individual problems.
func (e *ConfigurationError) Errors() []error {
	return multierr.Errors(e.Err)
}
