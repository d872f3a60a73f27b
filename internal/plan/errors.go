package plan

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnmappable reports a type pair no strategy can map.
	ErrUnmappable = errors.New("no mapping strategy")
	// ErrIncomplete is wrapped by ValidationError.
	ErrIncomplete = errors.New("incomplete mapping")
)

// ConstructionError reports a target that must be created but cannot be.
type ConstructionError struct {
	Path   string
	Key    Key
	Reason string
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("cannot construct %s for %s: %s", e.Path, e.Key, e.Reason)
}

// ValidationError lists the target members a strict plan leaves unmapped.
type ValidationError struct {
	Key      Key
	Unmapped []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: unmapped %s", ErrIncomplete, e.Key, strings.Join(e.Unmapped, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrIncomplete
}
