package node

import (
	"errors"
	"fmt"

	"struct-mapper/options"
)

// ErrNoInstance reports a target member that had to be created but could not be.
var ErrNoInstance = errors.New("no instance can be created")

// ErrIndexLimit reports a dictionary key whose element index reaches Settings.MaxDictionaryIndex.
var ErrIndexLimit = errors.New("dictionary element index out of bounds")

// MappingError reports a failure at one target member of a running mapping.
type MappingError struct {
	Path    string
	RuleSet options.RuleSet
	Err     error
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("map %s (%s): %v", e.Path, e.RuleSet, e.Err)
}

func (e *MappingError) Unwrap() error {
	return e.Err
}

// failAt wraps err with the path of s unless it already carries one.
func failAt(s *scope, err error) error {
	if err == nil {
		return nil
	}

	var me *MappingError
	if errors.As(err, &me) {
		return err
	}

	return &MappingError{Path: s.Path(), RuleSet: s.call.rs, Err: err}
}
