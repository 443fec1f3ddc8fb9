// Package app runs scripted editing sessions against a mounted composer.
package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrEmptyStep indicates a script step with no action.
	ErrEmptyStep = errors.New("step has no action")

	// ErrAmbiguousStep indicates a script step with more than one action.
	ErrAmbiguousStep = errors.New("step has more than one action")

	// ErrSelectionOutOfRange indicates a select step outside the document.
	ErrSelectionOutOfRange = errors.New("selection out of range")

	// ErrUnknownFormat indicates an unknown text format name.
	ErrUnknownFormat = errors.New("unknown text format")
)

// OperationError represents an error that occurred while running one step.
type OperationError struct {
	Op     string // Step action (e.g., "type", "select")
	Target string // Step position (e.g., "step 3")
	Err    error  // Underlying error
}

// NewOperationError creates a new OperationError.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{
		Op:     op,
		Target: target,
		Err:    err,
	}
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}

	msg := e.Op
	if e.Target != "" {
		msg = fmt.Sprintf("%s %s", e.Target, e.Op)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ComponentError represents a failure to set up one part of a session.
type ComponentError struct {
	Component string // Component name (e.g., "config", "entity hashtag")
	Err       error  // Underlying error
}

// NewComponentError creates a new ComponentError.
func NewComponentError(component string, err error) *ComponentError {
	return &ComponentError{Component: component, Err: err}
}

func (e *ComponentError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Component, e.Err)
	}
	return e.Component
}

func (e *ComponentError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
