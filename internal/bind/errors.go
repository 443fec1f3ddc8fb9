package bind

import "errors"

// ErrNoComposer indicates a binder was used without a composer above it.
var ErrNoComposer = errors.New("composer is required")

// PreconditionError reports a setup requirement that was not met.
type PreconditionError struct {
	// Binder names the setup function that failed.
	Binder string
	Err    error
}

func (e *PreconditionError) Error() string {
	return e.Binder + ": " + e.Err.Error()
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}
