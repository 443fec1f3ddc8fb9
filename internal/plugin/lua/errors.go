package lua

import "errors"

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when a call runs past its timeout.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrNoMatchFunc is returned when a script does not define match.
	ErrNoMatchFunc = errors.New("script does not define match")

	// ErrBadResult is returned when match returns bounds outside the text.
	ErrBadResult = errors.New("match returned invalid bounds")
)
