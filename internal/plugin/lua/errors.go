package lua

import "errors"

// Errors for Lua script operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when an action runs past its timeout.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrNotLoading is raised when a script registers an action outside
	// LoadActions.
	ErrNotLoading = errors.New("actions can only be registered while loading")
)
