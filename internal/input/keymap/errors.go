package keymap

import (
	"errors"
	"fmt"
)

// BindingError describes a declaration that could not be parsed.
type BindingError struct {
	// Source is the file the declaration came from, if any.
	Source string
	// Index is the position of the declaration in its source.
	Index int
	// ActionID and Shortcut are copied from the declaration.
	ActionID string
	Shortcut string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *BindingError) Error() string {
	where := fmt.Sprintf("binding #%d", e.Index)
	if e.Source != "" {
		where = e.Source + ": " + where
	}
	return fmt.Sprintf("%s (%s %q): %v", where, e.ActionID, e.Shortcut, e.Err)
}

// Unwrap returns the underlying error.
func (e *BindingError) Unwrap() error {
	return e.Err
}

// LoadError represents an error while reading a binding file.
type LoadError struct {
	// Path is the file that failed to load.
	Path string
	// Line and Column locate the error when the decoder reports it.
	Line   int
	Column int
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("load %s at line %d, column %d: %v", e.Path, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// BindingErrors returns the *BindingError values in err, which is
// usually the joined error of BuildFromDeclarations.
func BindingErrors(err error) []*BindingError {
	if err == nil {
		return nil
	}

	var out []*BindingError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, BindingErrors(e)...)
		}
		return out
	}

	var be *BindingError
	if errors.As(err, &be) {
		out = append(out, be)
	}
	return out
}
