// Package action defines the actions a shortcut can trigger and the
// registry that decides which of them apply in the current UI context.
package action

import (
	"context"
)

// Action is a command that can be triggered by a shortcut.
type Action interface {
	// ID returns the action identifier bindings refer to.
	ID() string

	// Execute runs the action. It returns true if the action handled the
	// invocation, which stops the dispatcher from trying later actions.
	Execute(ctx context.Context) (bool, error)
}

// Context exposes the active UI flavor tokens.
type Context interface {
	Flavors() []string
}

// Registry selects the applicable actions among candidate ids.
type Registry interface {
	// ApplicableActions returns the actions among ids that are enabled and
	// apply in uictx, in the order of ids. Unknown ids are skipped.
	ApplicableActions(ctx context.Context, ids []string, uictx Context) ([]Action, error)
}

// Lister is implemented by registries that can enumerate their actions.
type Lister interface {
	IDs() []string
}

// HandlerFunc is the body of an action.
type HandlerFunc func(ctx context.Context) (bool, error)

type funcAction struct {
	id string
	fn HandlerFunc
}

// Func adapts a function to the Action interface.
func Func(id string, fn HandlerFunc) Action {
	return &funcAction{id: id, fn: fn}
}

func (a *funcAction) ID() string { return a.id }

func (a *funcAction) Execute(ctx context.Context) (bool, error) {
	if a.fn == nil {
		return false, nil
	}
	return a.fn(ctx)
}

type emptyContext struct{}

func (emptyContext) Flavors() []string { return nil }

// EmptyContext has no active flavors.
var EmptyContext Context = emptyContext{}

type uiContextKey struct{}

// WithUIContext returns a copy of ctx carrying uictx, so that actions
// can inspect the flavors that made them applicable.
func WithUIContext(ctx context.Context, uictx Context) context.Context {
	return context.WithValue(ctx, uiContextKey{}, uictx)
}

// UIContext returns the UI context stored in ctx, or EmptyContext.
func UIContext(ctx context.Context) Context {
	if uictx, ok := ctx.Value(uiContextKey{}).(Context); ok && uictx != nil {
		return uictx
	}
	return EmptyContext
}
