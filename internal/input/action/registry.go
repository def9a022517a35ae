package action

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Registry errors
var (
	ErrDuplicateAction = errors.New("action already registered")
	ErrInvalidAction   = errors.New("invalid action registration")
)

// Registration describes an action for StaticRegistry.
type Registration struct {
	ID       string
	Title    string
	Category string

	// ContextTypes lists the flavors the action applies in. Empty means
	// the action applies everywhere.
	ContextTypes []string

	// Handler runs the action.
	Handler HandlerFunc
}

type registered struct {
	Registration
	enabled bool
}

func (r *registered) ID() string { return r.Registration.ID }

func (r *registered) Execute(ctx context.Context) (bool, error) {
	if r.Handler == nil {
		return false, nil
	}
	return r.Handler(ctx)
}

// StaticRegistry is an in-process Registry. Actions are enabled when
// registered.
type StaticRegistry struct {
	mu      sync.RWMutex
	actions map[string]*registered
	order   []string
}

// NewStaticRegistry creates an empty registry.
func NewStaticRegistry() *StaticRegistry {
	return &StaticRegistry{
		actions: make(map[string]*registered),
	}
}

// Register adds an action.
func (r *StaticRegistry) Register(reg Registration) error {
	if reg.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidAction)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.actions[reg.ID]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateAction, reg.ID)
	}
	r.actions[reg.ID] = &registered{Registration: reg, enabled: true}
	r.order = append(r.order, reg.ID)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *StaticRegistry) MustRegister(reg Registration) {
	if err := r.Register(reg); err != nil {
		panic(err)
	}
}

// SetEnabled enables or disables an action. It returns false for an
// unknown id.
func (r *StaticRegistry) SetEnabled(id string, enabled bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.actions[id]
	if !ok {
		return false
	}
	a.enabled = enabled
	return true
}

// Action returns a registered action by id.
func (r *StaticRegistry) Action(id string) (Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.actions[id]
	if !ok {
		return nil, false
	}
	return a, true
}

// Registration returns the registration of an action.
func (r *StaticRegistry) Registration(id string) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.actions[id]
	if !ok {
		return Registration{}, false
	}
	return a.Registration, true
}

// IDs returns every action id in registration order.
func (r *StaticRegistry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Count returns the number of registered actions.
func (r *StaticRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// ApplicableActions implements Registry. An action applies when it is
// registered, enabled, and either declares no context types or has at
// least one of them among the active flavors.
func (r *StaticRegistry) ApplicableActions(ctx context.Context, ids []string, uictx Context) ([]Action, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if uictx == nil {
		uictx = EmptyContext
	}
	flavors := uictx.Flavors()

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Action
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		a, ok := r.actions[id]
		if !ok || !a.enabled || !applies(a.ContextTypes, flavors) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func applies(contextTypes, flavors []string) bool {
	if len(contextTypes) == 0 {
		return true
	}
	for _, ct := range contextTypes {
		if slices.Contains(flavors, ct) {
			return true
		}
	}
	return false
}
