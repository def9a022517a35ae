package lua

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/keychord/internal/input/action"
)

// DefaultExecutionTimeout bounds a single action invocation.
const DefaultExecutionTimeout = 5 * time.Second

// State is a sandboxed Lua interpreter hosting scripted actions.
//
// gopher-lua's LState is not goroutine-safe. Every call into the
// interpreter, including action handlers, holds the state's mutex.
type State struct {
	mu     sync.Mutex
	l      *lua.LState
	closed bool

	timeout time.Duration
	logger  zerolog.Logger

	// loading collects registrations while LoadActions runs a script.
	loading *[]action.Registration
	seen    map[string]struct{}
}

// StateOption configures a State.
type StateOption func(*State)

// WithExecutionTimeout sets the timeout for one action invocation.
func WithExecutionTimeout(d time.Duration) StateOption {
	return func(s *State) {
		s.timeout = d
	}
}

// WithLogger sets the logger used by print.
func WithLogger(l zerolog.Logger) StateOption {
	return func(s *State) {
		s.logger = l
	}
}

// NewState creates a Lua state with the keychord module installed.
func NewState(opts ...StateOption) *State {
	s := &State{
		timeout: DefaultExecutionTimeout,
		logger:  zerolog.Nop(),
		seen:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.l = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(s.l)
	s.l.SetGlobal("print", s.l.NewFunction(s.luaPrint))

	mod := s.l.SetFuncs(s.l.NewTable(), map[string]lua.LGFunction{
		"action": s.luaAction,
	})
	s.l.SetGlobal("keychord", mod)
	return s
}

// openSafeLibraries opens the libraries that cannot reach the host.
func openSafeLibraries(l *lua.LState) {
	lua.OpenBase(l)
	lua.OpenTable(l)
	lua.OpenString(l)
	lua.OpenMath(l)

	// OpenBase also installs loaders for files on disk.
	l.SetGlobal("dofile", lua.LNil)
	l.SetGlobal("loadfile", lua.LNil)
}

// DoString executes a chunk of Lua code.
func (s *State) DoString(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}
	return doWithRecovery(func() error {
		return s.l.DoString(code)
	})
}

// GetGlobal returns a global variable value.
func (s *State) GetGlobal(name string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return lua.LNil
	}
	return s.l.GetGlobal(name)
}

func doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// invoke calls a handler with a context table built from ctx.
func (s *State) invoke(ctx context.Context, id string, fn *lua.LFunction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, ErrStateClosed
	}

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	s.l.SetContext(runCtx)
	defer s.l.RemoveContext()

	arg := s.l.NewTable()
	flavors := s.l.NewTable()
	for _, f := range action.UIContext(ctx).Flavors() {
		flavors.Append(lua.LString(f))
	}
	arg.RawSetString("flavors", flavors)
	arg.RawSetString("action", lua.LString(id))

	top := s.l.GetTop()
	err := doWithRecovery(func() error {
		return s.l.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, arg)
	})
	if err != nil {
		s.l.SetTop(top)
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return false, fmt.Errorf("%w: %w", ErrExecutionTimeout, err)
		}
		return false, err
	}

	ret := s.l.Get(-1)
	s.l.SetTop(top)
	return lua.LVAsBool(ret), nil
}

func (s *State) luaPrint(l *lua.LState) int {
	n := l.GetTop()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, l.ToStringMeta(l.Get(i)).String())
	}
	s.logger.Info().Str("source", "lua").Msg(strings.Join(parts, "\t"))
	return 0
}

// IsClosed returns true if the state has been closed.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases the interpreter. Actions registered from this state
// return ErrStateClosed afterwards.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.l.Close()
	s.closed = true
	return nil
}
