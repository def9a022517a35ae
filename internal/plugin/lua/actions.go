package lua

import (
	"context"
	"fmt"
	"os"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/keychord/internal/input/action"
)

// LoadActions runs script and returns the actions it registered, in
// registration order. The handlers stay bound to s.
func (s *State) LoadActions(script string) ([]action.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStateClosed
	}

	var regs []action.Registration
	s.loading = &regs
	defer func() { s.loading = nil }()

	err := doWithRecovery(func() error {
		return s.l.DoString(script)
	})
	if err != nil {
		for _, r := range regs {
			delete(s.seen, r.ID)
		}
		return nil, err
	}
	return regs, nil
}

// LoadActionsFile reads and runs a script file.
func (s *State) LoadActionsFile(path string) ([]action.Registration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	regs, err := s.LoadActions(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return regs, nil
}

// luaAction implements keychord.action(id, [opts], fn).
func (s *State) luaAction(l *lua.LState) int {
	if s.loading == nil {
		l.RaiseError("%s", ErrNotLoading.Error())
		return 0
	}

	id := l.CheckString(1)
	if id == "" {
		l.ArgError(1, "action id must not be empty")
		return 0
	}
	if _, dup := s.seen[id]; dup {
		l.RaiseError("action %q registered twice", id)
		return 0
	}

	var opts *lua.LTable
	fnArg := 2
	if l.Get(2).Type() == lua.LTTable {
		opts = l.CheckTable(2)
		fnArg = 3
	}
	fn := l.CheckFunction(fnArg)

	reg := action.Registration{ID: id}
	if opts != nil {
		reg.Title = lua.LVAsString(opts.RawGetString("title"))
		reg.Category = lua.LVAsString(opts.RawGetString("category"))
		if contexts, ok := opts.RawGetString("contexts").(*lua.LTable); ok {
			contexts.ForEach(func(_, v lua.LValue) {
				if str, ok := v.(lua.LString); ok {
					reg.ContextTypes = append(reg.ContextTypes, string(str))
				}
			})
		}
	}
	reg.Handler = func(ctx context.Context) (bool, error) {
		return s.invoke(ctx, id, fn)
	}

	s.seen[id] = struct{}{}
	*s.loading = append(*s.loading, reg)
	return 0
}
