// Package app assembles keychord: configuration, platform, binding
// index, action registry and dispatcher, and rebuilds the index when the
// binding files change.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dshills/keychord/internal/config"
	"github.com/dshills/keychord/internal/config/watcher"
	"github.com/dshills/keychord/internal/input"
	"github.com/dshills/keychord/internal/input/action"
	"github.com/dshills/keychord/internal/input/keymap"
	"github.com/dshills/keychord/internal/input/platform"
	"github.com/dshills/keychord/internal/logging"
	"github.com/dshills/keychord/internal/plugin/lua"
)

// ErrInvalidBindings wraps the binding errors that abort a strict build.
var ErrInvalidBindings = errors.New("invalid bindings")

// Option configures an App.
type Option func(*App)

// WithRegistry sets the registry actions are registered into. Host
// actions registered beforehand are kept.
func WithRegistry(r *action.StaticRegistry) Option {
	return func(a *App) { a.registry = r }
}

// WithEditing sets the predicate reporting a focused text field.
func WithEditing(f func() bool) Option {
	return func(a *App) { a.host.Editing = f }
}

// WithDispatcherOptions adds options for the dispatcher.
func WithDispatcherOptions(opts ...input.Option) Option {
	return func(a *App) { a.dispatchOpts = append(a.dispatchOpts, opts...) }
}

// App owns the running components.
type App struct {
	cfg    config.Config
	logger zerolog.Logger

	host     *platform.Static
	parser   keymap.Parser
	loader   *keymap.Loader
	registry *action.StaticRegistry
	scripts  *lua.State

	dispatchOpts []input.Option
	dispatcher   *input.Dispatcher

	mu        sync.Mutex
	conflicts []keymap.Conflict
}

// New validates cfg, loads the bindings and action scripts it names and
// creates the dispatcher.
func New(ctx context.Context, cfg config.Config, logger zerolog.Logger, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	a := &App{
		cfg:    cfg,
		logger: logger,
		host:   platform.New(cfg.Platform),
		loader: keymap.NewLoader(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.registry == nil {
		a.registry = action.NewStaticRegistry()
	}
	a.parser = keymap.Parser{Platform: a.host.Name(), KeybindSet: cfg.KeybindSet}

	if err := a.loadScripts(); err != nil {
		return nil, err
	}

	idx, conflicts, err := a.build(ctx)
	if err != nil {
		a.scripts.Close()
		return nil, err
	}
	a.conflicts = conflicts

	dispatchOpts := append([]input.Option{
		input.WithLogger(logger),
		input.WithBaseContext(logging.WithContext(ctx, logger)),
	}, a.dispatchOpts...)
	a.dispatcher = input.NewDispatcher(idx, a.registry, a.host, dispatchOpts...)

	a.logger.Info().
		Str("platform", a.host.Name()).
		Str("keybind_set", cfg.KeybindSet).
		Int("shortcuts", idx.Len()).
		Int("actions", a.registry.Count()).
		Msg("keychord ready")
	return a, nil
}

func (a *App) loadScripts() error {
	a.scripts = lua.NewState(lua.WithLogger(a.logger.With().Str("component", "lua").Logger()))
	for _, path := range a.cfg.Actions {
		regs, err := a.scripts.LoadActionsFile(path)
		if err != nil {
			a.scripts.Close()
			return fmt.Errorf("action script: %w", err)
		}
		for _, reg := range regs {
			if err := a.registry.Register(reg); err != nil {
				a.scripts.Close()
				return fmt.Errorf("action script %s: %w", path, err)
			}
		}
		a.logger.Debug().Str("script", path).Int("actions", len(regs)).Msg("loaded action script")
	}
	return nil
}

// build loads the binding files and builds an index with the configured
// error policy.
func (a *App) build(ctx context.Context) (*keymap.Index, []keymap.Conflict, error) {
	idx, conflicts, err := Build(ctx, a.loader, a.parser, a.cfg, a.logger)
	if err != nil {
		bes := keymap.BindingErrors(err)
		if a.cfg.Strict || len(bes) == 0 {
			return nil, nil, err
		}
		for _, be := range bes {
			a.logger.Warn().Err(be).Msg("skipping binding")
		}
	}
	for _, c := range conflicts {
		a.logger.Warn().Stringer("conflict", c).Msg("binding conflict")
	}
	return idx, conflicts, nil
}

// Build loads the default and user binding files named by cfg and builds
// an index for parser. Load failures are returned alone. Otherwise the
// index holds every declaration that parsed and the error joins the
// rejected ones, wrapped with ErrInvalidBindings.
func Build(ctx context.Context, loader *keymap.Loader, parser keymap.Parser, cfg config.Config, logger zerolog.Logger) (*keymap.Index, []keymap.Conflict, error) {
	defaults, err := loader.LoadAll(ctx, cfg.Bindings...)
	if err != nil {
		return nil, nil, err
	}

	var overrides []keymap.Declaration
	if cfg.UserBindings != "" {
		overrides, err = loader.LoadFile(cfg.UserBindings)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logger.Debug().Str("path", cfg.UserBindings).Msg("no user bindings")
		case err != nil:
			return nil, nil, err
		}
	}

	idx, conflicts, err := keymap.BuildFromDeclarations(parser, defaults, overrides)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrInvalidBindings, err)
	}
	return idx, conflicts, err
}

// Reload rebuilds the index from the binding files and swaps it into
// the dispatcher. On failure the current index stays in place.
func (a *App) Reload(ctx context.Context) error {
	idx, conflicts, err := a.build(ctx)
	if err != nil {
		a.logger.Error().Err(err).Msg("reload failed, keeping current bindings")
		return err
	}

	a.mu.Lock()
	a.conflicts = conflicts
	a.mu.Unlock()

	a.dispatcher.SetIndex(idx)
	a.logger.Info().Int("shortcuts", idx.Len()).Msg("bindings reloaded")
	return nil
}

// BindingFiles returns the files whose changes trigger a reload.
func (a *App) BindingFiles() []string {
	files := append([]string(nil), a.cfg.Bindings...)
	if a.cfg.UserBindings != "" {
		files = append(files, a.cfg.UserBindings)
	}
	return files
}

// Watch reloads the bindings whenever a binding file changes, until ctx
// is done.
func (a *App) Watch(ctx context.Context) error {
	w, err := watcher.New(a.BindingFiles(), watcher.DefaultDebounce, func(changed []string) {
		a.logger.Info().Strs("files", changed).Msg("binding files changed")
		_ = a.Reload(ctx)
	}, watcher.WithLogger(a.logger))
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	<-ctx.Done()
	return nil
}

// Config returns the configuration the app was built with.
func (a *App) Config() config.Config { return a.cfg }

// Host returns the platform.
func (a *App) Host() platform.Platform { return a.host }

// Parser returns the binding parser for the platform.
func (a *App) Parser() keymap.Parser { return a.parser }

// Registry returns the action registry.
func (a *App) Registry() *action.StaticRegistry { return a.registry }

// Dispatcher returns the dispatcher.
func (a *App) Dispatcher() *input.Dispatcher { return a.dispatcher }

// Conflicts returns the conflicts of the current index.
func (a *App) Conflicts() []keymap.Conflict {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]keymap.Conflict(nil), a.conflicts...)
}

// Close stops the dispatcher and releases the action scripts.
func (a *App) Close() error {
	return errors.Join(a.dispatcher.Close(), a.scripts.Close())
}
