package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/keychord/internal/config"
	"github.com/dshills/keychord/internal/input"
	"github.com/dshills/keychord/internal/input/action"
	"github.com/dshills/keychord/internal/input/clock"
	"github.com/dshills/keychord/internal/input/key"
	"github.com/dshills/keychord/internal/input/keymap"
)

const defaultBindings = `{"bindings": [
  {"actionId": "quickOpen.show", "shortcut": "Ctrl-P"},
  {"actionId": "quickOpen.show", "shortcut": "Meta-P", "platform": "mac"},
  {"actionId": "sources.search", "shortcut": "Ctrl-K Ctrl-F"},
  {"actionId": "console.clear", "shortcut": "Ctrl-L"}
]}`

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func baseConfig(bindings ...string) config.Config {
	return config.Config{
		Platform:   "linux",
		KeybindSet: "devToolsDefault",
		Bindings:   bindings,
		Strict:     true,
		Log:        config.LogConfig{Level: "info", Format: "json"},
	}
}

type recorder struct {
	registry *action.StaticRegistry
	fired    map[string]*atomic.Int32
}

func newRecorder(ids ...string) *recorder {
	r := &recorder{registry: action.NewStaticRegistry(), fired: make(map[string]*atomic.Int32)}
	for _, id := range ids {
		n := &atomic.Int32{}
		r.fired[id] = n
		r.registry.MustRegister(action.Registration{
			ID: id,
			Handler: func(context.Context) (bool, error) {
				n.Add(1)
				return true, nil
			},
		})
	}
	return r
}

func TestNewDispatchesConfiguredBindings(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig(write(t, dir, "defaults.json", defaultBindings))
	rec := newRecorder("quickOpen.show", "sources.search", "console.clear")
	fake := clock.NewFake(time.Unix(0, 0))

	a, err := New(context.Background(), cfg, zerolog.Nop(),
		WithRegistry(rec.registry),
		WithDispatcherOptions(input.WithClock(fake)))
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "linux", a.Host().Name())
	assert.Empty(t, a.Conflicts())

	d := a.Dispatcher()
	ctx := context.Background()

	handled, err := d.HandleKey(ctx, key.Encode('P', key.ModCtrl), "p")
	require.NoError(t, err)
	assert.True(t, handled)
	assert.EqualValues(t, 1, rec.fired["quickOpen.show"].Load())

	handled, err = d.HandleKey(ctx, key.Encode('K', key.ModCtrl), "k")
	require.NoError(t, err)
	assert.True(t, handled)
	handled, err = d.HandleKey(ctx, key.Encode('F', key.ModCtrl), "f")
	require.NoError(t, err)
	assert.True(t, handled)
	assert.EqualValues(t, 1, rec.fired["sources.search"].Load())
}

func TestNewInvalidConfig(t *testing.T) {
	_, err := New(context.Background(), baseConfig(), zerolog.Nop())
	assert.ErrorIs(t, err, config.ErrNoBindings)
}

func TestNewStrictRejectsBadBinding(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "bad.json", `[
  {"actionId": "ok", "shortcut": "Ctrl-O"},
  {"actionId": "bad", "shortcut": "Ctrl-Nope"}
]`)

	_, err := New(context.Background(), baseConfig(path), zerolog.Nop())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidBindings)
	assert.ErrorIs(t, err, key.ErrUnknownKey)
}

func TestNewLenientSkipsBadBinding(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "bad.json", `[
  {"actionId": "ok", "shortcut": "Ctrl-O"},
  {"actionId": "bad", "shortcut": "Ctrl-Nope"}
]`)
	cfg := baseConfig(path)
	cfg.Strict = false

	var buf bytes.Buffer
	a, err := New(context.Background(), cfg, zerolog.New(&buf))
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, 1, a.Dispatcher().Index().Len())
	assert.Contains(t, buf.String(), "skipping binding")
}

func TestNewLoadErrorIsFatalEvenWhenLenient(t *testing.T) {
	cfg := baseConfig(filepath.Join(t.TempDir(), "missing.json"))
	cfg.Strict = false

	_, err := New(context.Background(), cfg, zerolog.Nop())
	var le *keymap.LoadError
	assert.ErrorAs(t, err, &le)
}

func TestUserBindingsOverride(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig(write(t, dir, "defaults.json", defaultBindings))
	cfg.UserBindings = write(t, dir, "user.yaml", `
bindings:
  - actionId: console.clear
    shortcut: Ctrl-L
    disabled: true
  - actionId: console.clear
    shortcut: Alt-L
`)

	a, err := New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	idx := a.Dispatcher().Index()
	assert.False(t, idx.MatchesAction(key.Encode('L', key.ModCtrl), "console.clear"))
	assert.True(t, idx.MatchesAction(key.Encode('L', key.ModAlt), "console.clear"))
}

func TestMissingUserBindingsIgnored(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig(write(t, dir, "defaults.json", defaultBindings))
	cfg.UserBindings = filepath.Join(dir, "absent.yaml")

	a, err := New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()
	assert.Equal(t, 3, a.Dispatcher().Index().Len())
	assert.Len(t, a.BindingFiles(), 2)
}

func TestConflictsLogged(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "dup.json", `[
  {"actionId": "a", "shortcut": "Ctrl-A"},
  {"actionId": "a", "shortcut": "Ctrl-A"},
  {"actionId": "b", "shortcut": "Ctrl-A"}
]`)

	var buf bytes.Buffer
	a, err := New(context.Background(), baseConfig(path), zerolog.New(&buf))
	require.NoError(t, err)
	defer a.Close()

	conflicts := a.Conflicts()
	require.Len(t, conflicts, 2)
	assert.Equal(t, keymap.ConflictDuplicate, conflicts[0].Kind)
	assert.Equal(t, keymap.ConflictOverlap, conflicts[1].Kind)
	assert.Contains(t, buf.String(), "binding conflict")
}

func TestMacPlatformUsesMacBindings(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig(write(t, dir, "defaults.json", defaultBindings))
	cfg.Platform = "darwin"

	a, err := New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	assert.True(t, a.Host().IsMac())
	keys := a.Dispatcher().Index().KeysForActions("quickOpen.show")
	assert.Equal(t, []key.Code{key.Encode('P', key.ModCtrl), key.Encode('P', key.ModMeta)}, keys)
}

func TestLuaActions(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig(write(t, dir, "defaults.json", defaultBindings))
	cfg.Actions = []string{write(t, dir, "actions.lua", `
cleared = 0
keychord.action("console.clear", {title = "Clear console"}, function(ctx)
    cleared = cleared + 1
    return true
end)
`)}

	a, err := New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	reg, ok := a.Registry().Registration("console.clear")
	require.True(t, ok)
	assert.Equal(t, "Clear console", reg.Title)

	handled, err := a.Dispatcher().HandleKey(context.Background(), key.Encode('L', key.ModCtrl), "l")
	require.NoError(t, err)
	assert.True(t, handled)
}

func TestLuaActionConflictsWithHostAction(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig(write(t, dir, "defaults.json", defaultBindings))
	cfg.Actions = []string{write(t, dir, "actions.lua",
		`keychord.action("console.clear", function() return true end)`)}

	_, err := New(context.Background(), cfg, zerolog.Nop(), WithRegistry(newRecorder("console.clear").registry))
	assert.ErrorIs(t, err, action.ErrDuplicateAction)
}

func TestReload(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "defaults.json", defaultBindings)

	a, err := New(context.Background(), baseConfig(path), zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()
	require.Equal(t, 3, a.Dispatcher().Index().Len())

	write(t, dir, "defaults.json", `[{"actionId": "only", "shortcut": "F2"}]`)
	require.NoError(t, a.Reload(context.Background()))
	assert.Equal(t, 1, a.Dispatcher().Index().Len())

	write(t, dir, "defaults.json", `[{"actionId": "bad", "shortcut": "Ctrl-Nope"}]`)
	assert.Error(t, a.Reload(context.Background()))
	assert.Equal(t, 1, a.Dispatcher().Index().Len(), "failed reload keeps the current index")
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "defaults.json", defaultBindings)

	a, err := New(context.Background(), baseConfig(path), zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Watch(ctx) }()

	// The watch is armed once the goroutine is running; retry the write until seen.
	require.Eventually(t, func() bool {
		write(t, dir, "defaults.json", `[{"actionId": "only", "shortcut": "F2"}]`)
		return a.Dispatcher().Index().Len() == 1
	}, 5*time.Second, 200*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return")
	}
}

func TestBuildForOtherPlatform(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig(write(t, dir, "defaults.json", defaultBindings))

	idx, conflicts, err := Build(context.Background(), keymap.NewLoader(),
		keymap.Parser{Platform: "mac", KeybindSet: cfg.KeybindSet}, cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, conflicts)
	assert.Len(t, idx.ShortcutsForAction("quickOpen.show"), 2)
}
