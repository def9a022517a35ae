package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresPaths(t *testing.T) {
	_, err := New(nil, 0, nil)
	assert.ErrorIs(t, err, ErrNoPaths)
}

func TestNewMissingDirectory(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "missing", "a.json")}, 0, nil)
	assert.Error(t, err)
}

func TestWatcherReportsChanges(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "bindings.json")
	other := filepath.Join(dir, "other.json")
	require.NoError(t, os.WriteFile(target, []byte("[]"), 0o600))

	changes := make(chan []string, 4)
	w, err := New([]string{target}, 50*time.Millisecond, func(paths []string) {
		changes <- paths
	})
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, []string{target}, w.Files())

	require.NoError(t, os.WriteFile(other, []byte("{}"), 0o600))
	require.NoError(t, os.WriteFile(target, []byte(`[{"actionId":"a","shortcut":"Ctrl-A"}]`), 0o600))
	require.NoError(t, os.WriteFile(target, []byte(`[{"actionId":"a","shortcut":"Ctrl-B"}]`), 0o600))

	select {
	case got := <-changes:
		assert.Equal(t, []string{target}, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "bindings.json")

	changes := make(chan []string, 1)
	w, err := New([]string{target}, 20*time.Millisecond, func(paths []string) {
		changes <- paths
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.json"), []byte("{}"), 0o600))

	select {
	case got := <-changes:
		t.Fatalf("unexpected change %v", got)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherCloseIdempotent(t *testing.T) {
	w, err := New([]string{filepath.Join(t.TempDir(), "a.json")}, 0, nil)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}
