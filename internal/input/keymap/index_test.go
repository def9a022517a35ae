package keymap

import (
	"errors"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/dshills/keychord/internal/input/key"
)

func shortcut(t *testing.T, action, binding string, typ Type) KeyboardShortcut {
	t.Helper()
	s, err := Parser{Platform: "linux"}.ParseDeclaration(Declaration{ActionID: action, Shortcut: binding}, typ)
	if err != nil || s == nil {
		t.Fatalf("ParseDeclaration(%s, %q) = %v, %v", action, binding, s, err)
	}
	return *s
}

func TestBuildLockstep(t *testing.T) {
	idx, conflicts := Build([]KeyboardShortcut{
		shortcut(t, "undo", "Ctrl-Z", DefaultShortcut),
		shortcut(t, "redo", "Ctrl-Y", DefaultShortcut),
		shortcut(t, "redo", "Ctrl-Shift-Z", DefaultShortcut),
		shortcut(t, "quickOpen", "Ctrl-K Ctrl-B", DefaultShortcut),
	})
	if len(conflicts) != 0 {
		t.Errorf("conflicts = %v, want none", conflicts)
	}
	if idx.Len() != 4 {
		t.Errorf("Len() = %d, want 4", idx.Len())
	}

	for _, s := range idx.Shortcuts() {
		if !slices.Contains(actionsOf(idx.ShortcutsForKey(s.Descriptor.Key)), s.Action) {
			t.Errorf("ShortcutsForKey(%v) misses %s", s.Descriptor.Key, s.Action)
		}
		if !slices.Contains(keysOf(idx.ShortcutsForAction(s.Action)), s.Descriptor.Key) {
			t.Errorf("ShortcutsForAction(%s) misses %v", s.Action, s.Descriptor.Key)
		}
	}

	ctrlK := key.Encode('K', key.ModCtrl)
	if !idx.IsPrefixKey(ctrlK) {
		t.Error("IsPrefixKey(Ctrl+K) = false, want true")
	}
	if idx.IsPrefixKey(key.Encode('B', key.ModCtrl)) {
		t.Error("IsPrefixKey(Ctrl+B) = true, want false")
	}
	if got := idx.PrefixKeys(); !slices.Equal(got, []key.Code{ctrlK}) {
		t.Errorf("PrefixKeys() = %v, want [Ctrl+K]", got)
	}
	if n := len(idx.ShortcutsForAction("redo")); n != 2 {
		t.Errorf("len(ShortcutsForAction(redo)) = %d, want 2", n)
	}
	if n := len(idx.Keys()); n != 4 {
		t.Errorf("len(Keys()) = %d, want 4", n)
	}
}

func TestBuildDuplicate(t *testing.T) {
	first := shortcut(t, "undo", "Ctrl-Z", DefaultShortcut)
	second := shortcut(t, "undo", "ctrl-z", UserShortcut)

	idx, conflicts := Build([]KeyboardShortcut{first, second})
	if len(conflicts) != 1 {
		t.Fatalf("conflicts = %v, want one", conflicts)
	}
	c := conflicts[0]
	if c.Kind != ConflictDuplicate || c.Shortcut.Type != UserShortcut || c.Existing.Type != DefaultShortcut {
		t.Errorf("conflict = %v, want duplicate of the default by the user shortcut", c)
	}

	byKey := idx.ShortcutsForKey(first.Descriptor.Key)
	if len(byKey) != 1 || byKey[0].Type != DefaultShortcut {
		t.Errorf("ShortcutsForKey(Ctrl+Z) = %v, want only the default", byKey)
	}
	byAction := idx.ShortcutsForAction("undo")
	if len(byAction) != 1 || byAction[0].Type != DefaultShortcut {
		t.Errorf("ShortcutsForAction(undo) = %v, want only the default", byAction)
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	in := []KeyboardShortcut{
		shortcut(t, "undo", "Ctrl-Z", DefaultShortcut),
		shortcut(t, "quickOpen", "Ctrl-K Ctrl-B", DefaultShortcut),
	}
	a, _ := Build(in)
	b, _ := Build(in)
	if !reflect.DeepEqual(a.Shortcuts(), b.Shortcuts()) {
		t.Errorf("second build = %v, want %v", b.Shortcuts(), a.Shortcuts())
	}
}

func TestBuildChordAndSingleAreNotDuplicates(t *testing.T) {
	idx, conflicts := Build([]KeyboardShortcut{
		shortcut(t, "a", "Ctrl-B", DefaultShortcut),
		shortcut(t, "a", "Ctrl-K Ctrl-B", DefaultShortcut),
	})
	if idx.Len() != 2 || len(conflicts) != 0 {
		t.Errorf("Len() = %d, conflicts = %v, want 2 and none", idx.Len(), conflicts)
	}

	ctrlB := key.Encode('B', key.ModCtrl)
	if got := idx.StandaloneActions(ctrlB); !slices.Equal(got, []string{"a"}) {
		t.Errorf("StandaloneActions(Ctrl+B) = %v, want [a]", got)
	}
	if got := idx.ChordActions(key.Encode('K', key.ModCtrl), ctrlB); !slices.Equal(got, []string{"a"}) {
		t.Errorf("ChordActions(Ctrl+K, Ctrl+B) = %v, want [a]", got)
	}
}

func TestBuildOverlap(t *testing.T) {
	idx, conflicts := Build([]KeyboardShortcut{
		shortcut(t, "first", "Ctrl-P", DefaultShortcut),
		shortcut(t, "second", "Ctrl-P", DefaultShortcut),
	})
	if len(conflicts) != 1 {
		t.Fatalf("conflicts = %v, want one", conflicts)
	}
	c := conflicts[0]
	if c.Kind != ConflictOverlap || c.Existing.Action != "first" || c.Shortcut.Action != "second" {
		t.Errorf("conflict = %v, want second overlapping first", c)
	}
	if got := idx.ActionsForKey(key.Encode('P', key.ModCtrl)); !slices.Equal(got, []string{"first", "second"}) {
		t.Errorf("ActionsForKey(Ctrl+P) = %v, want registration order", got)
	}
}

func TestBuildPrefixShadow(t *testing.T) {
	_, conflicts := Build([]KeyboardShortcut{
		shortcut(t, "clear", "Ctrl-K", DefaultShortcut),
		shortcut(t, "quickOpen", "Ctrl-K Ctrl-B", DefaultShortcut),
	})
	if len(conflicts) != 1 {
		t.Fatalf("conflicts = %v, want one", conflicts)
	}
	c := conflicts[0]
	if c.Kind != ConflictPrefixShadow || c.Shortcut.Action != "clear" || c.Existing.Action != "quickOpen" {
		t.Errorf("conflict = %v, want clear shadowed by the quickOpen prefix", c)
	}
	if !strings.Contains(c.String(), "prefix-shadow") {
		t.Errorf("String() = %q, want it to name the kind", c.String())
	}
}

func TestBuildDisabledDefault(t *testing.T) {
	idx, conflicts := Build([]KeyboardShortcut{
		shortcut(t, "quickOpen", "Ctrl-K Ctrl-B", DefaultShortcut),
		shortcut(t, "undo", "Ctrl-Z", DefaultShortcut),
		shortcut(t, "quickOpen", "Ctrl-K Ctrl-B", DisabledDefault),
		shortcut(t, "quickOpen", "Ctrl-P", UserShortcut),
		shortcut(t, "nothing", "F9", DisabledDefault),
	})
	if len(conflicts) != 0 {
		t.Errorf("conflicts = %v, want none", conflicts)
	}
	if idx.Len() != 2 {
		t.Errorf("Len() = %d, want 2", idx.Len())
	}
	if idx.IsPrefixKey(key.Encode('K', key.ModCtrl)) {
		t.Error("disabled chord still registers its prefix")
	}
	if got := idx.ShortcutsForKey(key.Encode('B', key.ModCtrl)); len(got) != 0 {
		t.Errorf("ShortcutsForKey(Ctrl+B) = %v, want none", got)
	}
	if got := idx.ShortcutsForKey(key.Encode(key.IDF1+8, key.ModNone)); len(got) != 0 {
		t.Errorf("DisabledDefault without a default was indexed: %v", got)
	}

	if title, ok := idx.TitleForAction("quickOpen"); !ok || title != "Ctrl+P" {
		t.Errorf("TitleForAction(quickOpen) = %q, %v, want Ctrl+P", title, ok)
	}
}

func TestBuildFromDeclarations(t *testing.T) {
	defaults := []Declaration{
		{ActionID: "undo", Shortcut: "Ctrl-Z"},
		{ActionID: "undo", Shortcut: "Meta-Z", Platform: "mac"},
		{ActionID: "broken", Shortcut: "Ctrl-Nope"},
		{ActionID: "chord", Shortcut: "Ctrl-K Ctrl-B Ctrl-C"},
		{ActionID: "quickOpen", Shortcut: "Ctrl-K Ctrl-B"},
	}
	overrides := []Declaration{
		{ActionID: "undo", Shortcut: "Ctrl-Z", Disabled: true},
		{ActionID: "undo", Shortcut: "Alt-Backspace"},
	}

	idx, conflicts, err := BuildFromDeclarations(Parser{Platform: "linux"}, defaults, overrides)
	if err == nil {
		t.Fatal("BuildFromDeclarations() error = nil, want binding errors")
	}
	if len(conflicts) != 0 {
		t.Errorf("conflicts = %v, want none", conflicts)
	}

	var be *BindingError
	if !errors.As(err, &be) {
		t.Fatalf("error %v is not a *BindingError", err)
	}
	if be.ActionID != "broken" || be.Index != 2 {
		t.Errorf("first binding error = %s at %d, want broken at 2", be.ActionID, be.Index)
	}
	if !errors.Is(err, key.ErrUnknownKey) || !errors.Is(err, ErrTooManyKeys) {
		t.Errorf("error %v should wrap ErrUnknownKey and ErrTooManyKeys", err)
	}

	joined, ok := err.(interface{ Unwrap() []error })
	if !ok || len(joined.Unwrap()) != 2 {
		t.Errorf("error %v should join two errors", err)
	}

	bes := BindingErrors(err)
	if len(bes) != 2 || bes[0].ActionID != "broken" || bes[1].ActionID != "chord" {
		t.Errorf("BindingErrors() = %v, want broken and chord", bes)
	}
	if got := BindingErrors(nil); got != nil {
		t.Errorf("BindingErrors(nil) = %v, want nil", got)
	}

	undo := idx.ShortcutsForAction("undo")
	if len(undo) != 1 {
		t.Fatalf("ShortcutsForAction(undo) = %v, want the override only", undo)
	}
	if undo[0].Type != UserShortcut || undo[0].Descriptor.Name != "Alt+Backspace" {
		t.Errorf("undo = %v, want user Alt+Backspace", undo[0])
	}
	if n := len(idx.ShortcutsForAction("quickOpen")); n != 1 {
		t.Errorf("len(ShortcutsForAction(quickOpen)) = %d, want 1", n)
	}
}

func TestBuildFromDeclarationsClean(t *testing.T) {
	_, _, err := BuildFromDeclarations(Parser{Platform: "linux"}, []Declaration{{ActionID: "a", Shortcut: "F1"}}, nil)
	if err != nil {
		t.Errorf("BuildFromDeclarations() error = %v", err)
	}
}

func TestIndexQueries(t *testing.T) {
	idx, _ := Build([]KeyboardShortcut{
		shortcut(t, "undo", "Ctrl-Z", DefaultShortcut),
		shortcut(t, "redo", "Ctrl-Y", DefaultShortcut),
		shortcut(t, "redo", "Ctrl-Shift-Z", DefaultShortcut),
		shortcut(t, "quickOpen", "Ctrl-K Ctrl-B", DefaultShortcut),
	})

	ctrlZ := key.Encode('Z', key.ModCtrl)
	ctrlB := key.Encode('B', key.ModCtrl)

	wantKeys := []key.Code{key.Encode('Y', key.ModCtrl), key.Encode('Z', key.ModCtrl|key.ModShift), ctrlZ}
	if got := idx.KeysForActions("redo", "undo"); !slices.Equal(got, wantKeys) {
		t.Errorf("KeysForActions(redo, undo) = %v, want %v", got, wantKeys)
	}
	if got := namesOf(idx.DescriptorsForAction("redo")); !slices.Equal(got, []string{"Ctrl+Y", "Ctrl+Shift+Z"}) {
		t.Errorf("DescriptorsForAction(redo) = %v", got)
	}

	matches := []struct {
		code   key.Code
		action string
		want   bool
	}{
		{ctrlZ, "undo", true},
		{ctrlZ, "redo", false},
		{ctrlB, "quickOpen", false},
	}
	for _, tt := range matches {
		if got := idx.MatchesAction(tt.code, tt.action); got != tt.want {
			t.Errorf("MatchesAction(%v, %s) = %v, want %v", tt.code, tt.action, got, tt.want)
		}
	}

	if got := idx.StandaloneActions(ctrlB); len(got) != 0 {
		t.Errorf("StandaloneActions(Ctrl+B) = %v, want none", got)
	}
	if got := idx.ActionsForKey(ctrlB); !slices.Equal(got, []string{"quickOpen"}) {
		t.Errorf("ActionsForKey(Ctrl+B) = %v, want [quickOpen]", got)
	}

	if title, ok := idx.TitleForAction("quickOpen"); !ok || title != "Ctrl+K Ctrl+B" {
		t.Errorf("TitleForAction(quickOpen) = %q, %v", title, ok)
	}
	if _, ok := idx.TitleForAction("missing"); ok {
		t.Error("TitleForAction(missing) found a title")
	}

	bindable := idx.BindableShortcuts([]string{"undo", "settings"})
	if len(bindable) != 2 {
		t.Fatalf("BindableShortcuts() = %v, want 2 entries", bindable)
	}
	if bindable[0].Action != "undo" {
		t.Errorf("bindable[0].Action = %s, want undo", bindable[0].Action)
	}
	if bindable[1].Type != UnsetShortcut || !bindable[1].Descriptor.IsEmpty() {
		t.Errorf("bindable[1] = %v, want an unset placeholder", bindable[1])
	}
}

func TestIndexReturnsCopies(t *testing.T) {
	idx, _ := Build([]KeyboardShortcut{shortcut(t, "quickOpen", "Ctrl-K Ctrl-B", DefaultShortcut)})

	got := idx.ShortcutsForAction("quickOpen")
	got[0].Prefix.Key = 0
	got[0].Action = "changed"

	again := idx.ShortcutsForAction("quickOpen")
	if again[0].Prefix.Key != key.Encode('K', key.ModCtrl) || again[0].Action != "quickOpen" {
		t.Errorf("index was modified through a query result: %v", again[0])
	}
}

func actionsOf(list []KeyboardShortcut) []string {
	var out []string
	for _, s := range list {
		out = append(out, s.Action)
	}
	return out
}

func keysOf(list []KeyboardShortcut) []key.Code {
	var out []key.Code
	for _, s := range list {
		out = append(out, s.Descriptor.Key)
	}
	return out
}

func namesOf(list []key.Descriptor) []string {
	var out []string
	for _, d := range list {
		out = append(out, d.Name)
	}
	return out
}
