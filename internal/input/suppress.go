package input

import (
	"regexp"

	"github.com/dshills/keychord/internal/input/key"
	"github.com/dshills/keychord/internal/input/platform"
)

// safeKeyPattern matches raw key names that never produce text: function
// keys, modifiers and Escape.
var safeKeyPattern = regexp.MustCompile(`^F\d+|Control|Shift|Alt|Meta|Escape|Win|U\+001B$`)

// isPossiblyInput reports whether a key press while editing is likely to
// type text and must be left to the focused field.
func isPossiblyInput(code key.Code, rawKey string, host platform.Platform) bool {
	if !host.IsEditing() {
		return false
	}
	if rawKey == "" {
		rawKey = rawKeyName(code.ID())
	}
	if safeKeyPattern.MatchString(rawKey) {
		return false
	}
	if isUndoRedo(code, host) {
		return false
	}

	mods := code.Modifiers()
	if mods.IsEmpty() {
		return true
	}
	// Ctrl+Alt is AltGr on Windows and types characters there.
	if mods.HasCtrl() && mods.HasAlt() {
		return host.IsWin()
	}
	return !mods.HasCtrl() && !mods.HasAlt() && !mods.HasMeta()
}

// isUndoRedo reports whether code is one of the platform's undo or redo
// chords, which reach the dispatcher even while editing.
func isUndoRedo(code key.Code, host platform.Platform) bool {
	if host.IsMac() {
		return code == key.Encode('Z', key.ModMeta) ||
			code == key.Encode('Z', key.ModMeta|key.ModShift)
	}
	if code == key.Encode('Z', key.ModCtrl) || code == key.Encode('Y', key.ModCtrl) {
		return true
	}
	return !host.IsWin() && code == key.Encode('Z', key.ModCtrl|key.ModShift)
}

// rawKeyName names a key the way a host reports it when the caller did
// not pass a raw name.
func rawKeyName(id key.ID) string {
	switch id {
	case key.IDShift:
		return "Shift"
	case key.IDCtrl:
		return "Control"
	case key.IDAlt:
		return "Alt"
	case key.IDMeta, key.IDMetaRight, key.IDMenu, key.IDOSMeta:
		return "Meta"
	case key.IDEscape:
		return "Escape"
	}
	return id.String()
}
