// Package keymap turns binding declarations into an index of keyboard
// shortcuts.
//
// # Key Concepts
//
// Declaration: a static record binding an action id to a shortcut string,
// optionally limited to some platforms and keybind sets.
//
// Parser: converts a shortcut string into one descriptor, or two for a
// chord, for a given platform.
//
// KeyboardShortcut: a descriptor bound to an action, with an optional
// prefix descriptor for chords.
//
// Index: the key-to-shortcuts and action-to-shortcuts multimaps plus
// the set of chord prefix keys. An Index is immutable once built.
//
// # Shortcut Strings
//
//	"Ctrl-Shift-P"    - single shortcut
//	"Ctrl-K Ctrl-B"   - chord, Ctrl-K is the prefix
//	"CtrlOrMeta-S"    - Meta-S on mac, Ctrl-S elsewhere
//
// # Usage
//
//	parser := keymap.Parser{Platform: "linux"}
//	idx, conflicts, err := keymap.BuildFromDeclarations(parser, defaults, nil)
//	if err != nil {
//	    // malformed declarations
//	}
//	for _, c := range conflicts {
//	    // duplicates and overlaps are reported, never fatal
//	}
package keymap
