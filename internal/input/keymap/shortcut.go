package keymap

import (
	"github.com/dshills/keychord/internal/input/key"
)

// Type tells where a shortcut came from.
type Type uint8

const (
	// UserShortcut is a binding added by the user.
	UserShortcut Type = iota
	// DefaultShortcut is a built-in binding.
	DefaultShortcut
	// DisabledDefault removes a matching DefaultShortcut at build time.
	DisabledDefault
	// UnsetShortcut is a placeholder for an action without bindings.
	UnsetShortcut
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case UserShortcut:
		return "user"
	case DefaultShortcut:
		return "default"
	case DisabledDefault:
		return "disabled"
	case UnsetShortcut:
		return "unset"
	default:
		return "unknown"
	}
}

// KeyboardShortcut binds a descriptor to an action. When Prefix is set
// the shortcut is a chord and is only live while Prefix is pending.
type KeyboardShortcut struct {
	Descriptor key.Descriptor
	Action     string
	Type       Type
	Prefix     *key.Descriptor
}

// IsChord returns true if the shortcut needs a prefix key.
func (s KeyboardShortcut) IsChord() bool {
	return s.Prefix != nil
}

// Keys returns the descriptors in press order, prefix first.
func (s KeyboardShortcut) Keys() []key.Descriptor {
	if s.Prefix == nil {
		return []key.Descriptor{s.Descriptor}
	}
	return []key.Descriptor{*s.Prefix, s.Descriptor}
}

// String returns the display form, e.g. "Ctrl+K Ctrl+B".
func (s KeyboardShortcut) String() string {
	if s.Prefix == nil {
		return s.Descriptor.Name
	}
	return s.Prefix.Name + " " + s.Descriptor.Name
}

// PrefixKey returns the prefix key code of a chord.
func (s KeyboardShortcut) PrefixKey() (key.Code, bool) {
	if s.Prefix == nil {
		return 0, false
	}
	return s.Prefix.Key, true
}

// sameKeys reports whether both shortcuts resolve on the same key with
// the same prefix.
func (s KeyboardShortcut) sameKeys(o KeyboardShortcut) bool {
	if s.Descriptor.Key != o.Descriptor.Key {
		return false
	}
	sp, sok := s.PrefixKey()
	op, ook := o.PrefixKey()
	return sok == ook && sp == op
}

func (s KeyboardShortcut) clone() KeyboardShortcut {
	if s.Prefix != nil {
		prefix := *s.Prefix
		s.Prefix = &prefix
	}
	return s
}
