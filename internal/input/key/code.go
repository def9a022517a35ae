package key

import "fmt"

// Code identifies a physical key together with an exact modifier set.
// The low 16 bits hold the key identifier and bits 16-19 hold the
// modifier mask. Two codes are equal only if both the key and the
// modifiers are equal.
type Code uint32

const modifierShift = 16

// Encode combines a key identifier with a modifier mask.
// Modifier bits outside ModMask are dropped.
func Encode(id ID, m Modifier) Code {
	return Code(id) | Code(m&ModMask)<<modifierShift
}

// Decode is the inverse of Encode.
func (c Code) Decode() (ID, Modifier) {
	return c.ID(), c.Modifiers()
}

// ID returns the key identifier part of the code.
func (c Code) ID() ID {
	return ID(c & 0xFFFF)
}

// Modifiers returns the modifier mask of the code.
func (c Code) Modifiers() Modifier {
	return Modifier(c>>modifierShift) & ModMask
}

// IsModifierOnly returns true if the code is a bare modifier key press.
func (c Code) IsModifierOnly() bool {
	return IsModifierKey(c.ID())
}

// String returns the non-mac display form, e.g. "Ctrl+Shift+P".
func (c Code) String() string {
	return displayName(c, false)
}

// GoString implements fmt.GoStringer.
func (c Code) GoString() string {
	return fmt.Sprintf("key.Code(0x%05x)", uint32(c))
}

// Event is a physical key press as delivered by a host.
// Key is the raw key name reported by the host ("a", "Escape", "F5",
// "Control") and is used for the editing-suppression rules only.
type Event struct {
	Code Code
	Key  string
}

// NewEvent builds an Event from its parts.
func NewEvent(id ID, m Modifier, raw string) Event {
	return Event{Code: Encode(id, m), Key: raw}
}

// Modifiers returns the modifier mask of the event.
func (e Event) Modifiers() Modifier {
	return e.Code.Modifiers()
}

// IsModifierOnly returns true if the event is a bare modifier key press.
func (e Event) IsModifierOnly() bool {
	return e.Code.IsModifierOnly()
}

func (e Event) String() string {
	if e.Key == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s (%q)", e.Code, e.Key)
}
