package key

import "strings"

// Modifier is a bitmask over the Shift, Control, Alt and Meta keys.
type Modifier uint8

const (
	// ModNone indicates no modifiers.
	ModNone Modifier = 0

	// ModShift indicates the Shift key.
	ModShift Modifier = 1 << 0

	// ModCtrl indicates the Control key.
	ModCtrl Modifier = 1 << 1

	// ModAlt indicates the Alt key (Option on macOS).
	ModAlt Modifier = 1 << 2

	// ModMeta indicates the Meta key (Cmd on macOS, Win on Windows).
	ModMeta Modifier = 1 << 3

	// ModMask covers every valid modifier bit.
	ModMask = ModShift | ModCtrl | ModAlt | ModMeta
)

// Has returns true if m contains the specified modifier.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// HasShift returns true if Shift is pressed.
func (m Modifier) HasShift() bool {
	return m.Has(ModShift)
}

// HasCtrl returns true if Control is pressed.
func (m Modifier) HasCtrl() bool {
	return m.Has(ModCtrl)
}

// HasAlt returns true if Alt is pressed.
func (m Modifier) HasAlt() bool {
	return m.Has(ModAlt)
}

// HasMeta returns true if Meta is pressed.
func (m Modifier) HasMeta() bool {
	return m.Has(ModMeta)
}

// With returns a new Modifier with the specified modifier added.
func (m Modifier) With(mod Modifier) Modifier {
	return m | mod
}

// Without returns a new Modifier with the specified modifier removed.
func (m Modifier) Without(mod Modifier) Modifier {
	return m &^ mod
}

// IsEmpty returns true if no modifiers are set.
func (m Modifier) IsEmpty() bool {
	return m&ModMask == ModNone
}

// String returns a human-readable representation like "Ctrl+Alt".
func (m Modifier) String() string {
	if m.IsEmpty() {
		return ""
	}
	return strings.Join(m.names(), "+")
}

// MacString returns the macOS glyph form, e.g. "⌃⌥⇧⌘".
func (m Modifier) MacString() string {
	var sb strings.Builder
	if m.HasCtrl() {
		sb.WriteString("⌃")
	}
	if m.HasAlt() {
		sb.WriteString("⌥")
	}
	if m.HasShift() {
		sb.WriteString("⇧")
	}
	if m.HasMeta() {
		sb.WriteString("⌘")
	}
	return sb.String()
}

func (m Modifier) names() []string {
	parts := make([]string, 0, 4)
	if m.HasCtrl() {
		parts = append(parts, "Ctrl")
	}
	if m.HasAlt() {
		parts = append(parts, "Alt")
	}
	if m.HasShift() {
		parts = append(parts, "Shift")
	}
	if m.HasMeta() {
		parts = append(parts, "Meta")
	}
	return parts
}

// modifierNameMap maps binding modifier names (lowercase) to Modifier values.
// CtrlOrMeta and ShiftOrOption depend on the platform and are resolved
// by ModifierFromName.
var modifierNameMap = map[string]Modifier{
	"shift":   ModShift,
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"alt":     ModAlt,
	"option":  ModAlt,
	"meta":    ModMeta,
	"cmd":     ModMeta,
	"command": ModMeta,
}

// ModifierFromName returns the Modifier for a binding modifier name
// (case-insensitive). The mac flag resolves the platform-dependent names:
// CtrlOrMeta is Meta on mac and Ctrl elsewhere, ShiftOrOption is Alt on
// mac and Shift elsewhere.
func ModifierFromName(name string, mac bool) (Modifier, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "ctrlormeta":
		if mac {
			return ModMeta, true
		}
		return ModCtrl, true
	case "shiftoroption":
		if mac {
			return ModAlt, true
		}
		return ModShift, true
	}
	m, ok := modifierNameMap[name]
	return m, ok
}
