package key

// Descriptor pairs a key code with its display name. The name is for
// display only, matching always uses Key.
type Descriptor struct {
	Key  Code
	Name string
}

// EmptyDescriptor is the placeholder descriptor of an unset shortcut.
var EmptyDescriptor = Descriptor{}

// MakeDescriptor builds a descriptor for code, deriving the display name
// for the platform: "Ctrl+Alt+Shift+Meta+K" elsewhere, "⌃⌥⇧⌘K" on mac.
func MakeDescriptor(code Code, mac bool) Descriptor {
	return Descriptor{Key: code, Name: displayName(code, mac)}
}

// IsEmpty returns true for the unset placeholder.
func (d Descriptor) IsEmpty() bool {
	return d.Key == 0 && d.Name == ""
}

func (d Descriptor) String() string {
	return d.Name
}

func displayName(code Code, mac bool) string {
	id, mods := code.Decode()
	if mac {
		return mods.MacString() + id.String()
	}
	if mods.IsEmpty() {
		return id.String()
	}
	return mods.String() + "+" + id.String()
}
