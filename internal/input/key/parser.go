package key

import (
	"errors"
	"fmt"
	"strings"
)

// Parse errors
var (
	ErrInvalidToken    = errors.New("invalid key token")
	ErrUnknownModifier = errors.New("unknown modifier")
	ErrUnknownKey      = errors.New("unknown key")
)

// ParseToken parses a single binding token of the form
// "Modifier-Modifier-Key" into a descriptor.
//
// Supported forms:
//   - Plain keys: "a", "F5", "Esc", "PageDown", "["
//   - With modifiers: "Ctrl-P", "Ctrl-Shift-P", "Alt-Left"
//   - Platform modifiers: "CtrlOrMeta-S" (Meta on mac, Ctrl elsewhere),
//     "ShiftOrOption-F" (Alt on mac, Shift elsewhere)
//   - The minus key itself: "-", "Ctrl--"
//
// Modifier and key names are case-insensitive.
func ParseToken(token string, mac bool) (Descriptor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Descriptor{}, fmt.Errorf("%w: empty", ErrInvalidToken)
	}

	modPart, keyName := splitToken(token)
	if keyName == "" {
		return Descriptor{}, fmt.Errorf("%w: %q has no key", ErrInvalidToken, token)
	}

	var mods Modifier
	if modPart != "" {
		for _, name := range strings.Split(modPart, "-") {
			if name == "" {
				return Descriptor{}, fmt.Errorf("%w: %q has an empty modifier", ErrInvalidToken, token)
			}
			m, ok := ModifierFromName(name, mac)
			if !ok {
				return Descriptor{}, fmt.Errorf("%w %q in %q", ErrUnknownModifier, name, token)
			}
			mods = mods.With(m)
		}
	}

	id, ok := IDFromName(keyName)
	if !ok {
		return Descriptor{}, fmt.Errorf("%w %q in %q", ErrUnknownKey, keyName, token)
	}
	return MakeDescriptor(Encode(id, mods), mac), nil
}

// MustParseToken is like ParseToken but panics on error.
// Intended for tests and static tables.
func MustParseToken(token string, mac bool) Descriptor {
	d, err := ParseToken(token, mac)
	if err != nil {
		panic(err)
	}
	return d
}

// splitToken separates the modifier list from the key name, treating a
// trailing "--" as a minus key.
func splitToken(token string) (mods, keyName string) {
	if token == "-" {
		return "", "-"
	}
	if strings.HasSuffix(token, "--") {
		return token[:len(token)-2], "-"
	}
	idx := strings.LastIndex(token, "-")
	if idx < 0 {
		return "", token
	}
	return token[:idx], token[idx+1:]
}
