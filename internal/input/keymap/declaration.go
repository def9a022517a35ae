package keymap

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dshills/keychord/internal/input/key"
)

// Declaration errors
var (
	ErrEmptyShortcut = errors.New("empty shortcut")
	ErrEmptyAction   = errors.New("empty action id")
	ErrTooManyKeys   = errors.New("too many keys in shortcut")
)

// Declaration is a static binding record as written in binding files.
type Declaration struct {
	// ActionID is the action the shortcut triggers.
	ActionID string `json:"actionId" toml:"actionId" yaml:"actionId"`

	// Shortcut holds one token, or two space-separated tokens for a chord.
	Shortcut string `json:"shortcut" toml:"shortcut" yaml:"shortcut"`

	// Platform is an optional comma-separated platform list ("mac",
	// "windows,linux"). Empty means all platforms.
	Platform string `json:"platform,omitempty" toml:"platform,omitempty" yaml:"platform,omitempty"`

	// KeybindSets restricts the declaration to named keybind sets.
	// Empty means every set.
	KeybindSets []string `json:"keybindSets,omitempty" toml:"keybindSets,omitempty" yaml:"keybindSets,omitempty"`

	// Disabled marks an override that turns off a default binding.
	Disabled bool `json:"disabled,omitempty" toml:"disabled,omitempty" yaml:"disabled,omitempty"`

	// Source and Position locate the declaration for error reports.
	// They are filled in by the Loader.
	Source   string `json:"-" toml:"-" yaml:"-"`
	Position int    `json:"-" toml:"-" yaml:"-"`
}

// PlatformMatches reports whether a declared platform list applies to
// the current platform. An empty list applies everywhere.
func PlatformMatches(platforms, current string) bool {
	if strings.TrimSpace(platforms) == "" {
		return true
	}
	for _, p := range strings.Split(platforms, ",") {
		if strings.EqualFold(strings.TrimSpace(p), current) {
			return true
		}
	}
	return false
}

// Parser converts shortcut strings into descriptors for one platform.
type Parser struct {
	// Platform is the current platform name ("mac", "windows", "linux").
	Platform string

	// KeybindSet is the active keybind set. Empty disables set filtering.
	KeybindSet string
}

// IsMac returns true if the parser targets macOS.
func (p Parser) IsMac() bool {
	return strings.EqualFold(p.Platform, "mac")
}

// Parse converts a shortcut string into descriptors. It returns one
// descriptor for a single shortcut, or two for a chord where the first
// is the prefix. A nil result with a nil error means the binding does
// not apply to the current platform.
func (p Parser) Parse(shortcut, platforms string) ([]key.Descriptor, error) {
	if !PlatformMatches(platforms, p.Platform) {
		return nil, nil
	}

	tokens := strings.Fields(shortcut)
	switch {
	case len(tokens) == 0:
		return nil, ErrEmptyShortcut
	case len(tokens) > 2:
		return nil, fmt.Errorf("%w: %q has %d keys", ErrTooManyKeys, shortcut, len(tokens))
	}

	mac := p.IsMac()
	descs := make([]key.Descriptor, 0, len(tokens))
	for _, tok := range tokens {
		d, err := key.ParseToken(tok, mac)
		if err != nil {
			return nil, err
		}
		descs = append(descs, d)
	}
	return descs, nil
}

// ParseDeclaration converts a declaration into a shortcut of the given
// type. It returns nil with a nil error when the declaration is filtered
// out by platform or keybind set.
func (p Parser) ParseDeclaration(d Declaration, typ Type) (*KeyboardShortcut, error) {
	if strings.TrimSpace(d.ActionID) == "" {
		return nil, ErrEmptyAction
	}
	if !p.inKeybindSet(d.KeybindSets) {
		return nil, nil
	}

	descs, err := p.Parse(d.Shortcut, d.Platform)
	if err != nil || descs == nil {
		return nil, err
	}

	s := &KeyboardShortcut{
		Descriptor: descs[len(descs)-1],
		Action:     d.ActionID,
		Type:       typ,
	}
	if len(descs) == 2 {
		prefix := descs[0]
		s.Prefix = &prefix
	}
	return s, nil
}

func (p Parser) inKeybindSet(sets []string) bool {
	if p.KeybindSet == "" || len(sets) == 0 {
		return true
	}
	return slices.Contains(sets, p.KeybindSet)
}
