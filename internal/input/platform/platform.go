// Package platform describes the host environment the dispatcher runs in.
package platform

import (
	"runtime"
	"strings"
)

// Platform names
const (
	Mac     = "mac"
	Windows = "windows"
	Linux   = "linux"
	Auto    = "auto"
)

// Platform is the host environment queried during key dispatch.
type Platform interface {
	// Name returns the platform identifier used in binding declarations.
	Name() string
	IsMac() bool
	IsWin() bool
	// IsEditing returns true while a text field has focus.
	IsEditing() bool
}

// Static is a Platform with a fixed name. Editing is optional.
type Static struct {
	Platform string
	Editing  func() bool
}

// New returns a Static platform for name, resolving "auto".
func New(name string) *Static {
	return &Static{Platform: Resolve(name)}
}

func (s *Static) Name() string { return s.Platform }
func (s *Static) IsMac() bool  { return s.Platform == Mac }
func (s *Static) IsWin() bool  { return s.Platform == Windows }

// IsEditing reports the Editing callback, or false without one.
func (s *Static) IsEditing() bool {
	return s.Editing != nil && s.Editing()
}

// Detect maps runtime.GOOS to a platform name.
func Detect() string {
	return fromGOOS(runtime.GOOS)
}

func fromGOOS(goos string) string {
	switch goos {
	case "darwin", "ios":
		return Mac
	case "windows":
		return Windows
	default:
		return Linux
	}
}

// Resolve normalizes a configured platform name. An empty name or
// "auto" is replaced by Detect. Other names are lower-cased and kept,
// so that bindings for platforms such as "android" still match.
func Resolve(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "", Auto:
		return Detect()
	case "darwin", "macos", "osx":
		return Mac
	case "win", "win32":
		return Windows
	}
	return name
}
