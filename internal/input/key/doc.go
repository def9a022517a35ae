// Package key provides key codes, descriptors and binding token parsing.
//
// This package defines the fundamental types for representing shortcuts:
//
//   - ID: a DOM-style key identifier (65 for A, 112 for F1, 186 for ';')
//   - Modifier: a bitmask over Shift, Ctrl, Alt and Meta
//   - Code: an ID and a Modifier packed into one integer
//   - Descriptor: a Code with its display name
//   - Event: a key press as reported by a host
//
// # Key Codes
//
// A Code keeps the identifier in the low 16 bits and the modifiers in
// bits 16-19. Encode and Decode are exact inverses, and distinct
// (identifier, modifiers) pairs never produce the same Code.
//
// # Binding Tokens
//
// Tokens are written "Modifier-Modifier-Key":
//
//	Ctrl-Shift-P
//	CtrlOrMeta-S
//	Alt-Left
//	Ctrl--
package key
