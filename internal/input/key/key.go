package key

import (
	"fmt"
	"strings"
)

// ID is a DOM-style key identifier (the KeyboardEvent.keyCode space).
// It occupies the low 16 bits of a Code.
type ID uint16

// Special keys
const (
	IDNone      ID = 0
	IDBackspace ID = 8
	IDTab       ID = 9
	IDEnter     ID = 13
	IDShift     ID = 16
	IDCtrl      ID = 17
	IDAlt       ID = 18
	IDPause     ID = 19
	IDCapsLock  ID = 20
	IDEscape    ID = 27
	IDSpace     ID = 32
	IDPageUp    ID = 33
	IDPageDown  ID = 34
	IDEnd       ID = 35
	IDHome      ID = 36
	IDLeft      ID = 37
	IDUp        ID = 38
	IDRight     ID = 39
	IDDown      ID = 40
	IDInsert    ID = 45
	IDDelete    ID = 46
)

// Digits and letters use their ASCII code.
const (
	ID0 ID = '0'
	ID9 ID = '9'
	IDA ID = 'A'
	IDZ ID = 'Z'
)

// Meta keys. Browsers report 91/92 for left/right Win or Cmd, 93 for the
// right Cmd on macOS, and 224 for Meta on some engines.
const (
	IDMeta      ID = 91
	IDMetaRight ID = 92
	IDMenu      ID = 93
	IDOSMeta    ID = 224
)

// Keypad keys
const (
	IDNumpad0        ID = 96
	IDNumpad9        ID = 105
	IDNumpadMultiply ID = 106
	IDNumpadPlus     ID = 107
	IDNumpadMinus    ID = 109
	IDNumpadPeriod   ID = 110
	IDNumpadDivide   ID = 111
)

// Function keys
const (
	IDF1  ID = 112
	IDF12 ID = 123
)

// Punctuation
const (
	IDSemicolon    ID = 186
	IDEqual        ID = 187
	IDComma        ID = 188
	IDMinus        ID = 189
	IDPeriod       ID = 190
	IDSlash        ID = 191
	IDBackquote    ID = 192
	IDBracketLeft  ID = 219
	IDBackslash    ID = 220
	IDBracketRight ID = 221
	IDQuote        ID = 222
)

// IsFunctionKey returns true for F1-F12.
func (id ID) IsFunctionKey() bool {
	return id >= IDF1 && id <= IDF12
}

// IsLetter returns true for A-Z.
func (id ID) IsLetter() bool {
	return id >= IDA && id <= IDZ
}

// IsDigit returns true for the number row 0-9.
func (id ID) IsDigit() bool {
	return id >= ID0 && id <= ID9
}

// IsModifierKey returns true for a bare modifier key (Shift, Control,
// Alt, Meta or Win) pressed on its own.
func IsModifierKey(id ID) bool {
	switch id {
	case IDShift, IDCtrl, IDAlt, IDMeta, IDMetaRight, IDMenu, IDOSMeta:
		return true
	}
	return false
}

var displayNames = map[ID]string{
	IDBackspace:      "Backspace",
	IDTab:            "Tab",
	IDEnter:          "Enter",
	IDShift:          "Shift",
	IDCtrl:           "Ctrl",
	IDAlt:            "Alt",
	IDPause:          "Pause",
	IDCapsLock:       "CapsLock",
	IDEscape:         "Esc",
	IDSpace:          "Space",
	IDPageUp:         "PageUp",
	IDPageDown:       "PageDown",
	IDEnd:            "End",
	IDHome:           "Home",
	IDLeft:           "Left",
	IDUp:             "Up",
	IDRight:          "Right",
	IDDown:           "Down",
	IDInsert:         "Insert",
	IDDelete:         "Delete",
	IDMeta:           "Meta",
	IDMetaRight:      "Meta",
	IDMenu:           "Menu",
	IDOSMeta:         "Meta",
	IDNumpadMultiply: "Num*",
	IDNumpadPlus:     "Num+",
	IDNumpadMinus:    "Num-",
	IDNumpadPeriod:   "Num.",
	IDNumpadDivide:   "Num/",
	IDSemicolon:      ";",
	IDEqual:          "=",
	IDComma:          ",",
	IDMinus:          "-",
	IDPeriod:         ".",
	IDSlash:          "/",
	IDBackquote:      "`",
	IDBracketLeft:    "[",
	IDBackslash:      "\\",
	IDBracketRight:   "]",
	IDQuote:          "'",
}

// String returns the display name of the key.
func (id ID) String() string {
	switch {
	case id.IsLetter(), id.IsDigit():
		return string(rune(id))
	case id.IsFunctionKey():
		return fmt.Sprintf("F%d", id-IDF1+1)
	case id >= IDNumpad0 && id <= IDNumpad9:
		return fmt.Sprintf("Num%d", id-IDNumpad0)
	}
	if name, ok := displayNames[id]; ok {
		return name
	}
	return fmt.Sprintf("Key(%d)", uint16(id))
}

// keyNameMap maps binding key names (lowercase) to identifiers.
var keyNameMap = map[string]ID{
	"backspace":          IDBackspace,
	"tab":                IDTab,
	"enter":              IDEnter,
	"return":             IDEnter,
	"shift":              IDShift,
	"ctrl":               IDCtrl,
	"control":            IDCtrl,
	"alt":                IDAlt,
	"pause":              IDPause,
	"capslock":           IDCapsLock,
	"esc":                IDEscape,
	"escape":             IDEscape,
	"space":              IDSpace,
	"pageup":             IDPageUp,
	"pagedown":           IDPageDown,
	"end":                IDEnd,
	"home":               IDHome,
	"left":               IDLeft,
	"up":                 IDUp,
	"right":              IDRight,
	"down":               IDDown,
	"insert":             IDInsert,
	"delete":             IDDelete,
	"del":                IDDelete,
	"meta":               IDMeta,
	"numpadplus":         IDNumpadPlus,
	"numpadminus":        IDNumpadMinus,
	"semicolon":          IDSemicolon,
	"plus":               IDEqual,
	"equal":              IDEqual,
	"comma":              IDComma,
	"minus":              IDMinus,
	"period":             IDPeriod,
	"slash":              IDSlash,
	"questionmark":       IDSlash,
	"apostrophe":         IDBackquote,
	"tilde":              IDBackquote,
	"backquote":          IDBackquote,
	"leftsquarebracket":  IDBracketLeft,
	"rightsquarebracket": IDBracketRight,
	"backslash":          IDBackslash,
	"singlequote":        IDQuote,
	"quote":              IDQuote,
}

// charIDs maps printable punctuation to the key that produces it on a
// US layout.
var charIDs = map[rune]ID{
	' ':  IDSpace,
	';':  IDSemicolon,
	':':  IDSemicolon,
	'=':  IDEqual,
	'+':  IDEqual,
	',':  IDComma,
	'<':  IDComma,
	'-':  IDMinus,
	'_':  IDMinus,
	'.':  IDPeriod,
	'>':  IDPeriod,
	'/':  IDSlash,
	'?':  IDSlash,
	'`':  IDBackquote,
	'~':  IDBackquote,
	'[':  IDBracketLeft,
	'{':  IDBracketLeft,
	'\\': IDBackslash,
	'|':  IDBackslash,
	']':  IDBracketRight,
	'}':  IDBracketRight,
	'\'': IDQuote,
	'"':  IDQuote,
}

// IDFromName returns the identifier for a binding key name. Single
// characters map to the key that types them (letters case-insensitively),
// longer names are matched case-insensitively against the named keys and
// F1-F12.
func IDFromName(name string) (ID, bool) {
	runes := []rune(name)
	if len(runes) == 1 {
		return IDFromRune(runes[0])
	}

	lower := strings.ToLower(strings.TrimSpace(name))
	if id, ok := keyNameMap[lower]; ok {
		return id, true
	}
	if len(lower) >= 2 && lower[0] == 'f' {
		var n int
		if _, err := fmt.Sscanf(lower[1:], "%d", &n); err == nil && n >= 1 && n <= 12 && fmt.Sprint(n) == lower[1:] {
			return IDF1 + ID(n-1), true
		}
	}
	return IDNone, false
}

// IDFromRune returns the identifier of the key that types r.
func IDFromRune(r rune) (ID, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return ID(r - 'a' + 'A'), true
	case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return ID(r), true
	}
	id, ok := charIDs[r]
	return id, ok
}
