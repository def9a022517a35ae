// Package tcellkey converts terminal key events into dispatcher key events.
package tcellkey

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/keychord/internal/input/key"
)

type special struct {
	id  key.ID
	raw string
}

// specialKeys maps tcell named keys. KeyBackspace, KeyTab, KeyEnter and
// KeyEscape share values with KeyCtrlH, KeyCtrlI, KeyCtrlM and
// KeyCtrlLeftSq, so those control chords arrive as the named key.
var specialKeys = map[tcell.Key]special{
	tcell.KeyEnter:      {key.IDEnter, "Enter"},
	tcell.KeyTab:        {key.IDTab, "Tab"},
	tcell.KeyBacktab:    {key.IDTab, "Tab"},
	tcell.KeyBackspace:  {key.IDBackspace, "Backspace"},
	tcell.KeyBackspace2: {key.IDBackspace, "Backspace"},
	tcell.KeyEscape:     {key.IDEscape, "Escape"},
	tcell.KeyDelete:     {key.IDDelete, "Delete"},
	tcell.KeyInsert:     {key.IDInsert, "Insert"},
	tcell.KeyHome:       {key.IDHome, "Home"},
	tcell.KeyEnd:        {key.IDEnd, "End"},
	tcell.KeyPgUp:       {key.IDPageUp, "PageUp"},
	tcell.KeyPgDn:       {key.IDPageDown, "PageDown"},
	tcell.KeyUp:         {key.IDUp, "ArrowUp"},
	tcell.KeyDown:       {key.IDDown, "ArrowDown"},
	tcell.KeyLeft:       {key.IDLeft, "ArrowLeft"},
	tcell.KeyRight:      {key.IDRight, "ArrowRight"},
	tcell.KeyPause:      {key.IDPause, "Pause"},
}

// shiftedDigits maps the characters typed with Shift on the digit row of
// a US layout.
var shiftedDigits = map[rune]rune{
	'!': '1', '@': '2', '#': '3', '$': '4', '%': '5',
	'^': '6', '&': '7', '*': '8', '(': '9', ')': '0',
}

// shiftedPunct lists punctuation typed with Shift on a US layout.
const shiftedPunct = `~_+{}|:"<>?`

// FromEvent converts a tcell key event. It reports false for runes with
// no key on a US layout.
func FromEvent(ev *tcell.EventKey) (key.Event, bool) {
	mods := convertMod(ev.Modifiers())
	k := ev.Key()

	switch {
	case k == tcell.KeyRune:
		return fromRune(ev.Rune(), mods)
	case k >= tcell.KeyF1 && k <= tcell.KeyF12:
		n := int(k - tcell.KeyF1)
		return key.NewEvent(key.IDF1+key.ID(n), mods, fmt.Sprintf("F%d", n+1)), true
	}

	if s, ok := specialKeys[k]; ok {
		if k == tcell.KeyBacktab {
			mods |= key.ModShift
		}
		return key.NewEvent(s.id, mods, s.raw), true
	}

	switch {
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		letter := rune('a' + (k - tcell.KeyCtrlA))
		return key.NewEvent(key.ID(letter-'a'+'A'), mods|key.ModCtrl, string(letter)), true
	case k == tcell.KeyCtrlSpace:
		return key.NewEvent(key.IDSpace, mods|key.ModCtrl, " "), true
	}
	return key.Event{}, false
}

func fromRune(r rune, mods key.Modifier) (key.Event, bool) {
	raw := string(r)
	if base, ok := shiftedDigits[r]; ok {
		return key.NewEvent(key.ID(base), mods|key.ModShift, raw), true
	}

	id, ok := key.IDFromRune(r)
	if !ok {
		return key.Event{}, false
	}
	if (r >= 'A' && r <= 'Z') || strings.ContainsRune(shiftedPunct, r) {
		mods |= key.ModShift
	}
	return key.NewEvent(id, mods, raw), true
}

func convertMod(m tcell.ModMask) key.Modifier {
	var result key.Modifier
	if m&tcell.ModShift != 0 {
		result |= key.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		result |= key.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		result |= key.ModAlt
	}
	if m&tcell.ModMeta != 0 {
		result |= key.ModMeta
	}
	return result
}
