package tcellkey

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/keychord/internal/input/key"
)

func TestFromEventRunes(t *testing.T) {
	tests := []struct {
		name string
		r    rune
		mod  tcell.ModMask
		want key.Code
		raw  string
	}{
		{"lower letter", 'k', tcell.ModNone, key.Encode('K', key.ModNone), "k"},
		{"upper letter implies shift", 'K', tcell.ModNone, key.Encode('K', key.ModShift), "K"},
		{"alt letter", 'x', tcell.ModAlt, key.Encode('X', key.ModAlt), "x"},
		{"digit", '7', tcell.ModNone, key.Encode('7', key.ModNone), "7"},
		{"shifted digit", '@', tcell.ModNone, key.Encode('2', key.ModShift), "@"},
		{"punctuation", '/', tcell.ModNone, key.Encode(key.IDSlash, key.ModNone), "/"},
		{"shifted punctuation", '?', tcell.ModNone, key.Encode(key.IDSlash, key.ModShift), "?"},
		{"space", ' ', tcell.ModNone, key.Encode(key.IDSpace, key.ModNone), " "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := FromEvent(tcell.NewEventKey(tcell.KeyRune, tt.r, tt.mod))
			require.True(t, ok)
			assert.Equal(t, tt.want, ev.Code)
			assert.Equal(t, tt.raw, ev.Key)
		})
	}
}

func TestFromEventSpecialKeys(t *testing.T) {
	tests := []struct {
		k    tcell.Key
		mod  tcell.ModMask
		want key.Code
		raw  string
	}{
		{tcell.KeyEscape, tcell.ModNone, key.Encode(key.IDEscape, key.ModNone), "Escape"},
		{tcell.KeyEnter, tcell.ModNone, key.Encode(key.IDEnter, key.ModNone), "Enter"},
		{tcell.KeyTab, tcell.ModNone, key.Encode(key.IDTab, key.ModNone), "Tab"},
		{tcell.KeyBacktab, tcell.ModNone, key.Encode(key.IDTab, key.ModShift), "Tab"},
		{tcell.KeyDelete, tcell.ModNone, key.Encode(key.IDDelete, key.ModNone), "Delete"},
		{tcell.KeyUp, tcell.ModShift, key.Encode(key.IDUp, key.ModShift), "ArrowUp"},
		{tcell.KeyPgDn, tcell.ModCtrl, key.Encode(key.IDPageDown, key.ModCtrl), "PageDown"},
		{tcell.KeyF1, tcell.ModNone, key.Encode(key.IDF1, key.ModNone), "F1"},
		{tcell.KeyF8, tcell.ModShift, key.Encode(key.IDF1+7, key.ModShift), "F8"},
		{tcell.KeyF12, tcell.ModNone, key.Encode(key.IDF12, key.ModNone), "F12"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			ev, ok := FromEvent(tcell.NewEventKey(tt.k, 0, tt.mod))
			require.True(t, ok)
			assert.Equal(t, tt.want, ev.Code)
			assert.Equal(t, tt.raw, ev.Key)
		})
	}
}

func TestFromEventControlLetters(t *testing.T) {
	ev, ok := FromEvent(tcell.NewEventKey(tcell.KeyCtrlB, 0, tcell.ModCtrl))
	require.True(t, ok)
	assert.Equal(t, key.Encode('B', key.ModCtrl), ev.Code)

	ev, ok = FromEvent(tcell.NewEventKey(tcell.KeyCtrlZ, 0, tcell.ModCtrl|tcell.ModShift))
	require.True(t, ok)
	assert.Equal(t, key.Encode('Z', key.ModCtrl|key.ModShift), ev.Code)
}

func TestFromEventUnmapped(t *testing.T) {
	_, ok := FromEvent(tcell.NewEventKey(tcell.KeyRune, 'é', tcell.ModNone))
	assert.False(t, ok)

	_, ok = FromEvent(tcell.NewEventKey(tcell.KeyF40, 0, tcell.ModNone))
	assert.False(t, ok)
}

func TestConvertMod(t *testing.T) {
	assert.Equal(t, key.ModNone, convertMod(tcell.ModNone))
	assert.Equal(t, key.ModCtrl|key.ModMeta, convertMod(tcell.ModCtrl|tcell.ModMeta))
	assert.Equal(t, key.ModShift|key.ModAlt, convertMod(tcell.ModShift|tcell.ModAlt))
}
