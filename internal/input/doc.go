// Package input dispatches key presses to shortcut actions.
//
// The Dispatcher is a two-state machine. While idle, a key that starts a
// chord arms a KeyTimeout timer and is consumed; any other key runs the
// applicable actions bound to it in registration order until one reports
// it handled the shortcut. While a prefix is pending, the next key first
// tries the chords under that prefix. If none handles it, the prefix is
// replayed as a standalone shortcut and the new key is dispatched
// normally. When the timer fires first, the prefix is replayed alone.
//
// One dispatch runs at a time. A key pressed while an action is still
// running, including a key the action sends itself, is queued and
// resolved once the running dispatch finishes.
//
// Keys that would type text into a focused field are left alone, apart
// from function keys, Escape and the platform's undo/redo chords.
//
// # Usage
//
//	idx, _, err := keymap.BuildFromDeclarations(parser, decls, nil)
//	d := input.NewDispatcher(idx, registry, platform.New("linux"),
//	    input.WithLogger(logger))
//	defer d.Close()
//
//	handled, err := d.HandleEvent(ctx, ev)
//	if !handled {
//	    // let the event through to the focused widget
//	}
package input
