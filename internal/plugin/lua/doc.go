// Package lua runs Lua scripts that register shortcut actions.
//
// A script declares actions through the keychord module:
//
//	keychord.action("console.clear", {
//	    title = "Clear console",
//	    contexts = {"console"},
//	}, function(ctx)
//	    return true
//	end)
//
// The handler receives a table whose flavors field lists the active UI
// flavors. Its first return value, converted with Lua truthiness, tells
// the dispatcher whether the shortcut was handled. A Lua error becomes
// the action's Execute error.
//
// Only the base, table, string and math libraries are opened. print
// writes to the state's logger.
package lua
