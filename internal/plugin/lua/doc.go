// Package lua runs entity matchers written in Lua.
//
// A matcher script defines a global match function. It receives the text of
// one plain text node and returns the 1-based inclusive bounds of the first
// entity, the same pair string.find returns, or nil when there is none:
//
//	function match(text)
//	    return string.find(text, "@%w+")
//	end
//
// Scripts run in a sandbox: only the base, table, string and math libraries
// are available, and the functions that load code from files or strings are
// removed. Every call is bounded by a timeout.
package lua
