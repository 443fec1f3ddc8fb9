// Package config loads composer settings.
//
// Settings come from three sources, later ones overriding earlier ones:
//
//  1. Default values.
//  2. A TOML file.
//  3. LEXBRIDGE_* environment variables.
//
// A minimal file:
//
//	namespace = "notes"
//	mode = "rich"
//	nodes = ["list"]
//
//	[history]
//	delay = "1s"
//
//	[[entities]]
//	name = "hashtag"
//	pattern = '#\w+'
package config
