// Package config loads and caches Drop Four rule sets.
//
// A rule set is a small JSON document describing board dimensions and the
// win length:
//
//	{
//	  "name": "classic",
//	  "description": "Standard 7x6 board",
//	  "columns": 7,
//	  "rows": 6,
//	  "connect": 4
//	}
//
// The manager reads rule files from a directory, validates them through
// the engine, and caches parsed results. A built-in classic rule set is
// always available, so a server can run without any config directory.
package config
