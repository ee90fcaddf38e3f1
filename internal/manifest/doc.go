// Package manifest loads the list of fixture cases a run executes.
//
// A manifest is a JSON (or YAML) array of objects:
//
//	[
//	  {"desc": "identity", "in": "basic.json", "out": "basic.json"},
//	  {"desc": "edit",     "in": "basic.json", "cmd": "edit.cmd", "out": "edit.out"}
//	]
//
// Fixture paths are relative to the manifest's fixture directory. The shape
// of every entry is checked against an embedded CUE schema before it is
// decoded, so a malformed manifest is rejected before any case runs.
package manifest
