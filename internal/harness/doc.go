// Package harness runs scripted grid sessions against a real store.
//
// A scenario seeds an in-memory SQLite store, loads a grid from it, replays
// a list of user operations and checks assertions on the final state. The
// snapshot of every run can be compared against a golden file.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: edit_and_undo
//	description: "What this scenario validates"
//	page_size: 25
//	columns:
//	  - key: id
//	    readOnly: true
//	  - key: name
//	    editor: text
//	    required: true
//	rows:
//	  - { id: 1, name: Ana }
//	steps:
//	  - op: edit
//	    row: 0
//	    column: name
//	    value: Anna
//	    expect: applied
//	  - op: undo
//	assertions:
//	  - type: has_changes
//	    expect: false
//
// Unknown fields are rejected so typos fail loudly.
//
// # Outcomes
//
// Every step records "op: outcome". Edits report the commit result
// (applied, unchanged, invalid, vetoed, refused). Adds report the new row
// index and delete_selected the number of rows deleted. Saves report "ok"
// or the grid error code. Everything else reports "ok" or "refused".
//
// # Deterministic Testing
//
// The harness uses testutil.DeterministicClock for change timestamps and
// save records, and testutil.SequenceGenerator for temporary row ids, so
// the same scenario always yields the same snapshot.
package harness
