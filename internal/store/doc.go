// Package store provides a SQLite-backed grid.DataSource.
//
// Each row is stored as one JSON object in grid_rows, keyed by the string
// form of its id property. Every successful save is recorded in the saves
// audit table with a digest of the canonical diff.
//
// # Critical Patterns
//
// Deterministic reads:
//   - every SELECT ends with ORDER BY seq ASC (insertion order)
//   - user sort keys come first, seq breaks ties
//
// Atomic saves:
//   - a diff is applied in one transaction: inserts, updates, deletes,
//     then the audit row
//   - an update of a missing row aborts the whole save
//   - deletes of missing rows are no-ops so a retried save succeeds
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
