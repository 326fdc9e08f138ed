// Package ir provides the value and row model shared by every gridstate package.
//
// This package contains data types only. All other internal packages
// import ir; ir imports nothing internal. This keeps the row model the
// foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Values are a sealed set: Null, String, Number, Bool
//   - Dates travel as String values and are interpreted by the column layer
//   - Rows preserve key insertion order, so exported rows look like the
//     rows that were loaded
//   - Rows carry business data only; engine metadata lives in the grid
//     package's side table
package ir
