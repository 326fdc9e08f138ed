// Package query defines the load parameters a Grid passes to its
// DataSource: a filter predicate, sort keys and an optional row window.
//
// Predicate is a sealed interface using the marker method pattern. Only
// types in this package implement it, so backends can switch exhaustively:
//
//	switch p := pred.(type) {
//	case Equals:
//	case Contains:
//	case And:
//	}
//
// Two backends consume Params: Match/Sort evaluate them in memory, and
// package querysql compiles them to parameterized SQLite SQL.
package query
