// Package compiler turns CUE grid definitions into GridConfig values and
// checks them.
//
// A definition file declares one or more grids under the top-level grid
// field:
//
//	grid: orders: {
//		idProperty: "id"
//		pageSize:   20
//		columns: [
//			{key: "id", label: "ID", readOnly: true},
//			{key: "name", label: "Name", editor: "text", required: true},
//		]
//	}
//
// CompileGrid decodes one such value. Validate reports every problem it
// finds at once; column.Build would silently fall back on the same input.
package compiler
