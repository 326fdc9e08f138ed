// Package grid implements the editable-grid state engine.
//
// A Grid holds a full, unpaginated dataset and tracks every pending change
// against it. It is built from five cooperating parts:
//
// ChangeStore:
// Pure bookkeeping over the row slice. Tracks modified cells (one record per
// "rowIndex:columnKey"), rows added client-side, and rows marked for deletion,
// and produces the created/updated/deleted diff handed to the DataSource.
//
// EditSession:
// The cell editing state machine (Idle or Editing). Validates input against
// the column's editor constraints, normalizes it, and skips no-op commits
// using type-aware equality before touching the ChangeStore.
//
// UndoRedoStack:
// Bounded linear history of edit, add and delete commands. Undo dispatches to
// the ChangeStore inverses, redo re-applies the forward operation.
//
// SelectionSet:
// Checkbox selection over the rows of the current page, with the header
// checked/indeterminate/unchecked state.
//
// PageReconciler:
// Windows the dataset into 1-based pages and re-applies pending changes onto
// freshly loaded rows so unsaved work survives a reload.
//
// Row metadata (temporary id, new/modified flags, lifecycle state) is held in
// a side table parallel to the row slice. Rows returned by GetChanges are
// plain clones and never carry engine fields.
//
// Concurrency: a Grid serializes all access with one mutex. The individual
// components are not safe for concurrent use on their own. Event listeners
// run with the grid lock held and must not call back into the Grid.
package grid
