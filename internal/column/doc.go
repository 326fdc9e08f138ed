// Package column defines grid column definitions and the per-kind editor
// rules: defaults, validation, normalisation, type-aware equality, and
// display formatting.
//
// Editors are a sealed tagged variant. Each kind carries its own constraint
// payload and every rule dispatches with an exhaustive type switch:
//
//	switch ed := col.Editor.(type) {
//	case TextEditor:
//	case NumberEditor:
//	case DateEditor:
//	case CheckboxEditor:
//	case ComboEditor:
//	case nil:
//	    // not editable
//	}
//
// Column configuration arrives as Descriptor values (JSON, YAML, or CUE).
// Build converts descriptors into Columns and never fails: malformed
// pieces fall back to safe defaults and are reported through slog warnings.
package column
