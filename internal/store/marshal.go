package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/gridstate/internal/ir"
)

// marshalRow converts a row to JSON TEXT for storage, keeping key order so
// reloaded rows present their columns as they were saved.
func marshalRow(r *ir.Row) (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("marshal row: %w", err)
	}
	return string(data), nil
}

// unmarshalRow parses stored JSON TEXT into a row.
func unmarshalRow(data string) (*ir.Row, error) {
	r := ir.NewRow()
	if err := json.Unmarshal([]byte(data), r); err != nil {
		return nil, fmt.Errorf("unmarshal row: %w", err)
	}
	return r, nil
}
