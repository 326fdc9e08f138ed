package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const peopleGrid = `
package grids

grid: people: {
	pageSize: 2
	columns: [
		{key: "id", label: "ID", readOnly: true},
		{key: "name", label: "Name", editor: "text", required: true},
		{key: "qty", label: "Qty", editor: "number", min: 0},
		{key: "done", label: "Done", editor: "checkbox"},
	]
}
`

const peopleRows = `[
	{"id": 1, "name": "Ana", "qty": 3, "done": true},
	{"id": 2, "name": "Bob", "qty": 7, "done": false},
	{"id": 3, "name": "Cy", "qty": 5, "done": false}
]`

// writeGrids writes a grids directory holding src as grids.cue.
func writeGrids(t *testing.T, src string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "grids")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "grids.cue"), []byte(src), 0644))
	return dir
}

// seededPeople returns a grids directory and a database holding peopleRows.
func seededPeople(t *testing.T) (gridsDir, dbPath string) {
	t.Helper()
	gridsDir = writeGrids(t, peopleGrid)
	dbPath = filepath.Join(t.TempDir(), "people.db")
	rowsPath := filepath.Join(t.TempDir(), "rows.json")
	require.NoError(t, os.WriteFile(rowsPath, []byte(peopleRows), 0644))

	_, err := execute(t, NewSeedCommand, "text", "--db", dbPath, gridsDir, "people", rowsPath)
	require.NoError(t, err)
	return gridsDir, dbPath
}

// execute runs one command and returns what it wrote to stdout.
func execute(t *testing.T, newCmd func(*RootOptions) *cobra.Command, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := newCmd(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// pageResponse decodes the JSON output of show.
type pageResponse struct {
	Status string `json:"status"`
	Data   struct {
		Page       int              `json:"page"`
		PageSize   int              `json:"page_size"`
		TotalPages int              `json:"total_pages"`
		TotalItems int              `json:"total_items"`
		Rows       []map[string]any `json:"rows"`
	} `json:"data"`
}

func showJSON(t *testing.T, args ...string) pageResponse {
	t.Helper()
	out, err := execute(t, NewShowCommand, "json", args...)
	require.NoError(t, err)
	var resp pageResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	return resp
}
