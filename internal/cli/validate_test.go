package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValidGrids(t *testing.T) {
	dir := writeGrids(t, peopleGrid)

	out, err := execute(t, NewValidateCommand, "text", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All grids valid (1)")
}

func TestValidateValidGridsJSON(t *testing.T) {
	dir := writeGrids(t, peopleGrid)

	out, err := execute(t, NewValidateCommand, "json", dir)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, []string{"people"}, resp.Data.Grids)
}

func TestValidateNonExistentDirectory(t *testing.T) {
	out, err := execute(t, NewValidateCommand, "text", "/nonexistent/directory/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E005") // ErrCodeNotFound
	assert.Contains(t, out, "not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateEmptyDirectory(t *testing.T) {
	out, err := execute(t, NewValidateCommand, "text", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E003")
	assert.Contains(t, out, "no CUE files found")
}

func TestValidateNoGrids(t *testing.T) {
	dir := writeGrids(t, "package grids\n\nother: 1\n")

	out, err := execute(t, NewValidateCommand, "text", dir)
	require.Error(t, err)
	assert.Contains(t, out, "E008")
}

func TestValidateDuplicateKeys(t *testing.T) {
	dir := writeGrids(t, `
package grids

grid: bad: columns: [
	{key: "name", editor: "text"},
	{key: "name", editor: "number"},
]
`)

	out, err := execute(t, NewValidateCommand, "text", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "E101: grid.bad.columns[1].key")
}

func TestValidateCollectsAllErrorsJSON(t *testing.T) {
	dir := writeGrids(t, `
package grids

grid: bad: {
	pageSize: -1
	columns: [
		{key: "qty", editor: "slider"},
		{key: "qty", editor: "number"},
	]
}
`)

	out, err := execute(t, NewValidateCommand, "json", dir)
	require.Error(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.NotNil(t, resp.Error)

	codes := map[string]bool{}
	for _, e := range resp.Data.Errors {
		codes[e.Code] = true
	}
	assert.True(t, codes["E101"], "duplicate key")
	assert.True(t, codes["E102"], "unknown editor")
	assert.True(t, codes["E107"], "negative page size")
}

func TestValidateVerboseOutput(t *testing.T) {
	dir := writeGrids(t, peopleGrid)

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text", Verbose: true})
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs([]string{dir})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, errOut.String(), "Validating grid: people")
	assert.NotContains(t, out.String(), "Validating grid")
}
