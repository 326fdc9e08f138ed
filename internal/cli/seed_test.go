package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRows(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rows.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestSeedInsertsRows(t *testing.T) {
	gridsDir := writeGrids(t, peopleGrid)
	db := filepath.Join(t.TempDir(), "people.db")

	out, err := execute(t, NewSeedCommand, "text", "--db", db, gridsDir, "people", writeRows(t, peopleRows))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Seeded 3 row(s) into grid people")

	resp := showJSON(t, "--db", db, gridsDir, "people")
	assert.Equal(t, 3, resp.Data.TotalItems)
}

func TestSeedAssignsIDs(t *testing.T) {
	gridsDir := writeGrids(t, peopleGrid)
	db := filepath.Join(t.TempDir(), "people.db")

	_, err := execute(t, NewSeedCommand, "text", "--db", db, gridsDir, "people",
		writeRows(t, `[{"name": "Dee", "qty": 1}, {"name": "Eli", "qty": 2}]`))
	require.NoError(t, err)

	resp := showJSON(t, "--db", db, gridsDir, "people")
	require.Len(t, resp.Data.Rows, 2)
	assert.Equal(t, float64(1), resp.Data.Rows[0]["id"])
	assert.Equal(t, float64(2), resp.Data.Rows[1]["id"])
}

func TestSeedRejectsInvalidRows(t *testing.T) {
	gridsDir := writeGrids(t, peopleGrid)
	db := filepath.Join(t.TempDir(), "people.db")
	rows := writeRows(t, `[{"id": 1, "name": "Ana", "qty": -5}]`)

	out, err := execute(t, NewSeedCommand, "text", "--db", db, gridsDir, "people", rows)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "E012")
	assert.Contains(t, out, "row 0")
	assert.Contains(t, out, "Value must be at least 0")

	_, err = execute(t, NewSeedCommand, "text", "--db", db, gridsDir, "people", rows, "--force")
	require.NoError(t, err)
}

func TestSeedMalformedJSON(t *testing.T) {
	gridsDir := writeGrids(t, peopleGrid)
	db := filepath.Join(t.TempDir(), "people.db")

	_, err := execute(t, NewSeedCommand, "text", "--db", db, gridsDir, "people", writeRows(t, `{"id": 1}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E012")
}

func TestSeedUnknownGrid(t *testing.T) {
	gridsDir := writeGrids(t, peopleGrid)
	db := filepath.Join(t.TempDir(), "people.db")

	_, err := execute(t, NewSeedCommand, "text", "--db", db, gridsDir, "orders", writeRows(t, "[]"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E010")
}

func TestSeedRequiresDB(t *testing.T) {
	gridsDir := writeGrids(t, peopleGrid)

	_, err := execute(t, NewSeedCommand, "text", gridsDir, "people", writeRows(t, "[]"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db")
}
