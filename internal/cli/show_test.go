package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gridstate/internal/ir"
)

func TestShowFirstPageText(t *testing.T) {
	gridsDir, db := seededPeople(t)

	out, err := execute(t, NewShowCommand, "text", "--db", db, gridsDir, "people")
	require.NoError(t, err)

	assert.Contains(t, out, "Name")
	assert.Contains(t, out, "Ana")
	assert.Contains(t, out, "Bob")
	assert.NotContains(t, out, "Cy")
	assert.Contains(t, out, "✓")
	assert.Contains(t, out, "page 1/2, 3 row(s)")
}

func TestShowSecondPage(t *testing.T) {
	gridsDir, db := seededPeople(t)

	resp := showJSON(t, "--db", db, gridsDir, "people", "--page", "2")
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Data.Page)
	assert.Equal(t, 2, resp.Data.TotalPages)
	require.Len(t, resp.Data.Rows, 1)
	assert.Equal(t, "Cy", resp.Data.Rows[0]["name"])
}

func TestShowPageSizeOverride(t *testing.T) {
	gridsDir, db := seededPeople(t)

	resp := showJSON(t, "--db", db, gridsDir, "people", "--page-size", "10")
	assert.Equal(t, 10, resp.Data.PageSize)
	assert.Equal(t, 1, resp.Data.TotalPages)
	assert.Len(t, resp.Data.Rows, 3)
}

func TestShowPageOutOfRange(t *testing.T) {
	gridsDir, db := seededPeople(t)

	out, err := execute(t, NewShowCommand, "text", "--db", db, gridsDir, "people", "--page", "5")
	require.Error(t, err)
	assert.Contains(t, out, "page 5 out of range (1-2)")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestShowWhere(t *testing.T) {
	gridsDir, db := seededPeople(t)

	resp := showJSON(t, "--db", db, gridsDir, "people", "--where", "name=Bob")
	assert.Equal(t, 1, resp.Data.TotalItems)
	require.Len(t, resp.Data.Rows, 1)
	assert.Equal(t, float64(7), resp.Data.Rows[0]["qty"])
}

func TestShowSortDescending(t *testing.T) {
	gridsDir, db := seededPeople(t)

	resp := showJSON(t, "--db", db, gridsDir, "people", "--sort=-qty", "--page-size", "3")
	require.Len(t, resp.Data.Rows, 3)
	assert.Equal(t, "Bob", resp.Data.Rows[0]["name"])
	assert.Equal(t, "Cy", resp.Data.Rows[1]["name"])
	assert.Equal(t, "Ana", resp.Data.Rows[2]["name"])
}

func TestShowBadFilterFlag(t *testing.T) {
	gridsDir, db := seededPeople(t)

	_, err := execute(t, NewShowCommand, "text", "--db", db, gridsDir, "people", "--where", "name")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E012")
}

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"null", "null"},
		{"true", "true"},
		{"false", "false"},
		{"12", "12"},
		{"1.5", "1.5"},
		{"Ana", `"Ana"`},
		{"", `""`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			data, err := ir.MarshalCanonical(parseLiteral(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"status=open"}, []string{"name=an"}, []string{"-qty", "name"})
	require.NoError(t, err)
	require.Len(t, params.Sort, 2)
	assert.Equal(t, "qty", params.Sort[0].Field)
	assert.True(t, params.Sort[0].Desc)
	assert.False(t, params.Sort[1].Desc)
	assert.NotNil(t, params.Filter)

	_, err = parseParams(nil, []string{"=x"}, nil)
	assert.Error(t, err)
}
