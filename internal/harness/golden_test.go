package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gridstate/internal/grid"
	"github.com/roach88/gridstate/internal/ir"
)

func TestSnapshot_EmptyResult(t *testing.T) {
	data, err := Snapshot("empty", NewResult())
	require.NoError(t, err)
	assert.Equal(t,
		`{"changes":{"added":[],"deleted":[],"modified":[]},"outcomes":[],"rows":[],"saves":0,"scenario":"empty"}`,
		string(data))
}

func TestSnapshot_SortsKeysAndKeepsRowOrder(t *testing.T) {
	r := NewResult()
	r.AddOutcome("edit", "applied")
	r.Rows = []*ir.Row{
		ir.NewRow(ir.P("name", "Bob"), ir.P("id", 2)),
		ir.NewRow(ir.P("name", "Ana"), ir.P("id", 1)),
	}
	r.Changes = grid.Changes{Modified: []*ir.Row{r.Rows[0]}}
	r.Saves = 3

	data, err := Snapshot("sorted", r)
	require.NoError(t, err)
	assert.Equal(t,
		`{"changes":{"added":[],"deleted":[],"modified":[{"id":2,"name":"Bob"}]},`+
			`"outcomes":["edit: applied"],`+
			`"rows":[{"id":2,"name":"Bob"},{"id":1,"name":"Ana"}],`+
			`"saves":3,"scenario":"sorted"}`,
		string(data))
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)

	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
