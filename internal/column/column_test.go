package column

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gridstate/internal/ir"
)

func TestParseKind(t *testing.T) {
	for _, name := range []string{"text", "number", "date", "checkbox", "combo", "none"} {
		k, ok := ParseKind(name)
		require.True(t, ok, name)
		assert.Equal(t, name, k.String())
	}

	k, ok := ParseKind("")
	assert.True(t, ok)
	assert.Equal(t, KindNone, k)

	_, ok = ParseKind("slider")
	assert.False(t, ok)
}

func TestColumn_Editable(t *testing.T) {
	assert.True(t, Column{Key: "a", Editor: TextEditor{}}.Editable())
	assert.False(t, Column{Key: "a"}.Editable())
	assert.False(t, Column{Key: "a", Editor: TextEditor{}, ReadOnly: true}.Editable())
	assert.False(t, Column{Key: "a", Editor: TextEditor{}, Action: true}.Editable())
}

func TestDefaultValue(t *testing.T) {
	assert.Equal(t, ir.Bool(false), DefaultValue(Column{Editor: CheckboxEditor{}}))
	assert.Equal(t, ir.Number(0), DefaultValue(Column{Editor: NumberEditor{}}))
	assert.Equal(t, ir.Null{}, DefaultValue(Column{Editor: DateEditor{}}))
	assert.Equal(t, ir.String(""), DefaultValue(Column{Editor: TextEditor{}}))
	assert.Equal(t, ir.String(""), DefaultValue(Column{Editor: ComboEditor{}}))
	assert.Equal(t, ir.String(""), DefaultValue(Column{}))
}

func TestEditableKeys(t *testing.T) {
	cols := []Column{
		{Key: "id"},
		{Key: "name", Editor: TextEditor{}},
		{Key: "locked", Editor: TextEditor{}, ReadOnly: true},
		{Key: "qty", Editor: NumberEditor{}},
		{Key: "actions", Action: true},
	}
	assert.Equal(t, []string{"name", "qty"}, EditableKeys(cols))
	assert.Equal(t, 3, Index(cols)["qty"])
}

func TestComboConfig_Lookup(t *testing.T) {
	cfg := ComboConfig{Options: []Option{
		{Value: ir.Number(1), Display: "Open"},
		{Value: ir.Number(2), Display: "Closed"},
	}}

	opt, ok := cfg.Lookup(ir.String("2"))
	require.True(t, ok)
	assert.Equal(t, "Closed", opt.Display)

	_, ok = cfg.Lookup(ir.String("3"))
	assert.False(t, ok)
	assert.True(t, cfg.Closed())

	cfg.QueryMode = QueryRemote
	assert.False(t, cfg.Closed())
}
