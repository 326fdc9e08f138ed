package column

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/gridstate/internal/ir"
)

func TestEqual_TypeAware(t *testing.T) {
	text := Column{Key: "t", Editor: TextEditor{}}
	num := Column{Key: "n", Editor: NumberEditor{}}
	date := Column{Key: "d", Editor: DateEditor{}}
	check := Column{Key: "c", Editor: CheckboxEditor{}}

	tests := []struct {
		name string
		col  Column
		a, b ir.Value
		want bool
	}{
		{"text null vs empty", text, ir.Null{}, ir.String(""), true},
		{"text same", text, ir.String("A"), ir.String("A"), true},
		{"text differ", text, ir.String("A"), ir.String("A2"), false},
		{"text NFC", text, ir.String("e\u0301"), ir.String("\u00e9"), true},
		{"text number vs string", text, ir.Number(5), ir.String("5"), true},

		{"number string vs number", num, ir.String("5.0"), ir.Number(5), true},
		{"number prefix parse", num, ir.String("12abc"), ir.Number(12), true},
		{"number differ", num, ir.Number(1), ir.Number(2), false},
		{"number null vs empty", num, ir.Null{}, ir.String(""), true},
		{"number NaN vs empty", num, ir.String("abc"), ir.Null{}, true},
		{"number zero vs empty", num, ir.Number(0), ir.String(""), false},

		{"date layouts", date, ir.String("2024-03-05"), ir.String("2024-03-05T10:30:00Z"), true},
		{"date slash layout", date, ir.String("03/05/2024"), ir.String("2024-03-05"), true},
		{"date differ", date, ir.String("2024-03-05"), ir.String("2024-03-06"), false},
		{"date unparsable vs null", date, ir.String("soon"), ir.Null{}, true},

		{"checkbox same", check, ir.Bool(true), ir.Bool(true), true},
		{"checkbox differ", check, ir.Bool(true), ir.Bool(false), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.col, tt.a, tt.b))
			assert.Equal(t, tt.want, Equal(tt.col, tt.b, tt.a), "symmetric")
		})
	}
}

func TestNormalizeNumber(t *testing.T) {
	assert.Equal(t, "", NormalizeNumber(ir.Null{}))
	assert.Equal(t, "", NormalizeNumber(ir.String("")))
	assert.Equal(t, "3.5", NormalizeNumber(ir.String(" 3.50px")))
	assert.Equal(t, "-2", NormalizeNumber(ir.Number(-2)))
	assert.Equal(t, "0.5", NormalizeNumber(ir.String(".5")))
	assert.Equal(t, "Infinity", NormalizeNumber(ir.String("Infinity")))
	assert.Equal(t, "", NormalizeNumber(ir.Bool(true)))
}

func TestNormalizeDate(t *testing.T) {
	d, ok := NormalizeDate(ir.String("Jan 2, 2025"))
	assert.True(t, ok)
	assert.Equal(t, "2025-01-02", d)

	d, ok = NormalizeDate(ir.Number(0))
	assert.True(t, ok)
	assert.Equal(t, "1970-01-01", d)

	_, ok = NormalizeDate(ir.String(""))
	assert.False(t, ok)
}

func TestNormalize(t *testing.T) {
	num := Column{Key: "n", Editor: NumberEditor{}}
	assert.Equal(t, ir.Number(42), Normalize(num, ir.String("42")))
	assert.Equal(t, ir.Null{}, Normalize(num, ir.String("")))

	date := Column{Key: "d", Editor: DateEditor{}}
	assert.Equal(t, ir.String("2024-02-29"), Normalize(date, ir.String("2024-02-29T08:00:00Z")))
	assert.Equal(t, ir.Null{}, Normalize(date, ir.Null{}))

	combo := Column{Key: "s", Editor: ComboEditor{Combo: ComboConfig{
		Options: []Option{{Value: ir.Number(1)}, {Value: ir.Number(2)}},
	}}}
	assert.Equal(t, ir.Number(2), Normalize(combo, ir.String("2")))
	assert.Equal(t, ir.String("9"), Normalize(combo, ir.String("9")))

	text := Column{Key: "t", Editor: TextEditor{}}
	assert.Equal(t, ir.String(" x "), Normalize(text, ir.String(" x ")))
	assert.Equal(t, ir.Null{}, Normalize(text, nil))
}
