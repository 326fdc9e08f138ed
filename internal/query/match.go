package query

import (
	"cmp"
	"slices"
	"strings"

	"github.com/roach88/gridstate/internal/ir"
)

// Match reports whether row satisfies p. A nil predicate matches.
func Match(p Predicate, row *ir.Row) bool {
	switch pred := p.(type) {
	case nil:
		return true
	case Equals:
		return ir.Equal(row.Get(pred.Field), pred.Value)
	case Contains:
		v := row.Get(pred.Field)
		if ir.IsNull(v) {
			return false
		}
		return strings.Contains(strings.ToLower(ir.Stringify(v)), strings.ToLower(pred.Text))
	case And:
		for _, sub := range pred.Predicates {
			if !Match(sub, row) {
				return false
			}
		}
		return true
	}
	return false
}

// Apply filters, sorts and windows rows in memory. The input slice is not
// modified.
func Apply(p Params, rows []*ir.Row) []*ir.Row {
	out := make([]*ir.Row, 0, len(rows))
	for _, r := range rows {
		if Match(p.Filter, r) {
			out = append(out, r)
		}
	}
	Sort(out, p.Sort)

	if p.Offset > 0 {
		if p.Offset >= len(out) {
			return out[:0]
		}
		out = out[p.Offset:]
	}
	if p.Limit > 0 && p.Limit < len(out) {
		out = out[:p.Limit]
	}
	return out
}

// Sort orders rows by keys, stably.
func Sort(rows []*ir.Row, keys []SortKey) {
	if len(keys) == 0 {
		return
	}
	slices.SortStableFunc(rows, func(a, b *ir.Row) int {
		for _, k := range keys {
			c := Compare(a.Get(k.Field), b.Get(k.Field))
			if k.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
}

// Compare orders values: null < bool < number < string, then by value
// within a kind.
func Compare(a, b ir.Value) int {
	if c := cmp.Compare(rank(a), rank(b)); c != 0 {
		return c
	}
	switch av := a.(type) {
	case ir.Bool:
		return cmp.Compare(boolInt(bool(av)), boolInt(bool(b.(ir.Bool))))
	case ir.Number:
		return cmp.Compare(float64(av), float64(b.(ir.Number)))
	case ir.String:
		return strings.Compare(string(av), string(b.(ir.String)))
	}
	return 0
}

func rank(v ir.Value) int {
	switch v.(type) {
	case ir.Bool:
		return 1
	case ir.Number:
		return 2
	case ir.String:
		return 3
	}
	return 0
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
