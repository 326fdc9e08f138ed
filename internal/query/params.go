package query

import (
	"github.com/roach88/gridstate/internal/ir"
)

// Params are the load parameters for a dataset.
type Params struct {
	Filter Predicate // nil = no filter
	Sort   []SortKey // applied in order; ties keep source order
	Limit  int       // 0 = no limit
	Offset int
}

// SortKey orders rows by one field.
type SortKey struct {
	Field string `json:"field" yaml:"field"`
	Desc  bool   `json:"desc,omitempty" yaml:"desc,omitempty"`
}

// Predicate is a filter condition. Sealed to this package.
type Predicate interface {
	predicateNode()
}

// Equals matches rows whose Field strictly equals Value. A Null value
// matches missing fields and explicit nulls.
type Equals struct {
	Field string
	Value ir.Value
}

func (Equals) predicateNode() {}

// Contains matches rows whose Field, rendered as text, contains Text
// case-insensitively.
type Contains struct {
	Field string
	Text  string
}

func (Contains) predicateNode() {}

// And matches rows satisfying every predicate. An empty And matches all.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Where builds an And of predicates, or the single predicate, or nil.
func Where(preds ...Predicate) Predicate {
	switch len(preds) {
	case 0:
		return nil
	case 1:
		return preds[0]
	}
	return And{Predicates: preds}
}
