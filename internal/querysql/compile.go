package querysql

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/gridstate/internal/ir"
	"github.com/roach88/gridstate/internal/query"
)

// SQLCompiler compiles query.Params to parameterized SQLite SQL over a
// table storing one JSON object per row.
//
// CRITICAL: every query ends with ORDER BY on the sequence column so
// results are deterministic.
// CRITICAL: values and JSON paths are always parameters, never
// interpolated.
type SQLCompiler struct {
	// Table holds the rows.
	Table string
	// Payload is the JSON column.
	Payload string
	// Seq is the insertion-order column used as the final tiebreaker.
	Seq string
}

// NewSQLCompiler creates a compiler for table with the given payload and
// sequence columns.
func NewSQLCompiler(table, payload, seq string) *SQLCompiler {
	return &SQLCompiler{Table: table, Payload: payload, Seq: seq}
}

// Compile converts params to SQL selecting the payload column.
// Returns (sql, args, error).
func (c *SQLCompiler) Compile(p query.Params) (string, []any, error) {
	return c.compile(p, c.Payload, true)
}

// CompileCount converts params to a COUNT(*) query. Sort and window are
// ignored.
func (c *SQLCompiler) CompileCount(p query.Params) (string, []any, error) {
	p.Sort, p.Limit, p.Offset = nil, 0, 0
	return c.compile(p, "COUNT(*)", false)
}

func (c *SQLCompiler) compile(p query.Params, selectClause string, ordered bool) (string, []any, error) {
	if err := p.Validate(); err != nil {
		return "", nil, fmt.Errorf("invalid params: %w", err)
	}

	var b strings.Builder
	var args []any
	fmt.Fprintf(&b, "SELECT %s FROM %s", selectClause, c.Table)

	if p.Filter != nil {
		where, whereArgs, err := c.compilePredicate(p.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		b.WriteString(" WHERE ")
		b.WriteString(where)
		args = append(args, whereArgs...)
	}

	if !ordered {
		return b.String(), args, nil
	}

	b.WriteString(" ORDER BY ")
	for _, k := range p.Sort {
		dir := "ASC"
		if k.Desc {
			dir = "DESC"
		}
		fmt.Fprintf(&b, "json_extract(%s, ?) %s, ", c.Payload, dir)
		args = append(args, jsonPath(k.Field))
	}
	// MANDATORY: stable tiebreaker
	fmt.Fprintf(&b, "%s ASC", c.Seq)

	if p.Limit > 0 || p.Offset > 0 {
		limit := int64(p.Limit)
		if limit == 0 {
			limit = -1
		}
		b.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, limit, int64(p.Offset))
	}
	return b.String(), args, nil
}

// compilePredicate compiles a predicate to a WHERE fragment.
func (c *SQLCompiler) compilePredicate(p query.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case query.Equals:
		return c.compileEquals(pred)
	case query.Contains:
		sql := fmt.Sprintf("instr(lower(CAST(json_extract(%s, ?) AS TEXT)), lower(?)) > 0", c.Payload)
		return sql, []any{jsonPath(pred.Field), pred.Text}, nil
	case query.And:
		return c.compileAnd(pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (c *SQLCompiler) compileEquals(eq query.Equals) (string, []any, error) {
	if ir.IsNull(eq.Value) {
		return fmt.Sprintf("json_extract(%s, ?) IS NULL", c.Payload), []any{jsonPath(eq.Field)}, nil
	}
	param, err := valueToParam(eq.Value)
	if err != nil {
		return "", nil, fmt.Errorf("convert value: %w", err)
	}
	if _, isText := eq.Value.(ir.String); isText {
		// json_extract yields integers for JSON booleans; keep strings from
		// matching them by also checking the JSON type.
		sql := fmt.Sprintf("(json_type(%s, ?) = 'text' AND json_extract(%s, ?) = ?)", c.Payload, c.Payload)
		return sql, []any{jsonPath(eq.Field), jsonPath(eq.Field), param}, nil
	}
	if _, isBool := eq.Value.(ir.Bool); isBool {
		sql := fmt.Sprintf("json_type(%s, ?) = ?", c.Payload)
		return sql, []any{jsonPath(eq.Field), param}, nil
	}
	sql := fmt.Sprintf("(json_type(%s, ?) IN ('integer', 'real') AND json_extract(%s, ?) = ?)", c.Payload, c.Payload)
	return sql, []any{jsonPath(eq.Field), jsonPath(eq.Field), param}, nil
}

func (c *SQLCompiler) compileAnd(and query.And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil
	}
	parts := make([]string, 0, len(and.Predicates))
	var args []any
	for _, pred := range and.Predicates {
		sql, predArgs, err := c.compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		args = append(args, predArgs...)
	}
	return "(" + strings.Join(parts, " AND ") + ")", args, nil
}

// jsonPath returns the SQLite JSON path of a top-level field. Field names
// are validated to identifiers, so quoting is not needed beyond the label
// syntax.
func jsonPath(field string) string {
	return `$."` + field + `"`
}

// valueToParam converts an ir.Value to a SQL parameter.
func valueToParam(v ir.Value) (any, error) {
	switch val := v.(type) {
	case ir.String:
		return string(val), nil
	case ir.Number:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("non-finite number %v", f)
		}
		return f, nil
	case ir.Bool:
		if val {
			return "true", nil
		}
		return "false", nil
	case ir.Null:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported value type for SQL parameter: %T", v)
	}
}
