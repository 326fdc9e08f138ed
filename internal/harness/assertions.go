package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/gridstate/internal/grid"
	"github.com/roach88/gridstate/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Outcomes []string // Step outcomes for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Outcomes) > 0 {
		fmt.Fprintf(&buf, "\nSteps:\n")
		for i, o := range e.Outcomes {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, o)
		}
	}

	return buf.String()
}

// AssertionContext provides the state assertions are evaluated against.
type AssertionContext struct {
	Grid   *grid.Grid
	Result *Result
}

// EvaluateAssertions evaluates all assertions.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(assertions []Assertion, actx *AssertionContext) []string {
	var errs []string

	for i, assertion := range assertions {
		expected, actual, ok := evaluate(assertion, actx)
		if ok {
			continue
		}
		err := &AssertionError{
			Type:     assertion.Type,
			Expected: expected,
			Actual:   actual,
			Outcomes: actx.Result.Outcomes,
		}
		errs = append(errs, fmt.Sprintf("assertion %d: %s", i, err.Error()))
	}

	return errs
}

// evaluate checks one assertion and renders both sides for the report.
func evaluate(a Assertion, actx *AssertionContext) (expected, actual string, ok bool) {
	g := actx.Grid

	switch a.Type {
	case AssertHasChanges:
		return compareBool(a.Expect, g.HasChanges())

	case AssertCanUndo:
		return compareBool(a.Expect, g.CanUndo())

	case AssertCanRedo:
		return compareBool(a.Expect, g.CanRedo())

	case AssertRowCount:
		return compareInt(a.Expect, g.Len())

	case AssertPage:
		return compareInt(a.Expect, g.CurrentPage())

	case AssertSaves:
		return compareInt(a.Expect, actx.Result.Saves)

	case AssertHeaderState:
		want, _ := a.Expect.(string)
		got := string(g.HeaderState())
		return want, got, want == got

	case AssertSelected:
		want := toInts(a.Expect)
		got := g.Selected()
		if got == nil {
			got = []int{}
		}
		return fmt.Sprint(want), fmt.Sprint(got), slices.Equal(want, got)

	case AssertChanges:
		return assertChangeCounts(a.Expect, actx.Result.Changes)

	case AssertCell:
		return assertCell(g, a)

	case AssertDisplay:
		want, _ := a.Expect.(string)
		got, found := g.DisplayValue(a.Row, a.Column)
		if !found {
			return fmt.Sprintf("%q", want), fmt.Sprintf("no cell %d:%s", a.Row, a.Column), false
		}
		return fmt.Sprintf("%q", want), fmt.Sprintf("%q", got), want == got
	}

	return "known assertion type", a.Type, false
}

func compareBool(expect any, got bool) (string, string, bool) {
	want, _ := expect.(bool)
	return fmt.Sprint(want), fmt.Sprint(got), want == got
}

func compareInt(expect any, got int) (string, string, bool) {
	want, _ := expect.(int)
	return fmt.Sprint(want), fmt.Sprint(got), want == got
}

func toInts(v any) []int {
	list, _ := v.([]any)
	out := make([]int, 0, len(list))
	for _, e := range list {
		if n, ok := e.(int); ok {
			out = append(out, n)
		}
	}
	return out
}

// assertChangeCounts compares only the lists the assertion names.
func assertChangeCounts(expect any, ch grid.Changes) (string, string, bool) {
	want, _ := expect.(map[string]any)
	got := map[string]int{
		"added":    len(ch.Added),
		"modified": len(ch.Modified),
		"deleted":  len(ch.Deleted),
	}

	ok := true
	var exp, act []string
	for _, k := range []string{"added", "modified", "deleted"} {
		v, named := want[k]
		if !named {
			continue
		}
		n, _ := v.(int)
		exp = append(exp, fmt.Sprintf("%s=%d", k, n))
		act = append(act, fmt.Sprintf("%s=%d", k, got[k]))
		if n != got[k] {
			ok = false
		}
	}
	return strings.Join(exp, " "), strings.Join(act, " "), ok
}

func assertCell(g *grid.Grid, a Assertion) (string, string, bool) {
	want, err := ir.FromAny(a.Expect)
	if err != nil {
		return fmt.Sprint(a.Expect), err.Error(), false
	}
	got, found := g.Cell(a.Row, a.Column)
	if !found {
		got = ir.Null{}
	}

	exp, act := formatValue(want), formatValue(got)
	if ir.IsNull(want) {
		return exp, act, ir.IsNull(got)
	}
	return exp, act, ir.Equal(want, got)
}

func formatValue(v ir.Value) string {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
