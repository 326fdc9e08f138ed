package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/gridstate/internal/ir"
)

// Snapshot renders a result as canonical JSON: the scenario name, every
// step outcome, the pending diff, the final rows and the save count.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	outcomes := make([]any, len(result.Outcomes))
	for i, o := range result.Outcomes {
		outcomes[i] = o
	}

	changes := map[string]any{
		"modified": nonNil(result.Changes.Modified),
		"added":    nonNil(result.Changes.Added),
		"deleted":  nonNil(result.Changes.Deleted),
	}

	return ir.MarshalCanonical(map[string]any{
		"scenario": scenarioName,
		"outcomes": outcomes,
		"changes":  changes,
		"rows":     nonNil(result.Rows),
		"saves":    result.Saves,
	})
}

func nonNil(rows []*ir.Row) []*ir.Row {
	if rows == nil {
		return []*ir.Row{}
	}
	return rows
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can check Pass; a snapshot mismatch fails
// the test through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an already computed result against a golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
