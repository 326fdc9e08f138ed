package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/gridstate/internal/column"
	"github.com/roach88/gridstate/internal/grid"
	"github.com/roach88/gridstate/internal/ir"
	"github.com/roach88/gridstate/internal/query"
)

// EditOptions holds flags for the edit command.
type EditOptions struct {
	StoreOptions
	Set    []string // id:column=value
	Delete []string // id
	DryRun bool
}

// EditOutcome reports one requested change.
type EditOutcome struct {
	Target string `json:"target"`
	Result string `json:"result"`
	Error  string `json:"error,omitempty"`
}

// EditResult is the JSON form of an edit run.
type EditResult struct {
	Grid     string        `json:"grid"`
	Outcomes []EditOutcome `json:"outcomes"`
	Saved    bool          `json:"saved"`
	Changes  grid.Changes  `json:"changes"`
}

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EditOptions{StoreOptions: StoreOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "edit <grids-dir> <grid>",
		Short: "Edit cells and delete rows, then save",
		Long: `Apply cell edits and row deletions through the grid and save the diff.

Rows are addressed by id. Values are entered as text, exactly as typed into
the cell editor, so the column's parsing and validation rules apply. If any
edit is refused or invalid nothing is saved.

Examples:
  gridctl edit --db ./orders.db ./grids orders --set 3:qty=12
  gridctl edit --db ./orders.db ./grids orders --set 3:status=closed --delete 7
  gridctl edit --db ./orders.db ./grids orders --set 3:qty=-1 --dry-run`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringArrayVar(&opts.Set, "set", nil, "set a cell, as id:column=value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Delete, "delete", nil, "delete the row with this id (repeatable)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "report the diff without saving")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runEdit(opts *EditOptions, gridsDir, name string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if len(opts.Set) == 0 && len(opts.Delete) == 0 {
		return formatter.Fail(ExitCommandError, ErrCodeBadInput, "nothing to do: pass --set or --delete")
	}

	sess, err := openGridSession(cmd.Context(), formatter, opts.Database, gridsDir, name, query.Params{})
	if err != nil {
		return err
	}
	defer sess.Close()
	g := sess.grid

	// Edits are limited to the current page; put every row on it.
	g.SetPageSize(max(g.Len(), 1))

	result := EditResult{Grid: name, Outcomes: []EditOutcome{}}
	failed := false

	for _, s := range opts.Set {
		outcome := applySet(g, s)
		if outcome.Result != grid.CommitApplied.String() && outcome.Result != grid.CommitUnchanged.String() {
			failed = true
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}
	for _, id := range opts.Delete {
		outcome := EditOutcome{Target: "delete " + id, Result: "deleted"}
		i, ok := rowIndexByID(g, id)
		switch {
		case !ok:
			outcome.Result, outcome.Error = "refused", "no row with this id"
			failed = true
		case !g.DeleteRow(i):
			outcome.Result = "refused"
			failed = true
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	result.Changes = g.GetChanges()

	if !failed && !opts.DryRun && g.HasChanges() {
		if err := g.Save(cmd.Context()); err != nil {
			code := ErrCodeDatabase
			var ge *grid.GridError
			if errors.As(err, &ge) {
				code = string(ge.Code)
			}
			return formatter.Fail(ExitCommandError, code, err.Error())
		}
		result.Saved = true
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		for _, o := range result.Outcomes {
			mark := "✓"
			if o.Result != "applied" && o.Result != "unchanged" && o.Result != "deleted" {
				mark = "✗"
			}
			if o.Error != "" {
				fmt.Fprintf(formatter.Writer, "%s %s: %s (%s)\n", mark, o.Target, o.Result, o.Error)
			} else {
				fmt.Fprintf(formatter.Writer, "%s %s: %s\n", mark, o.Target, o.Result)
			}
		}
		ch := result.Changes
		summary := fmt.Sprintf("%d modified, %d deleted", len(ch.Modified), len(ch.Deleted))
		switch {
		case result.Saved:
			fmt.Fprintf(formatter.Writer, "saved: %s\n", summary)
		case failed:
			fmt.Fprintln(formatter.Writer, "not saved: some changes were refused")
		default:
			fmt.Fprintf(formatter.Writer, "not saved: %s\n", summary)
		}
	}

	if failed {
		return NewExitError(ExitFailure, "some changes were refused")
	}
	return nil
}

// applySet performs one id:column=value edit.
func applySet(g *grid.Grid, arg string) EditOutcome {
	target, value, ok := strings.Cut(arg, "=")
	id, key, ok2 := strings.Cut(target, ":")
	if !ok || !ok2 || id == "" || key == "" {
		return EditOutcome{Target: arg, Result: "refused", Error: "expected id:column=value"}
	}
	out := EditOutcome{Target: target}

	i, found := rowIndexByID(g, id)
	if !found {
		out.Result, out.Error = "refused", "no row with this id"
		return out
	}

	res, err := g.Edit(i, key, ir.String(value))
	out.Result = res.String()
	var verr *column.ValidationError
	if errors.As(err, &verr) {
		out.Error = verr.Message
	} else if res == grid.CommitRefused {
		out.Error = "column is not editable"
	}
	return out
}
