package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/gridstate/internal/column"
	"github.com/roach88/gridstate/internal/ir"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	StoreOptions
	Force bool // skip column validation of incoming rows
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{StoreOptions: StoreOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "seed <grids-dir> <grid> <rows.json>",
		Short: "Insert rows into a grid's database",
		Long: `Insert the rows of a JSON array into the database backing a grid.

Each row is checked against the grid's column rules first; a row that would
be refused by the editor stops the seed unless --force is given. Rows
without an id receive their insertion sequence number.

Example:
  gridctl seed --db ./orders.db ./grids orders ./orders.json`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(opts, args[0], args[1], args[2], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "insert rows that fail column validation")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runSeed(opts *SeedOptions, gridsDir, name, rowsFile string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadDefinition(formatter, gridsDir, name)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(rowsFile)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("failed to read rows: %v", err))
	}
	var rows []*ir.Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeBadInput, fmt.Sprintf("%s: %v", rowsFile, err))
	}

	if !opts.Force {
		cols := cfg.BuildColumns()
		for i, r := range rows {
			if err := checkRow(cols, r); err != nil {
				return formatter.Fail(ExitFailure, ErrCodeBadInput, fmt.Sprintf("row %d: %v", i, err))
			}
		}
	}

	st, err := openStore(formatter, opts.Database, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Seed(cmd.Context(), rows); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error())
	}

	formatter.VerboseLog("Seeded %d row(s) into %s", len(rows), opts.Database)
	if formatter.Format == "json" {
		return formatter.Success(map[string]any{"grid": name, "rows": len(rows)})
	}
	fmt.Fprintf(formatter.Writer, "✓ Seeded %d row(s) into grid %s\n", len(rows), name)
	return nil
}

// checkRow applies the editor rules of every editable column the row
// carries. Missing cells are not checked.
func checkRow(cols []column.Column, r *ir.Row) error {
	if r == nil {
		return fmt.Errorf("row is null")
	}
	for _, c := range cols {
		if !c.Editable() {
			continue
		}
		v, ok := r.Lookup(c.Key)
		if !ok {
			continue
		}
		if err := column.Validate(c, v); err != nil {
			return err
		}
	}
	return nil
}
