package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/gridstate/internal/compiler"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult holds the compiled grid definitions.
type CompilationResult struct {
	Grids []*compiler.GridConfig `json:"grids"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <grids-dir>",
		Short: "Compile CUE grid definitions to JSON",
		Long: `Compile CUE grid definitions to JSON column descriptors.

The output is what a host would hand to the grid: one entry per grid with
its id property, page size, undo depth and column descriptors.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, gridsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loadResult, loadErrors := LoadGrids(gridsDir, LoadModeFailFast)
	if len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return formatter.Fail(ExitCommandError, loadErr.Code, loadErr.Error())
		}
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, loadErrors[0].Error())
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, gridsDir)

	for _, cfg := range loadResult.Grids {
		if errs := compiler.Validate(cfg); len(errs) > 0 {
			return formatter.Fail(ExitFailure, errs[0].Code,
				fmt.Sprintf("grid %s: %s (run validate for all errors)", cfg.Name, errs[0].Error()))
		}
	}

	result := CompilationResult{Grids: loadResult.Grids}

	if opts.Output != "" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error())
		}
		if err := os.WriteFile(opts.Output, append(data, '\n'), 0644); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("failed to write output: %v", err))
		}
		formatter.VerboseLog("Wrote %s", opts.Output)
		if formatter.Format == "json" {
			return formatter.Success(map[string]any{"output": opts.Output, "grids": len(result.Grids)})
		}
		fmt.Fprintf(formatter.Writer, "✓ Compiled %d grid(s) to %s\n", len(result.Grids), opts.Output)
		return nil
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	enc := json.NewEncoder(formatter.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
