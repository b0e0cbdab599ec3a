package main

import (
	"os"

	"github.com/spf13/cobra"

	"plainclass/internal/diagfmt"
	"plainclass/internal/driver"
	"plainclass/internal/transform"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] file.py",
	Short: "Show the dataclass model of a file without rewriting it",
	Long: `inspect runs the pipeline up to validation and prints each class with its
resolved options, linearization and effective fields.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().Bool("dump", false, "dump the raw model structures")
	inspectCmd.Flags().Bool("no-match-args", false, "omit __match_args__ unless a class asks for it")
}

func runInspect(cmd *cobra.Command, args []string) error {
	dump, _ := cmd.Flags().GetBool("dump")
	noMatch, _ := cmd.Flags().GetBool("no-match-args")
	maxDiagnostics, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")

	opts := transform.Options{NoMatchArgs: noMatch}
	if maxDiagnostics > 0 {
		opts.MaxErrors = uint(maxDiagnostics)
	}
	res, err := driver.Inspect(args[0], opts)
	if err != nil {
		return err
	}
	if len(res.Diagnostics) > 0 {
		diagfmt.Pretty(cmd.ErrOrStderr(), res.Bag(), res.FileSet, diagfmt.PrettyOpts{
			Color:     useColor(cmd, os.Stderr),
			Context:   1,
			ShowNotes: true,
		})
	}
	if res.Model == nil {
		return errUnitsFailed
	}
	if dump {
		driver.DumpModel(cmd.OutOrStdout(), res.Model)
		return nil
	}
	return driver.WriteModel(cmd.OutOrStdout(), res.Model)
}
