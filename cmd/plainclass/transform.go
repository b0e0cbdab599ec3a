package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"plainclass/internal/config"
	"plainclass/internal/diag"
	"plainclass/internal/diagfmt"
	"plainclass/internal/driver"
	"plainclass/internal/logger"
	"plainclass/internal/transform"
	"plainclass/internal/ui"
	"plainclass/internal/version"
)

var transformCmd = &cobra.Command{
	Use:   "transform [flags] path...",
	Short: "Rewrite dataclasses in files or directories",
	Long: `transform rewrites the @dataclass classes of every .py file named or found under
the given directories. Classes that cannot be rewritten are reported and left as
they are; the rest of the unit is still rewritten.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTransform,
}

var checkCmd = &cobra.Command{
	Use:   "check [flags] path...",
	Short: "Report files that transform would change",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd, args, config.ModeCheck)
	},
}

// errUnitsFailed is returned so the process exits non-zero after the report.
var errUnitsFailed = errors.New("some units could not be transformed")

func addBatchFlags(cmd *cobra.Command) {
	cmd.Flags().Int("jobs", 0, "number of parallel workers (0 = GOMAXPROCS)")
	cmd.Flags().StringSlice("exclude", nil, "glob of paths to skip, relative to each argument (repeatable)")
	cmd.Flags().Bool("no-match-args", false, "omit __match_args__ unless a class asks for it")
	cmd.Flags().Bool("cache", false, "reuse results of unchanged units")
	cmd.Flags().String("cache-dir", "", "cache directory (default: user cache dir)")
	cmd.Flags().String("format", "pretty", "diagnostics format (pretty|short|json|sarif)")
	cmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
}

func init() {
	addBatchFlags(transformCmd)
	addBatchFlags(checkCmd)
	transformCmd.Flags().Bool("write", false, "rewrite files in place (default)")
	transformCmd.Flags().Bool("stdout", false, "print rewritten units to stdout")
	transformCmd.Flags().String("out-dir", "", "write rewritten units under this directory")
	transformCmd.Flags().Bool("check", false, "exit non-zero when a file would change; write nothing")
	transformCmd.Flags().Bool("diff", false, "print a unified diff instead of writing")
	transformCmd.MarkFlagsMutuallyExclusive("write", "stdout", "out-dir", "check", "diff")
}

func runTransform(cmd *cobra.Command, args []string) error {
	mode := ""
	for _, m := range []string{config.ModeWrite, config.ModeStdout, config.ModeCheck, config.ModeDiff} {
		if on, _ := cmd.Flags().GetBool(m); on {
			mode = m
		}
	}
	if dir, _ := cmd.Flags().GetString("out-dir"); dir != "" {
		mode = config.ModeOutDir
	}
	return runBatch(cmd, args, mode)
}

// runBatch merges flags over the config file, runs the driver, and reports.
func runBatch(cmd *cobra.Command, args []string, mode string) error {
	ctx := cmd.Context()
	log := logger.FromContext(ctx)
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if mode != "" {
		cfg.Output.Mode = mode
	}
	if flags.Changed("out-dir") {
		cfg.Output.OutDir, _ = flags.GetString("out-dir")
	}
	if flags.Changed("jobs") {
		cfg.Transform.Jobs, _ = flags.GetInt("jobs")
	}
	if flags.Changed("exclude") {
		extra, _ := flags.GetStringSlice("exclude")
		cfg.Transform.Exclude = append(cfg.Transform.Exclude, extra...)
	}
	if noMatch, _ := flags.GetBool("no-match-args"); noMatch {
		cfg.Transform.MatchArgs = false
	}
	if flags.Changed("cache") {
		cfg.Cache.Enabled, _ = flags.GetBool("cache")
	}
	if flags.Changed("cache-dir") {
		cfg.Cache.Dir, _ = flags.GetString("cache-dir")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	format, _ := flags.GetString("format")
	switch format {
	case "pretty", "short", "json", "sarif":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	uiFlag, _ := flags.GetString("ui")
	uiSetting, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}
	maxDiagnostics, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")

	cleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	inputs, err := driver.CollectFiles(ctx, args, cfg.Transform.Exclude)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return driver.ErrNoUnits
	}

	opts := driver.Options{
		Jobs: cfg.Transform.Jobs,
		Transform: transform.Options{
			MaxErrors:   cfg.Transform.MaxErrors,
			NoMatchArgs: !cfg.Transform.MatchArgs,
		},
		Mode:   cfg.Output.Mode,
		OutDir: cfg.Output.OutDir,
	}
	if cfg.Cache.Enabled {
		cache, err := driver.OpenDiskCache(cfg.Cache.Dir)
		if err != nil {
			log.Warn("cache disabled", "err", err)
		} else {
			opts.Cache = cache
		}
	}
	log.Debug("collected units", "count", len(inputs), "mode", opts.Mode, "jobs", opts.Jobs)

	// прогресс рисуем в stderr, stdout остаётся за результатом
	var report *driver.Report
	if shouldUseTUI(uiSetting, cfg.Output.Mode) {
		report, err = runWithUI(ctx, inputs, opts)
	} else {
		report, err = driver.Run(ctx, inputs, opts)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	if err := writeOutputs(out, report, cfg.Output.Mode); err != nil {
		return err
	}
	if err := writeDiagnostics(cmd, report, format, maxDiagnostics); err != nil {
		return err
	}
	if showTimings, _ := cmd.Root().PersistentFlags().GetBool("timings"); showTimings {
		printTimings(os.Stderr, report)
	}
	if !quiet {
		printSummary(os.Stderr, report, cfg.Output.Mode)
	}

	if report.Failed() > 0 {
		return errUnitsFailed
	}
	if cfg.Output.Mode == config.ModeCheck && report.Changed() > 0 {
		return fmt.Errorf("%d file(s) would be rewritten", report.Changed())
	}
	return nil
}

func runWithUI(ctx context.Context, inputs []driver.Input, opts driver.Options) (*driver.Report, error) {
	type outcome struct {
		report *driver.Report
		err    error
	}
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan outcome, 1)
	files := make([]string, len(inputs))
	for i, in := range inputs {
		files[i] = in.Path
	}

	go func() {
		opts.Sink = driver.ChannelSink(events)
		report, err := driver.Run(ctx, inputs, opts)
		outcomeCh <- outcome{report: report, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("plainclass", files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	// UI мог выйти раньше: дочитываем события, чтобы воркеры не встали
	go func() {
		for range events {
		}
	}()
	res := <-outcomeCh
	if uiErr != nil {
		return res.report, uiErr
	}
	return res.report, res.err
}

func writeOutputs(out io.Writer, report *driver.Report, mode string) error {
	for i := range report.Units {
		u := &report.Units[i]
		switch {
		case mode == config.ModeStdout && u.Result != nil:
			if len(report.Units) > 1 {
				if _, err := fmt.Fprintf(out, "# ==> %s <==\n", filepath.ToSlash(u.Path)); err != nil {
					return err
				}
			}
			if _, err := out.Write(u.Result.Output); err != nil {
				return err
			}
		case mode == config.ModeDiff && u.Diff != "":
			if _, err := io.WriteString(out, u.Diff); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeDiagnostics(cmd *cobra.Command, report *driver.Report, format string, maxDiagnostics int) error {
	stderr := cmd.ErrOrStderr()
	color := useColor(cmd, os.Stderr)
	shown := 0
	for i := range report.Units {
		u := &report.Units[i]
		if u.Err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", u.Path, u.Err)
			continue
		}
		if u.Result == nil || len(u.Result.Diagnostics) == 0 {
			continue
		}
		if maxDiagnostics > 0 && shown >= maxDiagnostics {
			break
		}
		bag := u.Result.Bag()
		shown += bag.Len()
		var err error
		switch format {
		case "short":
			if text := diag.FormatShortDiagnostics(bag.Items(), u.Result.FileSet, false); text != "" {
				_, err = fmt.Fprintln(stderr, text)
			}
		case "json":
			err = diagfmt.JSON(stderr, bag, u.Result.FileSet, diagfmt.JSONOpts{IncludePositions: true, IncludeNotes: true, IncludeFixes: true})
		case "sarif":
			err = diagfmt.Sarif(stderr, bag, u.Result.FileSet, diagfmt.SarifRunMeta{ToolName: "plainclass", ToolVersion: version.Version, InvocationArgs: os.Args[1:]})
		default:
			diagfmt.Pretty(stderr, bag, u.Result.FileSet, diagfmt.PrettyOpts{Color: color, Context: 1, ShowNotes: true, ShowFixes: true})
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func printSummary(w io.Writer, report *driver.Report, mode string) {
	classes, cached := 0, 0
	for i := range report.Units {
		u := &report.Units[i]
		if u.Result != nil {
			classes += len(u.Result.Classes)
		}
		if u.Cached {
			cached++
		}
	}
	verb := "rewritten"
	if mode == config.ModeCheck || mode == config.ModeDiff || mode == config.ModeStdout {
		verb = "would change"
	}
	parts := []string{
		fmt.Sprintf("%d file(s)", len(report.Units)),
		fmt.Sprintf("%d %s", report.Changed(), verb),
		fmt.Sprintf("%d class(es)", classes),
	}
	if n := report.Failed(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d with failures", n))
	}
	if cached > 0 {
		parts = append(parts, fmt.Sprintf("%d cached", cached))
	}
	fmt.Fprintf(w, "%s in %s\n", strings.Join(parts, ", "), report.Elapsed.Round(1e6))
}

func printTimings(w io.Writer, report *driver.Report) {
	if err := report.Timings().Write(w); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write timings: %v\n", err)
	}
}
