package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"eqlint/internal/diag"
	"eqlint/internal/diagfmt"
	"eqlint/internal/driver"
	"eqlint/internal/version"
)

func newDiagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diag [flags] <package pattern|graph document>",
		Short: "Report equality problems in Equatable declarations",
		Long: `Load Go packages (or a YAML/JSON/msgpack symbol-graph document), evaluate every
declaration marked Equatable and report GE001/GE002/GE003 diagnostics.`,
		Args: cobra.ArbitraryArgs,
		RunE: runDiagnose,
	}
	cmd.Flags().String("format", "", "output format (pretty|json|sarif|short), default from config or pretty")
	cmd.Flags().Bool("no-warnings", false, "ignore warnings in diagnostics")
	cmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	cmd.Flags().Int("jobs", 0, "max parallel workers for rule evaluation (0=auto)")
	cmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	cmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	cmd.Flags().Bool("preview", false, "preview the edits of suggested fixes")
	cmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	cmd.Flags().String("ui", "off", "progress UI mode (auto|on|off)")
	return cmd
}

// renderOptions selects how a diagnose result is printed.
type renderOptions struct {
	format    string
	color     bool
	pathMode  diagfmt.PathMode
	withNotes bool
	showFixes bool
	preview   bool
	args      []string
}

// runDiagnose prints the diagnostics of the targets and fails silently when
// any of them has error severity.
func runDiagnose(cmd *cobra.Command, args []string) error {
	targets := targetsOf(args)
	env, err := loadEnv(cmd, targets[0])
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	format, err := flags.GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format == "" {
		format = env.cfg.Run.Format
	}
	if format == "" {
		format = "pretty"
	}
	format = strings.ToLower(format)
	switch format {
	case "pretty", "json", "sarif", "short":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	noWarnings, err := flags.GetBool("no-warnings")
	if err != nil {
		return err
	}
	warningsAsErrors, err := flags.GetBool("warnings-as-errors")
	if err != nil {
		return err
	}
	if noWarnings && warningsAsErrors {
		return fmt.Errorf("--no-warnings and --warnings-as-errors are mutually exclusive")
	}
	jobs, err := flags.GetInt("jobs")
	if err != nil {
		return err
	}
	withNotes, err := flags.GetBool("with-notes")
	if err != nil {
		return err
	}
	suggest, err := flags.GetBool("suggest")
	if err != nil {
		return err
	}
	preview, err := flags.GetBool("preview")
	if err != nil {
		return err
	}
	fullPath, err := flags.GetBool("fullpath")
	if err != nil {
		return err
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return err
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	opts := env.driverOptions()
	opts.Jobs = jobs
	opts.Suggest = suggest || preview
	opts.IgnoreWarnings = noWarnings
	opts.WarningsAsErrors = warningsAsErrors

	var res *driver.DiagnoseResult
	if format == "pretty" && shouldUseTUI(mode) {
		res, err = runDiagnoseWithUI(cmd.Context(), "eqlint diag", opts, targets)
	} else {
		res, err = driver.Diagnose(cmd.Context(), opts, targets...)
	}
	if err != nil {
		return fmt.Errorf("diag: %w", err)
	}
	env.log.Debug("diagnose finished", "source", res.Source, "opted_in", res.OptedIn, "diagnostics", res.Bag.Len())

	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	out := cmd.OutOrStdout()
	err = renderDiagnostics(out, res, renderOptions{
		format:    format,
		color:     env.color,
		pathMode:  pathMode,
		withNotes: withNotes,
		showFixes: opts.Suggest,
		preview:   preview,
		args:      append([]string{"eqlint", "diag"}, args...),
	})
	if err != nil {
		return err
	}
	if format == "pretty" && !env.quiet {
		printSummary(out, res)
	}
	if env.timings && res.Timer != nil {
		printTimings(cmd.ErrOrStderr(), res.Timer)
	}
	if res.Bag.HasErrors() {
		return errSilentExit
	}
	return nil
}

func renderDiagnostics(w io.Writer, res *driver.DiagnoseResult, opts renderOptions) error {
	switch opts.format {
	case "pretty":
		diagfmt.Pretty(w, res.Bag, res.FileSet, diagfmt.PrettyOpts{
			Color:       opts.color,
			Context:     2,
			PathMode:    opts.pathMode,
			ShowNotes:   opts.withNotes,
			ShowFixes:   opts.showFixes,
			ShowPreview: opts.preview,
		})
	case "short":
		output := diag.FormatShortDiagnostics(res.Bag.Items(), res.FileSet, opts.withNotes)
		if output != "" {
			if _, err := fmt.Fprintln(w, output); err != nil {
				return err
			}
		}
	case "json":
		jsonOpts := diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         opts.pathMode,
			IncludeNotes:     opts.withNotes,
			IncludeFixes:     opts.showFixes,
			IncludePreviews:  opts.preview,
		}
		if err := diagfmt.JSON(w, res.Bag, res.FileSet, jsonOpts); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	case "sarif":
		meta := diagfmt.SarifRunMeta{
			ToolName:       "eqlint",
			ToolVersion:    version.Version,
			InvocationArgs: opts.args,
		}
		if err := diagfmt.Sarif(w, res.Bag, res.FileSet, meta); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	default:
		return fmt.Errorf("unknown format: %s", opts.format)
	}
	return nil
}

func printSummary(w io.Writer, res *driver.DiagnoseResult) {
	var errs, warns int
	for _, d := range res.Bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
	}
	if res.Bag.Len() == 0 {
		fmt.Fprintf(w, "checked %d Equatable declaration(s): no problems\n", res.OptedIn)
		return
	}
	fmt.Fprintf(w, "\nchecked %d Equatable declaration(s): %d error(s), %d warning(s)\n", res.OptedIn, errs, warns)
}
