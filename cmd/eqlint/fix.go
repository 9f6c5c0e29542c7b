package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"eqlint/internal/driver"
	"eqlint/internal/fix"
	"eqlint/internal/ui"
)

func newFixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix [flags] <package pattern|graph document>",
		Short: "Insert equality markers suggested by the diagnostics",
		Long: `Run diagnostics with fix suggestions and apply them according to the chosen
strategy. Only collection diagnostics (GE001) carry fixes.`,
		Args: cobra.ArbitraryArgs,
		RunE: runFix,
	}
	cmd.Flags().Bool("all", false, "apply the preferred fix of every diagnostic")
	cmd.Flags().Bool("once", false, "apply the first available fix (default)")
	cmd.Flags().String("id", "", "apply the fix with a specific identifier")
	cmd.Flags().String("key", "", "apply every fix with the given equivalence key (e.g. set_equality)")
	cmd.Flags().BoolP("interactive", "i", false, "choose fixes in a terminal picker")
	cmd.Flags().Bool("dry-run", false, "report the edits without writing files")
	cmd.Flags().Bool("list", false, "list available fixes without applying them")
	return cmd
}

func runFix(cmd *cobra.Command, args []string) error {
	targets := targetsOf(args)
	env, err := loadEnv(cmd, targets[0])
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	applyAll, err := flags.GetBool("all")
	if err != nil {
		return err
	}
	applyOnce, err := flags.GetBool("once")
	if err != nil {
		return err
	}
	targetID, err := flags.GetString("id")
	if err != nil {
		return err
	}
	targetKey, err := flags.GetString("key")
	if err != nil {
		return err
	}
	interactive, err := flags.GetBool("interactive")
	if err != nil {
		return err
	}
	dryRun, err := flags.GetBool("dry-run")
	if err != nil {
		return err
	}
	list, err := flags.GetBool("list")
	if err != nil {
		return err
	}

	selected := 0
	for _, on := range []bool{applyAll, applyOnce, targetID != "", targetKey != "", interactive, list} {
		if on {
			selected++
		}
	}
	if selected > 1 {
		return fmt.Errorf("--all, --once, --id, --key, --interactive and --list are mutually exclusive")
	}

	apply := fix.ApplyOptions{Mode: fix.ApplyModeOnce, DryRun: dryRun}
	switch {
	case applyAll:
		apply.Mode = fix.ApplyModeAll
	case targetID != "":
		apply.Mode = fix.ApplyModeID
		apply.TargetID = targetID
	case targetKey != "":
		apply.Mode = fix.ApplyModeKey
		apply.TargetKey = targetKey
	}

	opts := env.driverOptions()
	out := cmd.OutOrStdout()
	if interactive || list {
		opts.Suggest = true
		res, err := driver.Diagnose(cmd.Context(), opts, targets...)
		if err != nil {
			return fmt.Errorf("fix: diagnose failed: %w", err)
		}
		cands, skips := fix.Candidates(res.FileSet, res.Bag.Items())
		if list {
			if err := printCandidates(out, res, cands); err != nil {
				return err
			}
			return printSkipped(out, skips)
		}
		if err := printSkipped(out, skips); err != nil {
			return err
		}
		if len(cands) == 0 {
			fmt.Fprintln(out, "No applicable fixes found.")
			return nil
		}
		ids, err := ui.RunFixPicker(cmd.Context(), "Select fixes to apply", fixItems(res, cands))
		if errors.Is(err, ui.ErrCancelled) {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Fprintln(out, "No fixes selected.")
			return nil
		}
		apply.Mode = fix.ApplyModeIDs
		apply.TargetIDs = ids
		applyRes, applyErr := fix.Apply(res.FileSet, res.Bag.Items(), apply)
		// build failures lead Skipped and were already reported above
		if applyRes != nil && len(applyRes.Skipped) >= len(skips) {
			applyRes.Skipped = applyRes.Skipped[len(skips):]
		}
		return handleApplyResult(out, applyRes, applyErr, dryRun)
	}

	_, applyRes, err := driver.Fix(cmd.Context(), opts, apply, targets...)
	if applyRes == nil && err != nil && !errors.Is(err, fix.ErrNoFixes) {
		return fmt.Errorf("fix: %w", err)
	}
	return handleApplyResult(out, applyRes, err, dryRun)
}

func fixItems(res *driver.DiagnoseResult, cands []fix.Candidate) []ui.FixItem {
	items := make([]ui.FixItem, 0, len(cands))
	for _, c := range cands {
		d := c.Diagnostic
		loc := ""
		if f := res.FileSet.Get(d.Primary.File); f != nil {
			start, _ := res.FileSet.Resolve(d.Primary)
			loc = fmt.Sprintf("%s:%d:%d", f.FormatPath("auto", ""), start.Line, start.Col)
		}
		items = append(items, ui.FixItem{
			ID:        c.ID,
			Group:     ui.GroupKey(d.Code.ID(), d.Primary.File, d.Primary.Start),
			Title:     c.Title,
			Location:  loc,
			Message:   d.Message,
			Preferred: c.Preferred,
		})
	}
	return items
}

func printCandidates(w io.Writer, res *driver.DiagnoseResult, cands []fix.Candidate) error {
	if len(cands) == 0 {
		_, err := fmt.Fprintln(w, "No applicable fixes found.")
		return err
	}
	for _, it := range fixItems(res, cands) {
		mark := " "
		if it.Preferred {
			mark = "*"
		}
		if _, err := fmt.Fprintf(w, "%s %s  %s  %s\n", mark, it.ID, it.Title, it.Location); err != nil {
			return err
		}
	}
	return nil
}

func handleApplyResult(w io.Writer, res *fix.ApplyResult, applyErr error, dryRun bool) error {
	if res == nil {
		if errors.Is(applyErr, fix.ErrNoFixes) {
			_, err := fmt.Fprintln(w, "No applicable fixes found.")
			return err
		}
		return applyErr
	}
	var printErr error

	if len(res.Applied) > 0 {
		verb := "Applied"
		if dryRun {
			verb = "Would apply"
		}
		_, printErr = fmt.Fprintf(w, "%s %d fix(es):\n", verb, len(res.Applied))
		if printErr != nil {
			return printErr
		}
		for _, item := range res.Applied {
			location := item.PrimaryPath
			if location == "" {
				location = "(unknown location)"
			}
			_, printErr = fmt.Fprintf(w, "  %s [%s] %s: %s (%d edits, %s)\n",
				item.Title, item.ID, item.Code.ID(), location, item.EditCount, item.Applicability.String())
			if printErr != nil {
				return printErr
			}
		}
	}

	if len(res.FileChanges) > 0 {
		header := "Updated files:"
		if dryRun {
			header = "Files that would change:"
		}
		_, printErr = fmt.Fprintln(w, header)
		if printErr != nil {
			return printErr
		}
		for _, change := range res.FileChanges {
			_, printErr = fmt.Fprintf(w, "  %s (%d edits)\n", change.Path, change.EditCount)
			if printErr != nil {
				return printErr
			}
		}
	}

	if err := printSkipped(w, res.Skipped); err != nil {
		return err
	}

	if applyErr != nil {
		if errors.Is(applyErr, fix.ErrNoFixes) && len(res.Applied) == 0 {
			_, printErr = fmt.Fprintln(w, "No applicable fixes found.")
			return printErr
		}
		return applyErr
	}

	if len(res.Applied) == 0 {
		_, printErr = fmt.Fprintln(w, "No fixes applied.")
		return printErr
	}
	return nil
}

func printSkipped(w io.Writer, skips []fix.SkippedFix) error {
	if len(skips) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Skipped fixes:"); err != nil {
		return err
	}
	for _, skip := range skips {
		id := skip.ID
		if id == "" {
			id = "(unnamed)"
		}
		var err error
		if skip.Title != "" {
			_, err = fmt.Fprintf(w, "  %s [%s]: %s\n", skip.Title, id, skip.Reason)
		} else {
			_, err = fmt.Fprintf(w, "  [%s]: %s\n", id, skip.Reason)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
