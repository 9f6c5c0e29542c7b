package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"eqlint/internal/diagfmt"
	"eqlint/internal/driver"
	"eqlint/internal/graphdoc"
	"eqlint/internal/watch"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [flags] [directory|graph document]",
		Short: "Re-run diagnostics whenever sources change",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runWatch,
	}
	cmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period before a change triggers a pass")
	cmd.Flags().StringSlice("exclude-dir", nil, "additional directory name globs to ignore")
	cmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	cmd.Flags().Bool("clear", false, "clear the screen before every pass")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	target := filepath.Join(abs, "...")
	watchRoot := abs
	if !info.IsDir() {
		if !graphdoc.IsDocumentPath(root) {
			return fmt.Errorf("watch: %s is neither a directory nor a graph document", root)
		}
		target = abs
		watchRoot = filepath.Dir(abs)
	}

	env, err := loadEnv(cmd, root)
	if err != nil {
		return err
	}
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return err
	}
	excludeDirs, err := cmd.Flags().GetStringSlice("exclude-dir")
	if err != nil {
		return err
	}
	suggest, err := cmd.Flags().GetBool("suggest")
	if err != nil {
		return err
	}
	clearScreen, err := cmd.Flags().GetBool("clear")
	if err != nil {
		return err
	}

	w, err := watch.New(watch.Options{
		Debounce:    debounce,
		ExcludeDirs: excludeDirs,
		Logger:      env.log.Named("watch"),
	})
	if err != nil {
		return err
	}
	defer w.Close()

	out := cmd.OutOrStdout()
	opts := env.driverOptions()
	opts.Suggest = suggest
	pass := func(ctx context.Context, changed []string) error {
		start := time.Now()
		res, err := driver.Diagnose(ctx, opts, target)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "eqlint: %v\n", err)
			return nil
		}
		if clearScreen {
			fmt.Fprint(out, "\033[H\033[2J")
		}
		if len(changed) > 0 && !env.quiet {
			fmt.Fprintf(out, "changed: %d file(s)\n", len(changed))
		}
		if err := renderDiagnostics(out, res, renderOptions{
			format:    "pretty",
			color:     env.color,
			pathMode:  diagfmt.PathModeAuto,
			showFixes: suggest,
		}); err != nil {
			return err
		}
		printSummary(out, res)
		if env.timings {
			fmt.Fprintf(cmd.ErrOrStderr(), "pass took %.1f ms\n", float64(time.Since(start))/float64(time.Millisecond))
		}
		return nil
	}

	return w.Run(cmd.Context(), []string{watchRoot}, pass)
}
