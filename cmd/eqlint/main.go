package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"eqlint/internal/version"
)

// errSilentExit makes main exit with status 1 without printing anything;
// the command has already reported why.
var errSilentExit = errors.New("")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "eqlint",
		Short: "Value-equality checker for Equatable declarations",
		Long: `eqlint inspects declarations that opt into generated value equality and reports
collection members without an equality strategy and members whose types are not Equatable.`,
		Version:           version.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: startProfiling,
	}

	root.AddCommand(newDiagCmd())
	root.AddCommand(newFixCmd())
	root.AddCommand(newRulesCmd())
	root.AddCommand(newGraphCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newVersionCmd())

	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	root.PersistentFlags().Bool("timings", false, "show timing information")
	root.PersistentFlags().Int("max-diagnostics", 0, "maximum number of diagnostics to report (0 = config or unlimited)")
	root.PersistentFlags().String("config", "", "path to eqlint.toml (default: discovered from the target)")
	root.PersistentFlags().String("log-level", "", "log level (trace|debug|info|warn|error)")
	root.PersistentFlags().Bool("log-json", false, "emit logs as JSON")
	addProfilingFlags(root)
	return root
}

// main runs the root command and exits with status 1 on any error.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	stopProfiling()
	if err != nil {
		if !errors.Is(err, errSilentExit) {
			fmt.Fprintln(os.Stderr, "eqlint:", err)
		}
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
