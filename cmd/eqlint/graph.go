package main

import (
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"eqlint/internal/driver"
	"eqlint/internal/graphdoc"
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Inspect the symbol graph a run would evaluate",
	}

	export := &cobra.Command{
		Use:   "export [flags] <package pattern|graph document>",
		Short: "Write the symbol graph as a YAML, JSON or msgpack document",
		Args:  cobra.ArbitraryArgs,
		RunE:  runGraphExport,
	}
	export.Flags().StringP("output", "o", "", "write to file instead of stdout")
	export.Flags().String("format", "", "document format (yaml|json|msgpack), default from the output extension or yaml")

	dump := &cobra.Command{
		Use:   "dump [flags] <package pattern|graph document>",
		Short: "Dump the raw symbol graph for debugging",
		Args:  cobra.ArbitraryArgs,
		RunE:  runGraphDump,
	}
	dump.Flags().StringP("output", "o", "", "write to file instead of stdout")

	cmd.AddCommand(export, dump)
	return cmd
}

func runGraphExport(cmd *cobra.Command, args []string) error {
	targets := targetsOf(args)
	env, err := loadEnv(cmd, targets[0])
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	formatName, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format, err := exportFormat(formatName, output)
	if err != nil {
		return err
	}

	g, _, err := driver.LoadGraph(cmd.Context(), env.driverOptions(), targets...)
	if err != nil {
		return fmt.Errorf("graph export: %w", err)
	}
	env.log.Debug("exporting symbol graph", "decls", g.NumDecls(), "format", format)
	return writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
		return graphdoc.Encode(w, graphdoc.Export(g), format)
	})
}

func exportFormat(name, output string) (graphdoc.Format, error) {
	if name != "" {
		return graphdoc.ParseFormat(name)
	}
	if output != "" {
		if f, err := graphdoc.FormatFor(output); err == nil {
			return f, nil
		}
	}
	return graphdoc.FormatYAML, nil
}

func runGraphDump(cmd *cobra.Command, args []string) error {
	targets := targetsOf(args)
	env, err := loadEnv(cmd, targets[0])
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	g, _, err := driver.LoadGraph(cmd.Context(), env.driverOptions(), targets...)
	if err != nil {
		return fmt.Errorf("graph dump: %w", err)
	}
	cfg := spew.ConfigState{
		Indent:                  "  ",
		DisablePointerAddresses: true,
		DisableCapacities:       true,
		SortKeys:                true,
	}
	return writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
		cfg.Fdump(w, g)
		return nil
	})
}

// writeOutput sends write to path, or to stdout when path is empty.
func writeOutput(stdout io.Writer, path string, write func(io.Writer) error) (err error) {
	if path == "" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	return write(f)
}
