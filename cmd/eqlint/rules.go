package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"eqlint/internal/diag"
)

type ruleJSON struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Category        string `json:"category"`
	DefaultSeverity string `json:"default_severity"`
	Enabled         bool   `json:"enabled_by_default"`
	MessageFormat   string `json:"message_format"`
	Description     string `json:"description"`
}

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the equality rules and their descriptors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return err
			}
			colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
			if err != nil {
				return err
			}
			switch strings.ToLower(format) {
			case "pretty":
				renderRulesPretty(cmd.OutOrStdout(), useColor(colorFlag))
				return nil
			case "json":
				return renderRulesJSON(cmd.OutOrStdout())
			default:
				return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
			}
		},
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	return cmd
}

func rulesPayload() []ruleJSON {
	codes := diag.RuleCodes()
	out := make([]ruleJSON, 0, len(codes))
	for _, c := range codes {
		d := c.Descriptor()
		out = append(out, ruleJSON{
			ID:              c.ID(),
			Title:           d.Title,
			Category:        d.Category,
			DefaultSeverity: strings.ToLower(d.DefaultSeverity.String()),
			Enabled:         d.EnabledDefault,
			MessageFormat:   d.MessageFormat,
			Description:     d.Description,
		})
	}
	return out
}

func renderRulesPretty(w io.Writer, useColor bool) {
	id := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.Faint)
	if useColor {
		id.EnableColor()
		dim.EnableColor()
	} else {
		id.DisableColor()
		dim.DisableColor()
	}
	for i, r := range rulesPayload() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s  %s\n", id.Sprint(r.ID), r.Title)
		fmt.Fprintf(w, "  %s\n", dim.Sprintf("category: %s, default: %s", r.Category, r.DefaultSeverity))
		fmt.Fprintf(w, "  message: %s\n", r.MessageFormat)
		if r.Description != "" {
			fmt.Fprintf(w, "  %s\n", r.Description)
		}
	}
}

func renderRulesJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rulesPayload())
}
