package diagfmt

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"eqlint/internal/diag"
	"eqlint/internal/source"
)

type palette struct {
	err, warn, info, code, gutter, caret, note, help, add, del *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		code:   color.New(color.Faint),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgGreen, color.Bold),
		note:   color.New(color.FgCyan),
		help:   color.New(color.FgGreen),
		add:    color.New(color.FgGreen),
		del:    color.New(color.FgRed),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.gutter, p.caret, p.note, p.help, p.add, p.del} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty renders the bag for terminals. Items are printed in bag order, so
// callers sort the bag first. Each entry is
//
//	<path>:<line>:<col>: <severity> <CODE>: <message>
//
// followed by the source line with the span underlined, then notes and
// fixes when enabled.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		prettyOne(w, p, d, fs, opts)
	}
}

func prettyOne(w io.Writer, p palette, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	sev := strings.ToLower(d.Severity.String())
	f := fs.Get(d.Primary.File)
	if f == nil {
		fmt.Fprintf(w, "%s %s: %s\n", p.severity(d.Severity).Sprint(sev), p.code.Sprint(d.Code.ID()), d.Message)
		return
	}
	start, end := fs.Resolve(d.Primary)
	fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n", formatPath(fs, f, opts.PathMode), start.Line, start.Col,
		p.severity(d.Severity).Sprint(sev), p.code.Sprint(d.Code.ID()), d.Message)

	if len(f.Content) > 0 && start.Line > 0 {
		gw := len(fmt.Sprint(start.Line))
		first := start.Line - min(start.Line-1, uint32(max(opts.Context, 0)))
		for ln := first; ln <= start.Line; ln++ {
			fmt.Fprintf(w, " %s %s\n", p.gutter.Sprintf("%*d |", gw, ln), clip(f.GetLine(ln), opts.Width))
		}
		line := f.GetLine(start.Line)
		endCol := end.Col
		if end.Line != start.Line || endCol <= start.Col {
			endCol = uint32(len(line)) + 1
		}
		pad, width := underline(line, start.Col, endCol)
		fmt.Fprintf(w, " %s %s%s\n", p.gutter.Sprintf("%*s |", gw, ""), pad,
			p.caret.Sprint("^"+strings.Repeat("~", max(width-1, 0))))
	}

	if opts.ShowNotes {
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("note:"), n.Msg)
		}
	}
	if opts.ShowFixes {
		ctx := diag.FixBuildContext{FileSet: fs}
		for _, fx := range sortedFixes(d.Fixes) {
			resolved, err := fx.Resolve(ctx)
			title := resolved.Title
			if resolved.IsPreferred {
				title += " (preferred)"
			}
			if err != nil {
				fmt.Fprintf(w, "  %s %s: %v\n", p.help.Sprint("help:"), title, err)
				continue
			}
			fmt.Fprintf(w, "  %s %s\n", p.help.Sprint("help:"), title)
			if !opts.ShowPreview {
				continue
			}
			for _, e := range resolved.Edits {
				pv, err := buildFixEditPreview(fs, e)
				if err != nil {
					continue
				}
				for _, l := range pv.before {
					fmt.Fprintf(w, "      %s\n", p.del.Sprint("- "+l))
				}
				for _, l := range pv.after {
					fmt.Fprintf(w, "      %s\n", p.add.Sprint("+ "+l))
				}
			}
		}
	}
}

// underline returns the indentation that puts a caret under the 1-based
// byte column startCol and the display width of line[startCol-1:endCol-1].
// Tabs are kept so the caret lines up with the echoed source.
func underline(line string, startCol, endCol uint32) (string, int) {
	s := min(int(startCol)-1, len(line))
	e := min(max(int(endCol)-1, s), len(line))
	var pad strings.Builder
	for _, r := range line[:max(s, 0)] {
		if r == '\t' {
			pad.WriteByte('\t')
			continue
		}
		pad.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return pad.String(), max(runewidth.StringWidth(line[max(s, 0):e]), 1)
}

func clip(line string, width uint8) string {
	if width == 0 || runewidth.StringWidth(line) <= int(width) {
		return line
	}
	return runewidth.Truncate(line, int(width), "…")
}

// sortedFixes orders fixes preferred first, then by applicability, kind,
// title and ID.
func sortedFixes(fixes []*diag.Fix) []*diag.Fix {
	out := append([]*diag.Fix(nil), fixes...)
	sort.SliceStable(out, func(i, j int) bool {
		fi, fj := out[i], out[j]
		if fi.IsPreferred != fj.IsPreferred {
			return fi.IsPreferred
		}
		if fi.Applicability != fj.Applicability {
			return fi.Applicability < fj.Applicability
		}
		if fi.Kind != fj.Kind {
			return fi.Kind < fj.Kind
		}
		if fi.Title != fj.Title {
			return fi.Title < fj.Title
		}
		return fi.ID < fj.ID
	})
	return out
}
