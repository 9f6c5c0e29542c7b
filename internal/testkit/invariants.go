// Package testkit holds assertions shared by the driver and provider tests.
package testkit

import (
	"fmt"
	"sort"

	"fortio.org/safecast"

	"eqlint/internal/diag"
	"eqlint/internal/source"
)

// CheckDiagnosticInvariants verifies the positional consistency of diags:
// 1) every primary and note span is non-empty and inside its file
// 2) every fix edit lies inside the diagnostic's file and OldText, when set,
// matches the content it replaces
// 3) the edits of one fix do not overlap
// Diagnostics with a zero primary span (positionless IO errors) are skipped.
func CheckDiagnosticInvariants(fs *source.FileSet, diags []*diag.Diagnostic) error {
	if fs == nil {
		return fmt.Errorf("nil file set")
	}
	for i, d := range diags {
		if d == nil {
			return fmt.Errorf("diagnostic %d is nil", i)
		}
		if d.Primary == (source.Span{}) {
			continue
		}
		if err := checkSpan(fs, d.Primary, false); err != nil {
			return fmt.Errorf("%s primary: %w", d.Code.ID(), err)
		}
		for _, n := range d.Notes {
			if err := checkSpan(fs, n.Span, false); err != nil {
				return fmt.Errorf("%s note %q: %w", d.Code.ID(), n.Msg, err)
			}
		}
		for _, fx := range d.Fixes {
			if fx == nil {
				return fmt.Errorf("%s: nil fix", d.Code.ID())
			}
			if err := checkEdits(fs, d.Primary.File, fx.Edits); err != nil {
				return fmt.Errorf("%s fix %q: %w", d.Code.ID(), fx.Title, err)
			}
		}
	}
	return nil
}

func checkSpan(fs *source.FileSet, sp source.Span, allowEmpty bool) error {
	f := fs.Get(sp.File)
	if f == nil {
		return fmt.Errorf("unknown file id %d", sp.File)
	}
	if sp.End < sp.Start || (!allowEmpty && sp.End == sp.Start) {
		return fmt.Errorf("empty or inverted span %v", sp)
	}
	size, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if sp.End > size {
		return fmt.Errorf("span %v ends beyond content (%d bytes)", sp, size)
	}
	return nil
}

func checkEdits(fs *source.FileSet, file source.FileID, edits []diag.TextEdit) error {
	sorted := append([]diag.TextEdit(nil), edits...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Span.Start < sorted[j].Span.Start })
	for i, e := range sorted {
		if e.Span.File != file {
			return fmt.Errorf("edit span file mismatch: got=%d want=%d", e.Span.File, file)
		}
		if err := checkSpan(fs, e.Span, true); err != nil {
			return err
		}
		if e.OldText != "" {
			got := string(fs.Get(file).Content[e.Span.Start:e.Span.End])
			if got != e.OldText {
				return fmt.Errorf("edit %v expects %q, found %q", e.Span, e.OldText, got)
			}
		}
		if i > 0 && e.Span.Start < sorted[i-1].Span.End {
			return fmt.Errorf("edit %v overlaps %v", e.Span, sorted[i-1].Span)
		}
	}
	return nil
}
