package fix

import (
	"testing"

	"eqlint/internal/diag"
	"eqlint/internal/source"
)

func TestInsertTextDefaults(t *testing.T) {
	at := source.Span{File: 1, Start: 4, End: 4}
	f := InsertText("insert", at, "x", "")
	if f.Kind != diag.FixKindQuickFix {
		t.Fatalf("expected quickfix kind, got %v", f.Kind)
	}
	if f.Applicability != diag.FixApplicabilityAlwaysSafe {
		t.Fatalf("expected always-safe, got %v", f.Applicability)
	}
	if len(f.Edits) != 1 || f.Edits[0].Span != at || f.Edits[0].NewText != "x" {
		t.Fatalf("unexpected edits: %+v", f.Edits)
	}
}

func TestMultipleOptions(t *testing.T) {
	f := ReplaceSpan("replace", source.Span{Start: 1, End: 3}, "new", "old",
		WithID("custom-id"),
		WithEquivalenceKey("set_equality"),
		WithKind(diag.FixKindRefactor),
		WithApplicability(diag.FixApplicabilityManualReview),
		WithRequiresAll(),
		Preferred(),
		nil,
	)
	if f.ID != "custom-id" || f.EquivalenceKey != "set_equality" {
		t.Fatalf("identity options not applied: %+v", f)
	}
	if f.Kind != diag.FixKindRefactor || f.Applicability != diag.FixApplicabilityManualReview {
		t.Fatalf("classification options not applied: %+v", f)
	}
	if !f.RequiresAll || !f.IsPreferred {
		t.Fatalf("flag options not applied: %+v", f)
	}
	if f.Edits[0].OldText != "old" {
		t.Fatalf("expected guard to be kept")
	}
}

func TestWithThunk(t *testing.T) {
	called := false
	f := InsertText("lazy", source.Span{}, "", "", WithThunk(func(diag.FixBuildContext) (diag.Fix, error) {
		called = true
		return diag.Fix{Edits: []diag.TextEdit{{NewText: "y"}}}, nil
	}))
	resolved, err := f.Resolve(diag.FixBuildContext{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !called || resolved.Edits[0].NewText != "y" || resolved.Title != "lazy" {
		t.Fatalf("unexpected resolved fix: %+v", resolved)
	}
}

func TestInsertLineBefore(t *testing.T) {
	fs := source.NewFileSet()
	content := "type Order struct {\n\tItems []string\n}\n"
	id := fs.AddVirtual("order.go", []byte(content))
	file := fs.Get(id)

	// offset of "[]string"
	offset := uint32(len("type Order struct {\n\tItems "))
	f := InsertLineBefore("Add [OrderedEquality]", file, offset, "//eq:ordered")
	if len(f.Edits) != 1 {
		t.Fatalf("expected one edit, got %d", len(f.Edits))
	}
	e := f.Edits[0]
	wantStart := uint32(len("type Order struct {\n"))
	if e.Span.Start != wantStart || e.Span.End != wantStart {
		t.Fatalf("expected insertion at %d, got %+v", wantStart, e.Span)
	}
	if e.NewText != "\t//eq:ordered\n" {
		t.Fatalf("unexpected text %q", e.NewText)
	}
}

func TestInsertLineBeforeFirstLine(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.yaml", []byte("  items: []\n"))
	f := InsertLineBefore("t", fs.Get(id), 400, "# x")
	if f.Edits[0].Span.Start != uint32(len("  items: []\n")) {
		t.Fatalf("offset past end should clamp to the last line start, got %d", f.Edits[0].Span.Start)
	}

	f = InsertLineBefore("t", fs.Get(id), 3, "# x")
	if f.Edits[0].Span.Start != 0 || f.Edits[0].NewText != "  # x\n" {
		t.Fatalf("unexpected edit %+v", f.Edits[0])
	}
}

func TestInsertLineBeforeNilFile(t *testing.T) {
	f := InsertLineBefore("t", nil, 0, "x")
	if len(f.Edits) != 0 {
		t.Fatalf("expected no edits for nil file")
	}
}
