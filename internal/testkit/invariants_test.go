package testkit

import (
	"strings"
	"testing"

	"eqlint/internal/diag"
	"eqlint/internal/source"
)

func fixture() (*source.FileSet, source.FileID) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("order.go", []byte("type Order struct {\n\tItems []string\n}\n"))
	return fs, id
}

func TestCheckDiagnosticInvariantsAccepts(t *testing.T) {
	fs, id := fixture()
	d := &diag.Diagnostic{
		Code:    diag.EqCollectionNeedsStrategy,
		Primary: source.Span{File: id, Start: 21, End: 26},
		Fixes: []*diag.Fix{{
			Title: "Add [OrderedEquality]",
			Edits: []diag.TextEdit{{Span: source.Span{File: id, Start: 20, End: 20}, NewText: "\t//eq:ordered\n"}},
		}},
	}
	if err := CheckDiagnosticInvariants(fs, []*diag.Diagnostic{d, {Code: diag.IOLoadFileError}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckDiagnosticInvariantsRejects(t *testing.T) {
	fs, id := fixture()
	cases := []struct {
		name string
		diag *diag.Diagnostic
		want string
	}{
		{
			name: "out of bounds",
			diag: &diag.Diagnostic{Primary: source.Span{File: id, Start: 30, End: 400}},
			want: "beyond content",
		},
		{
			name: "unknown file",
			diag: &diag.Diagnostic{Primary: source.Span{File: id + 5, Start: 1, End: 2}},
			want: "unknown file",
		},
		{
			name: "guard mismatch",
			diag: &diag.Diagnostic{
				Primary: source.Span{File: id, Start: 21, End: 26},
				Fixes: []*diag.Fix{{Edits: []diag.TextEdit{{
					Span: source.Span{File: id, Start: 21, End: 26}, NewText: "Lines", OldText: "Other",
				}}}},
			},
			want: "expects",
		},
		{
			name: "overlap",
			diag: &diag.Diagnostic{
				Primary: source.Span{File: id, Start: 21, End: 26},
				Fixes: []*diag.Fix{{Edits: []diag.TextEdit{
					{Span: source.Span{File: id, Start: 21, End: 26}},
					{Span: source.Span{File: id, Start: 24, End: 28}},
				}}},
			},
			want: "overlaps",
		},
	}
	for _, tc := range cases {
		err := CheckDiagnosticInvariants(fs, []*diag.Diagnostic{tc.diag})
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: expected error containing %q, got %v", tc.name, tc.want, err)
		}
	}
}
