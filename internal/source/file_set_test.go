package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("model.go", []byte("hello world"), 0)
	if id1 != 0 {
		t.Errorf("expected first FileID to be 0, got %d", id1)
	}

	id2 := fs.Add("model.go", []byte("hello universe"), 0)
	if id2 != 1 {
		t.Errorf("expected second FileID to be 1, got %d", id2)
	}

	latestID, exists := fs.GetLatest("model.go")
	if !exists || latestID != id2 {
		t.Fatalf("expected latest id %d, got %d (exists=%v)", id2, latestID, exists)
	}

	if got := string(fs.Get(id1).Content); got != "hello world" {
		t.Errorf("old version lost, got %q", got)
	}
	if fs.Get(FileID(42)) != nil {
		t.Errorf("expected nil for unknown id")
	}
}

func TestFileSetResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("graph.yaml", []byte("a\nbc\n\nd"))

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{Line: 1, Col: 1}},
		{1, LineCol{Line: 1, Col: 2}},
		{2, LineCol{Line: 2, Col: 1}},
		{3, LineCol{Line: 2, Col: 2}},
		{5, LineCol{Line: 3, Col: 1}},
		{6, LineCol{Line: 4, Col: 1}},
	}
	for _, tt := range tests {
		start, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
		if start != tt.want {
			t.Errorf("offset %d: want %+v, got %+v", tt.off, tt.want, start)
		}
	}
}

func TestFileSetOffsetRoundTrip(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("graph.yaml", []byte("decls:\n  - name: Bad\n"))

	off := fs.Offset(id, LineCol{Line: 2, Col: 11})
	if got := string(fs.Get(id).Content[off : off+3]); got != "Bad" {
		t.Fatalf("expected Bad at offset, got %q", got)
	}
	if fs.Offset(id, LineCol{Line: 99, Col: 1}) != uint32(len(fs.Get(id).Content)) {
		t.Fatalf("expected clamp to file size")
	}
}

func TestFileGetLine(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("x.go", []byte("first\nsecond\n")))

	if got := f.GetLine(1); got != "first" {
		t.Errorf("line 1: %q", got)
	}
	if got := f.GetLine(2); got != "second" {
		t.Errorf("line 2: %q", got)
	}
	if got := f.GetLine(5); got != "" {
		t.Errorf("line 5: %q", got)
	}
}

func TestLoadNormalizesCRLFAndBOM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.go")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFpackage m\r\ntype A struct{}\r\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "package m\ntype A struct{}\n" {
		t.Fatalf("unexpected content %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("expected BOM and CRLF flags, got %b", f.Flags)
	}
}
