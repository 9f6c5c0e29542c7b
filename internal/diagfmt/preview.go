package diagfmt

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"eqlint/internal/diag"
	"eqlint/internal/source"
)

// fixEditPreview holds the lines an edit touches before and after applying it.
type fixEditPreview struct {
	before []string
	after  []string
}

func buildFixEditPreview(fs *source.FileSet, edit diag.TextEdit) (fixEditPreview, error) {
	if fs == nil {
		return fixEditPreview{}, fmt.Errorf("nil FileSet")
	}
	file := fs.Get(edit.Span.File)
	if file == nil {
		return fixEditPreview{}, fmt.Errorf("file %d not found in FileSet", edit.Span.File)
	}

	startPos, endPos := fs.Resolve(edit.Span)
	endLine := max(endPos.Line, startPos.Line)

	size, err := safecast.Conv[uint32](len(file.Content))
	if err != nil {
		return fixEditPreview{}, fmt.Errorf("content length overflow: %w", err)
	}
	blockStart := file.LineStart(startPos.Line)
	blockEnd := min(max(file.LineStart(endLine+1), blockStart), size)
	block := file.Content[blockStart:blockEnd]

	if edit.Span.Start < blockStart || edit.Span.End < edit.Span.Start || edit.Span.End > blockEnd {
		return fixEditPreview{}, fmt.Errorf("edit span %s outside preview block", edit.Span)
	}
	relStart := edit.Span.Start - blockStart
	relEnd := edit.Span.End - blockStart

	after := make([]byte, 0, len(block)+len(edit.NewText))
	after = append(after, block[:relStart]...)
	after = append(after, edit.NewText...)
	after = append(after, block[relEnd:]...)

	return fixEditPreview{
		before: splitPreviewLines(block),
		after:  splitPreviewLines(after),
	}, nil
}

// splitPreviewLines drops the final newline so a block ending in "\n" does
// not produce a trailing empty line.
func splitPreviewLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	return strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
}
