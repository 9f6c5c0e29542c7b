package symbols

import "eqlint/internal/source"

func spanAt(off uint32) source.Span {
	return source.Span{Start: off, End: off + 1}
}
