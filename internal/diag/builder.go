package diag

import "eqlint/internal/source"

func New(sev Severity, code Code, primary source.Span, msg string) *Diagnostic {
	return &Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

// NewFromCode renders the code's message format and uses its default severity.
func NewFromCode(code Code, primary source.Span, args ...string) *Diagnostic {
	return &Diagnostic{
		Severity: code.Descriptor().DefaultSeverity,
		Code:     code,
		Primary:  primary,
		Message:  code.Format(args...),
		Args:     append([]string(nil), args...),
	}
}

func NewError(code Code, primary source.Span, msg string) *Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d *Diagnostic) WithNote(sp source.Span, msg string) *Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

func (d *Diagnostic) WithFixSuggestion(fix *Fix) *Diagnostic {
	if fix == nil {
		return d
	}
	d.Fixes = append(d.Fixes, fix)
	return d
}
