package diag

import (
	"errors"
	"fmt"

	"eqlint/internal/source"
)

// FixKind is the coarse classification of a fix.
type FixKind uint8

const (
	FixKindQuickFix FixKind = iota
	FixKindRefactor
	FixKindRefactorRewrite
	FixKindSourceAction
)

func (k FixKind) String() string {
	switch k {
	case FixKindQuickFix:
		return "quickfix"
	case FixKindRefactor:
		return "refactor"
	case FixKindRefactorRewrite:
		return "refactor.rewrite"
	case FixKindSourceAction:
		return "source"
	}
	return "unknown"
}

// FixApplicability is the confidence that a fix is correct without review.
type FixApplicability uint8

const (
	FixApplicabilityAlwaysSafe FixApplicability = iota
	FixApplicabilitySafeWithHeuristics
	FixApplicabilityManualReview
)

func (a FixApplicability) String() string {
	switch a {
	case FixApplicabilityAlwaysSafe:
		return "always-safe"
	case FixApplicabilitySafeWithHeuristics:
		return "safe-with-heuristics"
	case FixApplicabilityManualReview:
		return "manual-review"
	}
	return "unknown"
}

// TextEdit replaces Span with NewText. A non-empty OldText guards the edit:
// the engine refuses to apply it when the current text differs.
type TextEdit struct {
	Span    source.Span
	NewText string
	OldText string
}

// FixBuildContext is handed to lazy fix builders.
type FixBuildContext struct {
	FileSet *source.FileSet
}

// FixThunk builds a fix lazily.
type FixThunk func(ctx FixBuildContext) (Fix, error)

// Fix is a data-only description of an automated correction.
type Fix struct {
	ID             string
	Title          string
	EquivalenceKey string // groups the same kind of fix across diagnostics for fix-all
	Kind           FixKind
	Applicability  FixApplicability
	IsPreferred    bool
	RequiresAll    bool
	Edits          []TextEdit
	Thunk          FixThunk
}

var errNilFix = errors.New("nil fix")

// Resolve returns the materialized fix, invoking the thunk when edits are deferred.
// Metadata set on the receiver wins over metadata produced by the thunk.
func (f *Fix) Resolve(ctx FixBuildContext) (Fix, error) {
	if f == nil {
		return Fix{}, errNilFix
	}
	if f.Thunk == nil {
		out := *f
		out.Edits = append([]TextEdit(nil), f.Edits...)
		return out, nil
	}
	built, err := f.Thunk(ctx)
	if err != nil {
		return Fix{}, fmt.Errorf("build fix %q: %w", f.Title, err)
	}
	if f.ID != "" {
		built.ID = f.ID
	}
	if f.Title != "" {
		built.Title = f.Title
	}
	if f.EquivalenceKey != "" {
		built.EquivalenceKey = f.EquivalenceKey
	}
	if f.IsPreferred {
		built.IsPreferred = true
	}
	built.Thunk = nil
	return built, nil
}

// MaterializeFixes resolves every fix in order and stops at the first failure.
func MaterializeFixes(ctx FixBuildContext, fixes []*Fix) ([]Fix, error) {
	out := make([]Fix, 0, len(fixes))
	for _, f := range fixes {
		resolved, err := f.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved)
	}
	return out, nil
}
