// Package diag defines the diagnostic model shared by every eqlint component.
//
// # Purpose
//
//   - Provide deterministic, serialisable records for findings produced by the
//     rule engine and by the input providers (Go packages, graph documents).
//   - Offer light-weight sinks (Reporter, Bag) so producers can emit without
//     knowing about storage or rendering.
//   - Model fix suggestions as structured edits that the fix engine or an
//     editor integration can materialise and apply.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity: Info, Warning or Error.
//   - Code: compact numeric identifier with a stable string form (GE001...).
//   - Message and Args: the rendered message and the ordered arguments it was
//     rendered from.
//   - Primary: the source.Span of the offending property's declared type.
//   - Notes: optional secondary spans.
//   - Fixes: candidate corrections, in the order they should be offered.
//
// Descriptors in codes.go hold the title, message format, category and default
// severity of every rule. They are the single source for rule metadata; the
// CLI `rules` command and the SARIF renderer read them from here.
//
// # Fix suggestions
//
// A Fix carries a Title, an EquivalenceKey used to group identical fixes for
// fix-all, a Kind, an Applicability and either concrete Edits or a Thunk that
// builds them on demand. TextEdit.OldText, when set, guards the edit.
//
// Package diag performs no IO and no formatting beyond the golden one-line
// form used by tests; renderers live in internal/diagfmt and application of
// edits lives in internal/fix.
package diag
