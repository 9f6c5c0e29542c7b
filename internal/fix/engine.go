package fix

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"eqlint/internal/diag"
	"eqlint/internal/source"
)

// ErrNoFixes is returned when no fixes were applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// ApplyMode determines selection strategy for fixes.
type ApplyMode uint8

const (
	// ApplyModeOnce applies the first safe fix in source order.
	ApplyModeOnce ApplyMode = iota
	// ApplyModeAll applies the preferred fix of every diagnostic.
	ApplyModeAll
	// ApplyModeID applies the single fix with TargetID.
	ApplyModeID
	// ApplyModeKey applies every fix whose equivalence key is TargetKey.
	ApplyModeKey
	// ApplyModeIDs applies every fix listed in TargetIDs.
	ApplyModeIDs
)

// ApplyOptions configures how fixes are selected.
type ApplyOptions struct {
	Mode      ApplyMode
	TargetID  string
	TargetKey string
	TargetIDs []string
	DryRun    bool // compute changes without writing files
}

// AppliedFix records a successfully applied fix.
type AppliedFix struct {
	ID             string
	Title          string
	EquivalenceKey string
	Code           diag.Code
	Message        string
	Applicability  diag.FixApplicability
	PrimaryPath    string
	EditCount      int
}

// SkippedFix captures a skipped or failed fix with a reason.
type SkippedFix struct {
	ID     string
	Title  string
	Reason string
}

// FileChange summarises modifications performed on a file. Content holds the
// rewritten file.
type FileChange struct {
	Path      string
	FileID    source.FileID
	EditCount int
	Content   []byte
}

// ApplyResult aggregates applied fixes, skipped ones, and file changes.
type ApplyResult struct {
	Applied     []AppliedFix
	Skipped     []SkippedFix
	FileChanges []FileChange
}

type candidate struct {
	diag    *diag.Diagnostic
	diagIdx int
	fix     diag.Fix
	order   int
}

// Candidate is a resolved fix offered for a diagnostic, as listed to users
// before they pick one by ID.
type Candidate struct {
	ID             string
	Title          string
	EquivalenceKey string
	Preferred      bool
	Applicability  diag.FixApplicability
	Diagnostic     *diag.Diagnostic
	Edits          []diag.TextEdit
}

// Candidates resolves and orders every fix without applying anything.
func Candidates(fs *source.FileSet, diagnostics []*diag.Diagnostic) ([]Candidate, []SkippedFix) {
	cands, skips := gatherCandidates(diag.FixBuildContext{FileSet: fs}, diagnostics)
	sortCandidates(cands)
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		out = append(out, Candidate{
			ID:             c.fix.ID,
			Title:          c.fix.Title,
			EquivalenceKey: c.fix.EquivalenceKey,
			Preferred:      c.fix.IsPreferred,
			Applicability:  c.fix.Applicability,
			Diagnostic:     c.diag,
			Edits:          c.fix.Edits,
		})
	}
	return out, skips
}

// Apply collects fixes from diagnostics, selects a subset according to opts,
// and applies them.
func Apply(fs *source.FileSet, diagnostics []*diag.Diagnostic, opts ApplyOptions) (*ApplyResult, error) {
	result := &ApplyResult{
		Applied:     make([]AppliedFix, 0),
		Skipped:     make([]SkippedFix, 0),
		FileChanges: make([]FileChange, 0),
	}
	if fs == nil {
		return result, fmt.Errorf("fix: FileSet is nil")
	}

	ctx := diag.FixBuildContext{FileSet: fs}
	candidates, buildSkips := gatherCandidates(ctx, diagnostics)
	result.Skipped = append(result.Skipped, buildSkips...)

	if len(candidates) == 0 {
		return result, ErrNoFixes
	}

	sortCandidates(candidates)

	selected, selectionSkips := selectCandidates(candidates, opts)
	result.Skipped = append(result.Skipped, selectionSkips...)

	if len(selected) == 0 {
		return result, ErrNoFixes
	}

	applied, skippedDuringApply, changes, err := applyCandidates(fs, selected, opts.DryRun)
	result.Applied = append(result.Applied, applied...)
	result.Skipped = append(result.Skipped, skippedDuringApply...)
	result.FileChanges = append(result.FileChanges, changes...)

	if err != nil {
		return result, err
	}
	if len(result.Applied) == 0 {
		return result, ErrNoFixes
	}
	return result, nil
}

// gatherCandidates materializes the fixes of every diagnostic. Fixes that fail
// to build, carry no edits or repeat an ID become skips. Fixes without an ID
// get one derived from the diagnostic code, position and fix index.
func gatherCandidates(ctx diag.FixBuildContext, diagnostics []*diag.Diagnostic) ([]candidate, []SkippedFix) {
	cands := make([]candidate, 0)
	skips := make([]SkippedFix, 0)

	seen := make(map[string]bool)
	order := 0
	for di, d := range diagnostics {
		if d == nil || len(d.Fixes) == 0 {
			continue
		}

		resolved, err := diag.MaterializeFixes(ctx, d.Fixes)
		if err != nil {
			skips = append(skips, SkippedFix{
				Title:  d.Message,
				Reason: fmt.Sprintf("failed to build fixes: %v", err),
			})
			continue
		}

		for idx, f := range resolved {
			if f.ID == "" {
				f.ID = fmt.Sprintf("%s-%d-%d-%d", d.Code.ID(), d.Primary.File, d.Primary.Start, idx)
			}
			if len(f.Edits) == 0 {
				skips = append(skips, SkippedFix{
					ID:     f.ID,
					Title:  f.Title,
					Reason: "fix has no edits",
				})
				continue
			}
			if seen[f.ID] {
				skips = append(skips, SkippedFix{
					ID:     f.ID,
					Title:  f.Title,
					Reason: "duplicate fix id",
				})
				continue
			}
			seen[f.ID] = true
			cands = append(cands, candidate{
				diag:    d,
				diagIdx: di,
				fix:     f,
				order:   order,
			})
			order++
		}
	}
	return cands, skips
}

// sortCandidates orders candidates by file, span, insertion order, code,
// preference, ID and title.
func sortCandidates(candidates []candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		di, dj := candidates[i].diag, candidates[j].diag
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if candidates[i].order != candidates[j].order {
			return candidates[i].order < candidates[j].order
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		if candidates[i].fix.IsPreferred != candidates[j].fix.IsPreferred {
			return candidates[i].fix.IsPreferred
		}
		if candidates[i].fix.ID != candidates[j].fix.ID {
			return candidates[i].fix.ID < candidates[j].fix.ID
		}
		return candidates[i].fix.Title < candidates[j].fix.Title
	})
}

func selectCandidates(candidates []candidate, opts ApplyOptions) ([]candidate, []SkippedFix) {
	switch opts.Mode {
	case ApplyModeID:
		for _, cand := range candidates {
			if cand.fix.ID == opts.TargetID {
				if cand.fix.RequiresAll {
					return nil, []SkippedFix{{
						ID:     opts.TargetID,
						Reason: "fix requires all fixes to be applied",
					}}
				}
				return []candidate{cand}, nil
			}
		}
		return nil, []SkippedFix{{
			ID:     opts.TargetID,
			Reason: "fix id not found",
		}}
	case ApplyModeKey:
		var selected []candidate
		for _, cand := range candidates {
			if cand.fix.EquivalenceKey == opts.TargetKey {
				selected = append(selected, cand)
			}
		}
		if len(selected) == 0 {
			return nil, []SkippedFix{{
				ID:     opts.TargetKey,
				Reason: "no fix with this equivalence key",
			}}
		}
		return selected, nil
	case ApplyModeIDs:
		want := make(map[string]bool, len(opts.TargetIDs))
		for _, id := range opts.TargetIDs {
			want[id] = true
		}
		var selected []candidate
		var skipped []SkippedFix
		for _, cand := range candidates {
			if !want[cand.fix.ID] {
				continue
			}
			delete(want, cand.fix.ID)
			if cand.fix.RequiresAll {
				skipped = append(skipped, SkippedFix{
					ID:     cand.fix.ID,
					Title:  cand.fix.Title,
					Reason: "fix requires all fixes to be applied",
				})
				continue
			}
			selected = append(selected, cand)
		}
		for _, id := range opts.TargetIDs {
			if want[id] {
				skipped = append(skipped, SkippedFix{ID: id, Reason: "fix id not found"})
				delete(want, id)
			}
		}
		return selected, skipped
	case ApplyModeAll:
		return selectPreferredPerDiagnostic(candidates)
	case ApplyModeOnce:
		var selected []candidate
		var fallback *candidate
		skipped := make([]SkippedFix, 0)
		for i := range candidates {
			cand := candidates[i]
			if cand.fix.RequiresAll {
				skipped = append(skipped, SkippedFix{
					ID:     cand.fix.ID,
					Title:  cand.fix.Title,
					Reason: "fix requires all fixes to be applied",
				})
				continue
			}
			if cand.fix.Applicability == diag.FixApplicabilityAlwaysSafe {
				selected = []candidate{cand}
				break
			}
			if fallback == nil {
				tmp := cand
				fallback = &tmp
			}
		}
		if len(selected) == 0 && fallback != nil {
			selected = []candidate{*fallback}
		}
		return selected, skipped
	default:
		return nil, nil
	}
}

// selectPreferredPerDiagnostic keeps one always-safe fix per diagnostic: the
// preferred one when present, otherwise the first.
func selectPreferredPerDiagnostic(candidates []candidate) ([]candidate, []SkippedFix) {
	chosen := make(map[int]int) // diagIdx -> index into candidates
	skipped := make([]SkippedFix, 0)
	for i, cand := range candidates {
		if cand.fix.Applicability != diag.FixApplicabilityAlwaysSafe {
			skipped = append(skipped, SkippedFix{
				ID:     cand.fix.ID,
				Title:  cand.fix.Title,
				Reason: fmt.Sprintf("applicability is %s", cand.fix.Applicability.String()),
			})
			continue
		}
		prev, ok := chosen[cand.diagIdx]
		if !ok || (cand.fix.IsPreferred && !candidates[prev].fix.IsPreferred) {
			chosen[cand.diagIdx] = i
		}
	}
	selected := make([]candidate, 0, len(chosen))
	for i, cand := range candidates {
		if idx, ok := chosen[cand.diagIdx]; ok && idx == i {
			selected = append(selected, cand)
		}
	}
	return selected, skipped
}

func applyCandidates(fs *source.FileSet, selected []candidate, dryRun bool) ([]AppliedFix, []SkippedFix, []FileChange, error) {
	buffers := make(map[source.FileID][]byte)
	appliedEdits := make(map[source.FileID][]diag.TextEdit)
	fileEditCount := make(map[source.FileID]int)
	dirtyFiles := make(map[source.FileID]bool)

	applied := make([]AppliedFix, 0, len(selected))
	skipped := make([]SkippedFix, 0)

	baseDir := fs.BaseDir()

	for _, cand := range selected {
		fileIDs, buckets := groupEditsByFile(cand.fix.Edits)
		stagedBuffers := make(map[source.FileID][]byte)
		stagedApplied := make(map[source.FileID][]diag.TextEdit)
		stagedCount := make(map[source.FileID]int)
		totalEdits := 0
		var skipReason string

		for _, fileID := range fileIDs {
			edits := buckets[fileID]
			file := fs.Get(fileID)
			if file == nil {
				skipReason = "target file is unknown"
				break
			}
			if file.Flags&source.FileVirtual != 0 && !dryRun {
				skipReason = "target file is virtual"
				break
			}
			if conflictsWithExisting(appliedEdits[fileID], edits) {
				skipReason = fmt.Sprintf("conflicts with previously applied edits in %s", file.FormatPath("auto", baseDir))
				break
			}

			base := buffers[fileID]
			if base == nil {
				base = file.Content
			}
			working := append([]byte(nil), base...)

			// apply back to front so earlier offsets stay valid
			sort.SliceStable(edits, func(i, j int) bool {
				if edits[i].Span.Start == edits[j].Span.Start {
					return edits[i].Span.End > edits[j].Span.End
				}
				return edits[i].Span.Start > edits[j].Span.Start
			})

			existing := append([]diag.TextEdit(nil), appliedEdits[fileID]...)
			for _, edit := range edits {
				start := int(edit.Span.Start) + cumulativeDelta(existing, int(edit.Span.Start))
				end := int(edit.Span.End) + cumulativeDelta(existing, int(edit.Span.End))
				if start < 0 || end < start || end > len(working) {
					skipReason = "edit span out of range"
					break
				}
				if edit.OldText != "" && string(working[start:end]) != edit.OldText {
					skipReason = "existing text does not match expected content"
					break
				}
				suffix := append([]byte(nil), working[end:]...)
				working = append(append(working[:start], edit.NewText...), suffix...)
				existing = insertEditSorted(existing, edit)
			}
			if skipReason != "" {
				break
			}
			stagedBuffers[fileID] = working
			stagedApplied[fileID] = existing
			stagedCount[fileID] = len(edits)
			totalEdits += len(edits)
		}

		if skipReason != "" {
			skipped = append(skipped, SkippedFix{
				ID:     cand.fix.ID,
				Title:  cand.fix.Title,
				Reason: skipReason,
			})
			continue
		}

		for fileID, buf := range stagedBuffers {
			buffers[fileID] = buf
			appliedEdits[fileID] = stagedApplied[fileID]
			fileEditCount[fileID] += stagedCount[fileID]
			dirtyFiles[fileID] = true
		}

		applied = append(applied, AppliedFix{
			ID:             cand.fix.ID,
			Title:          cand.fix.Title,
			EquivalenceKey: cand.fix.EquivalenceKey,
			Code:           cand.diag.Code,
			Message:        cand.diag.Message,
			Applicability:  cand.fix.Applicability,
			PrimaryPath:    formatFilePath(fs, cand.diag.Primary.File),
			EditCount:      totalEdits,
		})
	}

	if len(applied) == 0 {
		return applied, skipped, nil, nil
	}

	fileChanges := make([]FileChange, 0, len(dirtyFiles))
	for fileID := range dirtyFiles {
		buf := buffers[fileID]
		file := fs.Get(fileID)

		if !dryRun {
			mode := os.FileMode(0o644)
			if info, err := os.Stat(file.Path); err == nil {
				mode = info.Mode()
			}
			if err := os.WriteFile(file.Path, buf, mode); err != nil {
				return applied, skipped, fileChanges, fmt.Errorf("write %s: %w", file.Path, err)
			}
		}

		fileChanges = append(fileChanges, FileChange{
			Path:      file.FormatPath("relative", baseDir),
			FileID:    fileID,
			EditCount: fileEditCount[fileID],
			Content:   buf,
		})
	}

	sort.SliceStable(fileChanges, func(i, j int) bool {
		return fileChanges[i].Path < fileChanges[j].Path
	})

	return applied, skipped, fileChanges, nil
}

func conflictsWithExisting(existing, edits []diag.TextEdit) bool {
	for _, prev := range existing {
		for _, cand := range edits {
			if spansConflict(prev, cand) {
				return true
			}
		}
	}
	return false
}

// spansConflict reports whether two edits overlap as half-open ranges.
// Insertions never conflict with each other; an insertion conflicts with a
// replacement whose range strictly contains its position.
func spansConflict(a, b diag.TextEdit) bool {
	aStart, aEnd := a.Span.Start, a.Span.End
	bStart, bEnd := b.Span.Start, b.Span.End

	if aStart == aEnd && bStart == bEnd {
		return false
	}
	if aStart == aEnd {
		return bStart <= aStart && aStart < bEnd
	}
	if bStart == bEnd {
		return aStart <= bStart && bStart < aEnd
	}
	return aStart < bEnd && bStart < aEnd
}

// groupEditsByFile buckets edits per file and returns the files in first-seen order.
func groupEditsByFile(edits []diag.TextEdit) ([]source.FileID, map[source.FileID][]diag.TextEdit) {
	buckets := make(map[source.FileID][]diag.TextEdit)
	var order []source.FileID
	for _, edit := range edits {
		if _, ok := buckets[edit.Span.File]; !ok {
			order = append(order, edit.Span.File)
		}
		buckets[edit.Span.File] = append(buckets[edit.Span.File], edit)
	}
	return order, buckets
}

// cumulativeDelta is the length change at pos caused by edits already applied
// before it. edits must be sorted by start.
func cumulativeDelta(edits []diag.TextEdit, pos int) int {
	delta := 0
	for _, e := range edits {
		eStart := int(e.Span.Start)
		if eStart > pos {
			break
		}
		eEnd := int(e.Span.End)
		if eEnd <= pos {
			delta += len(e.NewText) - (eEnd - eStart)
		}
	}
	return delta
}

func insertEditSorted(edits []diag.TextEdit, edit diag.TextEdit) []diag.TextEdit {
	insertIdx := sort.Search(len(edits), func(i int) bool {
		if edits[i].Span.Start == edit.Span.Start {
			return edits[i].Span.End >= edit.Span.End
		}
		return edits[i].Span.Start > edit.Span.Start
	})
	edits = append(edits, diag.TextEdit{})
	copy(edits[insertIdx+1:], edits[insertIdx:])
	edits[insertIdx] = edit
	return edits
}

func formatFilePath(fs *source.FileSet, fileID source.FileID) string {
	if fs == nil {
		return ""
	}
	file := fs.Get(fileID)
	if file == nil {
		return ""
	}
	return file.FormatPath("auto", fs.BaseDir())
}
