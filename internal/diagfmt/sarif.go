package diagfmt

import (
	"io"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"github.com/owenrumney/go-sarif/v2/sarif"

	"eqlint/internal/diag"
	"eqlint/internal/source"
)

func sarifLevel(s diag.Severity) string {
	switch s {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	}
	return "note"
}

// BuildSarif assembles a SARIF 2.1.0 report with one run. Every rule code is
// listed in the driver, plus any other code present in the bag. Fixes become
// SARIF fixes with byte-offset replacements.
func BuildSarif(bag *diag.Bag, fs *source.FileSet, meta SarifRunMeta) (*sarif.Report, error) {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, err
	}
	name := meta.ToolName
	if name == "" {
		name = "eqlint"
	}
	var run *sarif.Run
	if meta.InformationURI != "" {
		run = sarif.NewRunWithInformationURI(name, meta.InformationURI)
	} else {
		run = sarif.NewRun(*sarif.NewSimpleTool(name))
	}
	if meta.ToolVersion != "" {
		run.Tool.Driver.WithVersion(meta.ToolVersion)
	}
	guid := meta.RunGUID
	if guid == "" {
		guid = uuid.NewString()
	}
	run.WithAutomationDetails(sarif.NewRunAutomationDetails().WithGUID(guid).WithID(name + "/" + guid))
	run.AddInvocation(!bag.HasErrors()).WithArguments(meta.InvocationArgs)

	codes := map[diag.Code]bool{}
	for _, c := range diag.RuleCodes() {
		codes[c] = true
	}
	for _, d := range bag.Items() {
		codes[d.Code] = true
	}
	ordered := make([]diag.Code, 0, len(codes))
	for c := range codes {
		ordered = append(ordered, c)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })
	for _, c := range ordered {
		desc := c.Descriptor()
		rule := run.AddRule(c.ID()).
			WithName(desc.Title).
			WithShortDescription(sarif.NewMultiformatMessageString(desc.Title)).
			WithDefaultConfiguration(sarif.NewReportingConfiguration().
				WithLevel(sarifLevel(desc.DefaultSeverity)).
				WithEnabled(desc.EnabledDefault))
		if desc.Description != "" {
			rule.WithFullDescription(sarif.NewMultiformatMessageString(desc.Description))
		}
	}

	ctx := diag.FixBuildContext{FileSet: fs}
	for _, d := range bag.Items() {
		result := sarif.NewRuleResult(d.Code.ID()).
			WithLevel(sarifLevel(d.Severity)).
			WithMessage(sarif.NewTextMessage(d.Message))
		if loc := sarifLocation(fs, d.Primary); loc != nil {
			result.AddLocation(loc)
		}
		for _, n := range d.Notes {
			if loc := sarifLocation(fs, n.Span); loc != nil {
				loc.WithMessage(sarif.NewTextMessage(n.Msg))
				result.AddRelatedLocation(loc)
			}
		}
		for _, f := range sortedFixes(d.Fixes) {
			resolved, err := f.Resolve(ctx)
			if err != nil || len(resolved.Edits) == 0 {
				continue
			}
			result.AddFix(sarifFix(fs, resolved))
		}
		run.AddResult(result)
	}
	report.AddRun(run)
	return report, nil
}

// Sarif writes the bag as an indented SARIF 2.1.0 document.
func Sarif(w io.Writer, bag *diag.Bag, fs *source.FileSet, meta SarifRunMeta) error {
	report, err := BuildSarif(bag, fs, meta)
	if err != nil {
		return err
	}
	return report.PrettyWrite(w)
}

func sarifURI(fs *source.FileSet, id source.FileID) (string, bool) {
	f := fs.Get(id)
	if f == nil {
		return "", false
	}
	return filepath.ToSlash(formatPath(fs, f, PathModeRelative)), true
}

func sarifLocation(fs *source.FileSet, span source.Span) *sarif.Location {
	uri, ok := sarifURI(fs, span.File)
	if !ok {
		return nil
	}
	start, end := fs.Resolve(span)
	region := sarif.NewRegion().
		WithStartLine(int(start.Line)).
		WithStartColumn(int(start.Col)).
		WithEndLine(int(end.Line)).
		WithEndColumn(int(end.Col))
	return sarif.NewLocation().WithPhysicalLocation(
		sarif.NewPhysicalLocation().
			WithArtifactLocation(sarif.NewArtifactLocation().WithUri(uri)).
			WithRegion(region),
	)
}

func sarifFix(fs *source.FileSet, f diag.Fix) *sarif.Fix {
	changes := map[source.FileID]*sarif.ArtifactChange{}
	var order []source.FileID
	for _, e := range f.Edits {
		ch, ok := changes[e.Span.File]
		if !ok {
			uri, _ := sarifURI(fs, e.Span.File)
			ch = sarif.NewArtifactChange(sarif.NewArtifactLocation().WithUri(uri))
			changes[e.Span.File] = ch
			order = append(order, e.Span.File)
		}
		region := sarif.NewRegion().
			WithByteOffset(int(e.Span.Start)).
			WithByteLength(int(e.Span.Len()))
		ch.WithReplacement(sarif.NewReplacement(region).
			WithInsertedContent(sarif.NewArtifactContent().WithText(e.NewText)))
	}
	out := sarif.NewFix().WithDescriptionText(f.Title)
	for _, id := range order {
		out.AddArtifactChanges(changes[id])
	}
	return out
}
