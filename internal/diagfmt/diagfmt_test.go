package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"eqlint/internal/diag"
	"eqlint/internal/fix"
	"eqlint/internal/source"
)

const orderSrc = "type Order struct {\n\tBuyer Customer\n\tItems []string\n}\n"

// fixture returns a sorted bag with a GE002 on Customer and a GE001 on
// []string carrying one insertion fix.
func fixture(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSetWithBase("/home/user/project")
	id := fs.AddVirtual("/home/user/project/shop/order.go", []byte(orderSrc))

	bag := diag.NewBag(10)
	bag.Add(diag.NewFromCode(diag.EqComplexNeedsEquatable, source.Span{File: id, Start: 27, End: 35}, "Buyer", "Customer", "Order"))
	ge001 := diag.NewFromCode(diag.EqCollectionNeedsStrategy, source.Span{File: id, Start: 43, End: 51}, "Items", "Order")
	f := fix.InsertText("Add [OrderedEquality]", source.Span{File: id, Start: 36, End: 36}, "\t//eq:ordered\n", "",
		fix.Preferred(), fix.WithEquivalenceKey("ordered_equality"))
	ge001.WithFixSuggestion(&f)
	bag.Add(ge001)
	bag.Sort()
	return bag, fs
}

func TestPrettyHeaderAndUnderline(t *testing.T) {
	bag, fs := fixture(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeRelative})
	out := buf.String()

	want := []string{
		"shop/order.go:2:8: warning GE002: Property 'Buyer' of type 'Customer' in Equatable class 'Order' references a type that is not marked [Equatable]\n",
		" 2 | \tBuyer Customer\n",
		"   | \t      ^~~~~~~~\n",
		"shop/order.go:3:8: warning GE001: Collection field 'Items' in Equatable class 'Order' requires an equality attribute\n",
		"   | \t      ^~~~~~~~\n",
	}
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("missing %q in:\n%s", w, out)
		}
	}
	if strings.Contains(out, "help:") {
		t.Errorf("fixes rendered without ShowFixes:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("color escapes with Color=false:\n%s", out)
	}
}

func TestPrettyContextLines(t *testing.T) {
	bag, fs := fixture(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, Context: 1})
	out := buf.String()
	if !strings.Contains(out, "order.go:2:8:") {
		t.Fatalf("basename path missing:\n%s", out)
	}
	if !strings.Contains(out, " 1 | type Order struct {\n 2 | \tBuyer Customer\n") {
		t.Errorf("context line missing:\n%s", out)
	}
}

func TestPrettyFixPreview(t *testing.T) {
	bag, fs := fixture(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{ShowFixes: true, ShowPreview: true})
	out := buf.String()
	for _, w := range []string{
		"  help: Add [OrderedEquality] (preferred)\n",
		"      - \tItems []string\n",
		"      + \t//eq:ordered\n",
		"      + \tItems []string\n",
	} {
		if !strings.Contains(out, w) {
			t.Errorf("missing %q in:\n%s", w, out)
		}
	}
}

func TestPrettyColor(t *testing.T) {
	bag, fs := fixture(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Color: true})
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("expected color escapes:\n%s", buf.String())
	}
}

func TestUnderlineWideRunes(t *testing.T) {
	pad, width := underline("名前 Items", 8, 13)
	if pad != "     " || width != 5 {
		t.Errorf("underline = %q, %d", pad, width)
	}
	if pad, width = underline("x", 1, 1); pad != "" || width != 1 {
		t.Errorf("empty span underline = %q, %d", pad, width)
	}
}

func TestClip(t *testing.T) {
	if got := clip("abcdefgh", 5); got != "abcd…" {
		t.Errorf("clip = %q", got)
	}
	if got := clip("abc", 0); got != "abc" {
		t.Errorf("clip without width = %q", got)
	}
}

func TestJSON(t *testing.T) {
	bag, fs := fixture(t)
	var buf bytes.Buffer
	err := JSON(&buf, bag, fs, JSONOpts{
		IncludePositions: true,
		PathMode:         PathModeRelative,
		IncludeFixes:     true,
		IncludePreviews:  true,
	})
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if out.Count != 2 || len(out.Diagnostics) != 2 {
		t.Fatalf("count = %d", out.Count)
	}
	first := out.Diagnostics[0]
	if first.Code != "GE002" || first.Severity != "WARNING" || first.Location.File != "shop/order.go" {
		t.Errorf("first = %+v", first)
	}
	if first.Location.StartLine != 2 || first.Location.StartCol != 8 || first.Location.EndCol != 16 {
		t.Errorf("location = %+v", first.Location)
	}
	if strings.Join(first.Args, ",") != "Buyer,Customer,Order" {
		t.Errorf("args = %v", first.Args)
	}
	second := out.Diagnostics[1]
	if len(second.Fixes) != 1 {
		t.Fatalf("fixes = %+v", second.Fixes)
	}
	fx := second.Fixes[0]
	if fx.Title != "Add [OrderedEquality]" || !fx.IsPreferred || fx.EquivalenceKey != "ordered_equality" {
		t.Errorf("fix = %+v", fx)
	}
	if len(fx.Edits) != 1 || fx.Edits[0].NewText != "\t//eq:ordered\n" || len(fx.Edits[0].AfterLines) != 2 {
		t.Errorf("edits = %+v", fx.Edits)
	}
}

func TestJSONMax(t *testing.T) {
	bag, fs := fixture(t)
	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 1})
	if out.Count != 1 || out.Diagnostics[0].Fixes != nil || out.Diagnostics[0].Location.StartLine != 0 {
		t.Errorf("out = %+v", out)
	}
	if bag.Len() != 2 {
		t.Errorf("bag trimmed to %d", bag.Len())
	}
}

func TestSarif(t *testing.T) {
	bag, fs := fixture(t)
	report, err := BuildSarif(bag, fs, SarifRunMeta{ToolVersion: "1.0.0", RunGUID: "run-1", InvocationArgs: []string{"diag", "./..."}})
	if err != nil {
		t.Fatalf("BuildSarif: %v", err)
	}
	if len(report.Runs) != 1 {
		t.Fatalf("runs = %d", len(report.Runs))
	}
	run := report.Runs[0]
	if run.Tool.Driver.Name != "eqlint" || len(run.Tool.Driver.Rules) != 3 {
		t.Errorf("driver = %+v", run.Tool.Driver)
	}
	if run.AutomationDetails == nil || *run.AutomationDetails.GUID != "run-1" {
		t.Errorf("automation details = %+v", run.AutomationDetails)
	}
	if len(run.Results) != 2 {
		t.Fatalf("results = %d", len(run.Results))
	}
	r := run.Results[1]
	if *r.RuleID != "GE001" || *r.Level != "warning" {
		t.Errorf("result = %s %s", *r.RuleID, *r.Level)
	}
	loc := r.Locations[0].PhysicalLocation
	if *loc.ArtifactLocation.URI != "shop/order.go" || *loc.Region.StartLine != 3 || *loc.Region.StartColumn != 8 {
		t.Errorf("location = %s %d:%d", *loc.ArtifactLocation.URI, *loc.Region.StartLine, *loc.Region.StartColumn)
	}
	if len(r.Fixes) != 1 || len(r.Fixes[0].ArtifactChanges) != 1 {
		t.Fatalf("fixes = %+v", r.Fixes)
	}
	rep := r.Fixes[0].ArtifactChanges[0].Replacements[0]
	if *rep.DeletedRegion.ByteOffset != 36 || *rep.InsertedContent.Text != "\t//eq:ordered\n" {
		t.Errorf("replacement = %+v", rep)
	}

	var buf bytes.Buffer
	if err := Sarif(&buf, bag, fs, SarifRunMeta{}); err != nil {
		t.Fatalf("Sarif: %v", err)
	}
	if !strings.Contains(buf.String(), `"version": "2.1.0"`) {
		t.Errorf("missing version:\n%s", buf.String())
	}
}

func TestParsePathMode(t *testing.T) {
	if m, ok := ParsePathMode("rel"); !ok || m != PathModeRelative {
		t.Errorf("rel = %v %v", m, ok)
	}
	if _, ok := ParsePathMode("bogus"); ok {
		t.Error("bogus accepted")
	}
}
