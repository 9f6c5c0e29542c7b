package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eqlint/internal/config"
	"eqlint/internal/diag"
	"eqlint/internal/fix"
	"eqlint/internal/testkit"
)

const shopDoc = `declarations:
  - name: Shop.Customer
    properties:
      - name: Name
        type: string
  - name: Shop.Order
    markers: [Equatable]
    properties:
      - name: Items
        type: List<Customer>
      - name: Buyer
        type: Customer
      - name: Tags
        type: HashSet<string>
`

func writeDoc(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shop.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func codes(bag *diag.Bag) []string {
	var out []string
	for _, d := range bag.Items() {
		out = append(out, d.Code.ID())
	}
	return out
}

func TestDiagnoseGraphDocument(t *testing.T) {
	path := writeDoc(t, shopDoc)
	res, err := Diagnose(context.Background(), DiagnoseOptions{}, path)
	require.NoError(t, err)

	assert.Equal(t, SourceGraph, res.Source)
	assert.Equal(t, 1, res.OptedIn)
	assert.Len(t, res.Findings, 4)
	// sorted by position: Items (GE001, GE003), Buyer, Tags
	assert.Equal(t, []string{"GE001", "GE003", "GE002", "GE001"}, codes(res.Bag))
	for _, d := range res.Bag.Items() {
		assert.Equal(t, diag.SevWarning, d.Severity)
		assert.Empty(t, d.Fixes)
	}
}

func TestDiagnoseAppliesConfig(t *testing.T) {
	path := writeDoc(t, shopDoc)
	cfg := config.Default()
	cfg.Rules.Disable = []string{"GE003"}
	cfg.Rules.Severity = map[string]string{"GE002": "error"}

	res, err := Diagnose(context.Background(), DiagnoseOptions{Config: cfg}, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"GE001", "GE002", "GE001"}, codes(res.Bag))
	assert.Equal(t, diag.SevError, res.Bag.Items()[1].Severity)
	assert.True(t, res.Bag.HasErrors())
}

func TestDiagnoseSeverityPolicy(t *testing.T) {
	path := writeDoc(t, shopDoc)

	res, err := Diagnose(context.Background(), DiagnoseOptions{IgnoreWarnings: true}, path)
	require.NoError(t, err)
	assert.Zero(t, res.Bag.Len())

	res, err = Diagnose(context.Background(), DiagnoseOptions{WarningsAsErrors: true}, path)
	require.NoError(t, err)
	require.Equal(t, 4, res.Bag.Len())
	for _, d := range res.Bag.Items() {
		assert.Equal(t, diag.SevError, d.Severity)
	}
}

func TestDiagnoseMaxDiagnostics(t *testing.T) {
	path := writeDoc(t, shopDoc)
	res, err := Diagnose(context.Background(), DiagnoseOptions{MaxDiagnostics: 2}, path)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Bag.Len())
	assert.Len(t, res.Findings, 4)
}

func TestDiagnoseSpansAreConsistent(t *testing.T) {
	path := writeDoc(t, shopDoc)
	res, err := Diagnose(context.Background(), DiagnoseOptions{Suggest: true}, path)
	require.NoError(t, err)
	require.NoError(t, testkit.CheckDiagnosticInvariants(res.FileSet, res.Bag.Items()))
}

func TestDiagnoseReportsPhases(t *testing.T) {
	path := writeDoc(t, shopDoc)
	var events []PhaseEvent
	res, err := Diagnose(context.Background(), DiagnoseOptions{
		EnableTimings: true,
		PhaseObserver: func(ev PhaseEvent) { events = append(events, ev) },
	}, path)
	require.NoError(t, err)

	var names []string
	for _, ev := range events {
		if ev.Status == PhaseEnd {
			names = append(names, ev.Name)
		}
	}
	assert.Equal(t, []string{"load", "evaluate", "report"}, names)
	require.NotNil(t, res.Timer)
	assert.Len(t, res.Timer.Report().Phases, 3)
}

func TestDiagnoseCancelled(t *testing.T) {
	path := writeDoc(t, shopDoc)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Diagnose(ctx, DiagnoseOptions{}, path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDiagnoseRejectsMixedTargets(t *testing.T) {
	path := writeDoc(t, shopDoc)
	_, err := Diagnose(context.Background(), DiagnoseOptions{}, path, "./...")
	assert.ErrorIs(t, err, ErrMixedTargets)
}

func TestFixAllDryRun(t *testing.T) {
	path := writeDoc(t, shopDoc)
	res, out, err := Fix(context.Background(), DiagnoseOptions{}, fix.ApplyOptions{Mode: fix.ApplyModeAll, DryRun: true}, path)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Len(t, out.Applied, 2)
	assert.Equal(t, "Add [OrderedEquality]", out.Applied[0].Title)
	assert.Equal(t, "Add [SetEquality]", out.Applied[1].Title)

	require.Len(t, out.FileChanges, 1)
	assert.Contains(t, string(out.FileChanges[0].Content), "        type: HashSet<string>\n        markers: [SetEquality]\n")

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, shopDoc, string(onDisk))
}

func TestFixWritesFile(t *testing.T) {
	path := writeDoc(t, shopDoc)
	_, out, err := Fix(context.Background(), DiagnoseOptions{}, fix.ApplyOptions{Mode: fix.ApplyModeKey, TargetKey: "set_equality"}, path)
	require.NoError(t, err)
	require.Len(t, out.Applied, 1)

	res, err := Diagnose(context.Background(), DiagnoseOptions{}, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"GE001", "GE003", "GE002"}, codes(res.Bag))
}

func TestFixReportsNoFixes(t *testing.T) {
	path := writeDoc(t, "declarations:\n  - name: A\n    markers: [Equatable]\n")
	res, _, err := Fix(context.Background(), DiagnoseOptions{}, fix.ApplyOptions{Mode: fix.ApplyModeAll}, path)
	assert.ErrorIs(t, err, fix.ErrNoFixes)
	assert.NotNil(t, res)
}

func TestDiagnoseGoModuleWithExcludes(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"go.mod":       "module example.com/shop\n\ngo 1.22\n",
		"order.go":     "package shop\n\n//eq:equatable\ntype Order struct {\n\tItems []string\n}\n",
		"gen_order.go": "package shop\n\n//eq:equatable\ntype Generated struct {\n\tItems []string\n}\n",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
	cfg := config.Default()
	cfg.Path = filepath.Join(dir, config.FileName)
	cfg.Files.Exclude = []string{"gen_*.go"}

	res, err := Diagnose(context.Background(), DiagnoseOptions{Dir: dir, Config: cfg, Suggest: true}, ".")
	require.NoError(t, err)
	assert.Equal(t, SourceGo, res.Source)
	assert.Equal(t, 2, res.OptedIn)
	require.Equal(t, 1, res.Bag.Len())
	d := res.Bag.Items()[0]
	assert.Equal(t, "Collection field 'Items' in Equatable class 'Order' requires an equality attribute", d.Message)
	assert.Len(t, d.Fixes, 2)
}
