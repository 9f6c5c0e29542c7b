package driver

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"

	"eqlint/internal/classify"
	"eqlint/internal/config"
	"eqlint/internal/diag"
	"eqlint/internal/gosrc"
	"eqlint/internal/graphdoc"
	"eqlint/internal/logging"
	"eqlint/internal/observ"
	"eqlint/internal/rules"
	"eqlint/internal/source"
	"eqlint/internal/suggest"
	"eqlint/internal/symbols"
)

// ErrMixedTargets is returned when a graph document is passed together with
// other targets.
var ErrMixedTargets = errors.New("a graph document must be the only target")

// Source identifies the provider a symbol graph came from.
type Source uint8

const (
	SourceGo Source = iota
	SourceGraph
)

func (s Source) String() string {
	if s == SourceGraph {
		return "graph"
	}
	return "go"
}

// DiagnoseOptions configures a run. Zero values fall back to the config.
type DiagnoseOptions struct {
	// Dir is the working directory for Go package patterns.
	Dir              string
	Config           *config.Config
	Jobs             int
	MaxDiagnostics   int
	Suggest          bool // attach marker fixes to collection diagnostics
	IgnoreWarnings   bool
	WarningsAsErrors bool
	EnableTimings    bool
	BuildFlags       []string
	Logger           hclog.Logger
	PhaseObserver    PhaseObserver
}

// DiagnoseResult is the outcome of one run.
type DiagnoseResult struct {
	Source   Source
	Targets  []string
	FileSet  *source.FileSet
	Graph    *symbols.Graph
	Bag      *diag.Bag
	Findings []rules.Finding
	// OptedIn counts evaluated declarations.
	OptedIn int
	Timer   *observ.Timer
	// Fixer builds marker edits for this run's sources; nil when the source
	// has no positions.
	Fixer suggest.EditBuilder
}

type loaded struct {
	source Source
	fs     *source.FileSet
	graph  *symbols.Graph
	diags  []*diag.Diagnostic
	fixer  suggest.EditBuilder
}

// Diagnose loads targets, evaluates every opted-in declaration and collects
// the diagnostics. Targets are Go package patterns or a single graph document.
func Diagnose(ctx context.Context, opts DiagnoseOptions, targets ...string) (*DiagnoseResult, error) {
	if len(targets) == 0 {
		targets = []string{"."}
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	var timer *observ.Timer
	if opts.EnableTimings {
		timer = observ.NewTimer()
	}
	ph := phases{timer: timer, observer: opts.PhaseObserver}

	disabled, err := cfg.DisabledCodes()
	if err != nil {
		return nil, err
	}
	overrides, err := cfg.SeverityOverrides()
	if err != nil {
		return nil, err
	}
	filter, err := NewFileFilter(cfg.Dir(), cfg.Files.Include, cfg.Files.Exclude)
	if err != nil {
		return nil, err
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = cfg.Run.Jobs
	}
	maxDiags := opts.MaxDiagnostics
	if maxDiags <= 0 {
		maxDiags = cfg.Run.MaxDiagnostics
	}

	p := ph.begin("load")
	ld, err := load(ctx, opts, cfg, targets)
	if err != nil {
		ph.end(p, "failed")
		return nil, err
	}
	ph.end(p, fmt.Sprintf("%d decls", ld.graph.NumDecls()))
	log.Debug("loaded symbol graph", "source", ld.source, "decls", ld.graph.NumDecls(),
		"types", ld.graph.NumTypes(), "props", ld.graph.NumProps())

	eng := rules.New(rules.Options{Classifier: classify.New(cfg.Classify), Disabled: disabled})
	p = ph.begin("evaluate")
	results, err := eng.EvaluateGraph(ctx, ld.graph, jobs)
	if err != nil {
		ph.end(p, "cancelled")
		return nil, err
	}
	ph.end(p, fmt.Sprintf("%d opted in", len(results)))
	log.Debug("evaluated declarations", "opted_in", len(results), "jobs", jobs)

	p = ph.begin("report")
	bag := diag.NewBag(maxDiags)
	rep := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	for _, d := range ld.diags {
		rep.Report(d)
	}
	var findings []rules.Finding
	for _, f := range rules.Flatten(results) {
		if ld.source == SourceGo && !filter.Match(pathOf(ld.fs, f.Span)) {
			continue
		}
		findings = append(findings, f)
		var d *diag.Diagnostic
		if opts.Suggest {
			d = suggest.Diagnostic(ld.graph, f, ld.fixer)
		} else {
			d = f.Diagnostic()
		}
		if sev, ok := overrides[d.Code]; ok {
			d.Severity = sev
		}
		rep.Report(d)
	}
	applySeverityPolicy(bag, opts)
	bag.Sort()
	ph.end(p, fmt.Sprintf("%d diagnostics", bag.Len()))
	if len(findings) > bag.Len() {
		log.Info("diagnostic limit reached", "limit", maxDiags, "findings", len(findings))
	}

	return &DiagnoseResult{
		Source:   ld.source,
		Targets:  targets,
		FileSet:  ld.fs,
		Graph:    ld.graph,
		Bag:      bag,
		Findings: findings,
		OptedIn:  len(results),
		Timer:    timer,
		Fixer:    ld.fixer,
	}, nil
}

// LoadGraph runs only the provider step of Diagnose.
func LoadGraph(ctx context.Context, opts DiagnoseOptions, targets ...string) (*symbols.Graph, *source.FileSet, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if len(targets) == 0 {
		targets = []string{"."}
	}
	ld, err := load(ctx, opts, cfg, targets)
	if err != nil {
		return nil, nil, err
	}
	return ld.graph, ld.fs, nil
}

func load(ctx context.Context, opts DiagnoseOptions, cfg *config.Config, targets []string) (*loaded, error) {
	for _, t := range targets {
		if !graphdoc.IsDocumentPath(t) {
			continue
		}
		if info, err := os.Stat(t); err != nil || info.IsDir() {
			continue
		}
		if len(targets) > 1 {
			return nil, fmt.Errorf("%w: %s", ErrMixedTargets, t)
		}
		res, err := graphdoc.Load(t, graphdoc.Options{Tables: cfg.Tables()})
		if err != nil {
			return nil, err
		}
		return &loaded{
			source: SourceGraph,
			fs:     res.FileSet,
			graph:  res.Graph,
			diags:  res.Diagnostics,
			fixer:  res.Fixer(),
		}, nil
	}

	res, err := gosrc.Load(ctx, gosrc.LoadConfig{Dir: opts.Dir, BuildFlags: opts.BuildFlags}, targets...)
	if err != nil {
		return nil, err
	}
	return &loaded{
		source: SourceGo,
		fs:     res.FileSet,
		graph:  res.Graph,
		diags:  res.Diagnostics,
		fixer:  res.Fixer(),
	}, nil
}

func applySeverityPolicy(bag *diag.Bag, opts DiagnoseOptions) {
	if opts.WarningsAsErrors {
		bag.Transform(func(d *diag.Diagnostic) {
			if d.Severity == diag.SevWarning {
				d.Severity = diag.SevError
			}
		})
	}
	if opts.IgnoreWarnings {
		bag.Filter(func(d *diag.Diagnostic) bool { return d.Severity >= diag.SevError })
	}
}

func pathOf(fs *source.FileSet, sp source.Span) string {
	if f := fs.Get(sp.File); f != nil {
		return f.Path
	}
	return ""
}
