package rules

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"eqlint/internal/symbols"
)

// DeclResult holds the findings of one opted-in declaration.
type DeclResult struct {
	Decl     symbols.DeclID
	Findings []Finding
}

// OptedIn lists the opted-in declarations of g in graph order.
func (e *Engine) OptedIn(g *symbols.Graph) []symbols.DeclID {
	var out []symbols.DeclID
	for _, id := range g.Decls() {
		if e.detector.IsOptedIn(g, id) {
			out = append(out, id)
		}
	}
	return out
}

// EvaluateGraph evaluates every opted-in declaration with at most jobs
// workers. Results are in graph order. When ctx is cancelled the partial
// results are discarded and ctx's error is returned.
func (e *Engine) EvaluateGraph(ctx context.Context, g *symbols.Graph, jobs int) ([]DeclResult, error) {
	decls := e.OptedIn(g)
	if len(decls) == 0 {
		return nil, ctx.Err()
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// each worker owns its slot
	results := make([]DeclResult, len(decls))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(min(jobs, len(decls)))
	for i, id := range decls {
		eg.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = DeclResult{Decl: id, Findings: e.Evaluate(g, id)}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Flatten concatenates per-declaration findings in order.
func Flatten(results []DeclResult) []Finding {
	n := 0
	for _, r := range results {
		n += len(r.Findings)
	}
	out := make([]Finding, 0, n)
	for _, r := range results {
		out = append(out, r.Findings...)
	}
	return out
}
