// Package watch reruns a lint pass when watched sources change.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
	"github.com/hashicorp/go-hclog"

	"eqlint/internal/logging"
)

// DefaultDebounce is the quiet period before a batch of changes triggers a pass.
const DefaultDebounce = 200 * time.Millisecond

var (
	defaultExcludeDirs = []string{".*", "vendor", "node_modules"}
	defaultExtensions  = []string{".go", ".yaml", ".yml", ".json", ".msgpack", ".mpk", ".mp"}
	defaultNames       = []string{"go.mod", "eqlint.toml"}
)

// Runner performs one lint pass. changed is nil for the initial pass. The
// context is cancelled when a newer change supersedes the pass.
type Runner func(ctx context.Context, changed []string) error

// Options configures a Watcher. Glob patterns match base names.
type Options struct {
	Debounce     time.Duration
	ExcludeDirs  []string
	ExcludeFiles []string
	// Extensions and Names select the files that trigger a pass. Empty
	// slices use the Go and graph document defaults.
	Extensions []string
	Names      []string
	Logger     hclog.Logger
}

// Watcher batches file events and runs one pass at a time.
type Watcher struct {
	fsw          *fsnotify.Watcher
	debounce     time.Duration
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
	extFilters   map[string]bool
	nameFilters  map[string]bool
	log          hclog.Logger
}

func compileAll(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func lowerSet(values []string) map[string]bool {
	out := make(map[string]bool, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out[v] = true
		}
	}
	return out
}

// New creates a Watcher. Close releases its OS resources.
func New(opts Options) (*Watcher, error) {
	dirs, err := compileAll(append(slices.Clone(defaultExcludeDirs), opts.ExcludeDirs...))
	if err != nil {
		return nil, err
	}
	files, err := compileAll(opts.ExcludeFiles)
	if err != nil {
		return nil, err
	}
	exts, names := opts.Extensions, opts.Names
	if len(exts) == 0 && len(names) == 0 {
		exts, names = defaultExtensions, defaultNames
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fsw:          fsw,
		debounce:     debounce,
		excludeDirs:  dirs,
		excludeFiles: files,
		extFilters:   lowerSet(exts),
		nameFilters:  lowerSet(names),
		log:          log,
	}, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run watches roots recursively, performs an initial pass, then one pass per
// debounced batch of changes until ctx is done. A new batch cancels the pass
// in flight and waits for it before starting the next one.
func (w *Watcher) Run(ctx context.Context, roots []string, run Runner) error {
	for _, root := range roots {
		if err := w.watchRecursive(root); err != nil {
			return err
		}
	}

	var (
		cancelPass context.CancelFunc
		passDone   chan struct{}
	)
	stop := func() {
		if cancelPass != nil {
			cancelPass()
			<-passDone
			cancelPass = nil
		}
	}
	start := func(changed []string) {
		stop()
		pctx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		cancelPass, passDone = cancel, done
		go func() {
			defer close(done)
			if err := run(pctx, changed); err != nil && !errors.Is(err, context.Canceled) {
				w.log.Error("lint pass failed", "error", err)
			}
		}()
	}
	defer stop()

	start(nil)
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	pending := make(map[string]bool)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.handle(ev, pending) {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", "error", err)
		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			if len(changed) == 0 {
				continue
			}
			slices.Sort(changed)
			clear(pending)
			w.log.Info("change detected", "files", len(changed), "first", changed[0])
			start(changed)
		}
	}
}

// handle records ev in pending and reports whether it schedules a pass.
func (w *Watcher) handle(ev fsnotify.Event, pending map[string]bool) bool {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if w.shouldExcludeDir(ev.Name) {
				return false
			}
			if err := w.watchRecursive(ev.Name); err != nil {
				w.log.Warn("failed to watch new directory", "path", ev.Name, "error", err)
				return false
			}
			return w.enqueueExisting(ev.Name, pending)
		}
	}
	if w.shouldExcludeFile(ev.Name) {
		return false
	}
	if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		w.log.Debug("file event", "path", ev.Name, "op", ev.Op.String())
		pending[ev.Name] = true
		return true
	}
	return false
}

func (w *Watcher) watchRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.shouldExcludeDir(path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) enqueueExisting(root string, pending map[string]bool) bool {
	added := false
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || w.shouldExcludeFile(path) {
			return nil
		}
		pending[path] = true
		added = true
		return nil
	})
	return added
}

func (w *Watcher) shouldExcludeDir(path string) bool {
	base := filepath.Base(path)
	for _, g := range w.excludeDirs {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func (w *Watcher) shouldExcludeFile(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	if strings.HasSuffix(base, "_test.go") {
		return true
	}
	if !w.nameFilters[base] && !w.extFilters[filepath.Ext(base)] {
		return true
	}
	for _, g := range w.excludeFiles {
		if g.Match(base) {
			return true
		}
	}
	return false
}
