package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldExclude(t *testing.T) {
	w, err := New(Options{ExcludeDirs: []string{"gen"}, ExcludeFiles: []string{"*_mock.go"}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	assert.True(t, w.shouldExcludeDir("/repo/.git"))
	assert.True(t, w.shouldExcludeDir("/repo/vendor"))
	assert.True(t, w.shouldExcludeDir("/repo/gen"))
	assert.False(t, w.shouldExcludeDir("/repo/internal"))

	assert.False(t, w.shouldExcludeFile("/repo/order.go"))
	assert.False(t, w.shouldExcludeFile("/repo/graph.YAML"))
	assert.False(t, w.shouldExcludeFile("/repo/eqlint.toml"))
	assert.False(t, w.shouldExcludeFile("/repo/go.mod"))
	assert.True(t, w.shouldExcludeFile("/repo/order_test.go"))
	assert.True(t, w.shouldExcludeFile("/repo/store_mock.go"))
	assert.True(t, w.shouldExcludeFile("/repo/README.md"))
}

func TestCustomFilters(t *testing.T) {
	w, err := New(Options{Extensions: []string{".yaml"}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	assert.False(t, w.shouldExcludeFile("shop.yaml"))
	assert.True(t, w.shouldExcludeFile("order.go"))
}

func TestNewRejectsBadGlob(t *testing.T) {
	_, err := New(Options{ExcludeFiles: []string{"[oops"}})
	assert.Error(t, err)
}

type recorder struct {
	mu    sync.Mutex
	calls [][]string
	ch    chan struct{}
}

func (r *recorder) run(ctx context.Context, changed []string) error {
	r.mu.Lock()
	r.calls = append(r.calls, changed)
	r.mu.Unlock()
	r.ch <- struct{}{}
	return nil
}

func waitCall(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("runner was not called")
	}
}

func TestRunRerunsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "order.go")
	require.NoError(t, os.WriteFile(path, []byte("package shop\n"), 0o600))

	w, err := New(Options{Debounce: 20 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	rec := &recorder{ch: make(chan struct{}, 8)}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, []string{dir}, rec.run) }()

	waitCall(t, rec.ch)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(path, []byte("package shop\n\ntype Order struct{}\n"), 0o600))
	waitCall(t, rec.ch)

	cancel()
	require.NoError(t, <-done)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.GreaterOrEqual(t, len(rec.calls), 2)
	assert.Nil(t, rec.calls[0])
	assert.Equal(t, []string{path}, rec.calls[1])
}

func TestRunCancelsPassInFlight(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Options{Debounce: 10 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	started := make(chan struct{}, 4)
	cancelled := make(chan struct{}, 4)
	run := func(ctx context.Context, changed []string) error {
		started <- struct{}{}
		if changed != nil {
			return nil
		}
		<-ctx.Done()
		cancelled <- struct{}{}
		return ctx.Err()
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, []string{dir}, run) }()

	waitCall(t, started)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shop.yaml"), []byte("declarations: []\n"), 0o600))
	waitCall(t, cancelled)
	waitCall(t, started)

	cancel()
	require.NoError(t, <-done)
}
