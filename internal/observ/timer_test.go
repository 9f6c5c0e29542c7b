package observ

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances by step on every read.
func fakeClock(step time.Duration) func() time.Time {
	cur := time.Unix(0, 0)
	return func() time.Time {
		cur = cur.Add(step)
		return cur
	}
}

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(2 * time.Millisecond)

	load := tm.Begin("load")
	tm.End(load, "3 decls")
	eval := tm.Begin("evaluate")
	tm.End(eval, "")
	tm.End(42, "ignored")

	r := tm.Report()
	require.Len(t, r.Phases, 2)
	assert.Equal(t, PhaseReport{Name: "load", DurationMS: 2, Note: "3 decls"}, r.Phases[0])
	assert.InDelta(t, 4.0, r.TotalMS, 1e-9)

	raw, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_ms":4,"phases":[{"name":"load","duration_ms":2,"note":"3 decls"},{"name":"evaluate","duration_ms":2}]}`, string(raw))
}

func TestTimerSummary(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(time.Millisecond)
	tm.End(tm.Begin("load"), "graph")

	out := tm.Summary()
	assert.Contains(t, out, "timings:\n")
	assert.Contains(t, out, "load")
	assert.Contains(t, out, "(graph)")
	assert.Contains(t, out, "total")
}

func TestEmptyTimer(t *testing.T) {
	assert.Equal(t, Report{}, NewTimer().Report())
}
