package driver

import (
	"time"

	"eqlint/internal/observ"
)

// phases forwards phase boundaries to the optional timer and observer.
type phases struct {
	timer    *observ.Timer
	observer PhaseObserver
}

type phase struct {
	name  string
	idx   int
	start time.Time
}

func (p phases) begin(name string) phase {
	ph := phase{name: name, idx: -1, start: time.Now()}
	if p.timer != nil {
		ph.idx = p.timer.Begin(name)
	}
	if p.observer != nil {
		p.observer(PhaseEvent{Name: name, Status: PhaseStart})
	}
	return ph
}

func (p phases) end(ph phase, note string) {
	if p.timer != nil && ph.idx >= 0 {
		p.timer.End(ph.idx, note)
	}
	if p.observer != nil {
		p.observer(PhaseEvent{Name: ph.name, Status: PhaseEnd, Elapsed: time.Since(ph.start), Note: note})
	}
}
