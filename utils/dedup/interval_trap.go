// Package dedup provides rate-limiting primitives for work which is cheap to
// request but should only run every so often, such as the poller's periodic
// summary log.
package dedup

import (
	"sync"
	"time"

	"github.com/andres-erbsen/clock"
)

// IntervalTask defines a task which should run at most once per interval.
type IntervalTask interface {
	Run()
}

// IntervalTrap rate-limits a task to a fixed interval. Callers trap into it
// on every pass; the task only runs when the interval has elapsed.
type IntervalTrap struct {
	sync.RWMutex
	clk      clock.Clock
	interval time.Duration
	prev     time.Time
	task     IntervalTask
}

// NewIntervalTrap creates a new IntervalTrap.
func NewIntervalTrap(
	interval time.Duration, clk clock.Clock, task IntervalTask) *IntervalTrap {

	return &IntervalTrap{
		clk:      clk,
		interval: interval,
		prev:     clk.Now(),
		task:     task,
	}
}

func (t *IntervalTrap) ready() bool {
	return t.clk.Now().After(t.prev.Add(t.interval))
}

// Trap runs the task if the interval has passed since the last run, else
// returns immediately. Safe for concurrent use; at most one caller runs the
// task per interval.
func (t *IntervalTrap) Trap() {
	t.RLock()
	ready := t.ready()
	t.RUnlock()
	if !ready {
		return
	}

	t.Lock()
	defer t.Unlock()
	if !t.ready() {
		return
	}
	t.task.Run()
	t.prev = t.clk.Now()
}
