package downloader

import (
	"sync"
	"time"
)

// watchdog fires once per attempt generation when no data arrives within
// the timeout. Timers belonging to an older generation, or superseded by a
// later Rearm, expire as no-ops.
type watchdog struct {
	timeout time.Duration

	mu       sync.Mutex
	gen      uint64
	seq      uint64
	fired    bool
	timer    *time.Timer
	onExpire func()
}

func newWatchdog(timeout time.Duration) *watchdog {
	return &watchdog{timeout: timeout}
}

// Begin binds the watchdog to a new attempt without starting the timer.
func (w *watchdog) Begin(gen uint64, onExpire func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopLocked()
	w.gen = gen
	w.fired = false
	w.onExpire = onExpire
}

func (w *watchdog) Arm(gen uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.gen || w.fired || w.onExpire == nil {
		return
	}
	w.stopLocked()
	seq := w.seq
	w.timer = time.AfterFunc(w.timeout, func() { w.expire(gen, seq) })
}

func (w *watchdog) Rearm(gen uint64) {
	w.Arm(gen)
}

func (w *watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopLocked()
	w.onExpire = nil
}

func (w *watchdog) stopLocked() {
	w.seq++
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

func (w *watchdog) expire(gen, seq uint64) {
	w.mu.Lock()
	if gen != w.gen || seq != w.seq || w.fired || w.onExpire == nil {
		w.mu.Unlock()
		return
	}
	w.fired = true
	fn := w.onExpire
	w.mu.Unlock()
	fn()
}
