package downloader

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestWatchdogFiresOnce(t *testing.T) {
	w := newWatchdog(20 * time.Millisecond)
	var fired atomic.Int32
	w.Begin(1, func() { fired.Add(1) })
	w.Arm(1)

	time.Sleep(100 * time.Millisecond)
	w.Rearm(1) // no-op after firing
	time.Sleep(60 * time.Millisecond)

	if got := fired.Load(); got != 1 {
		t.Errorf("expected watchdog to fire once, got %d", got)
	}
}

func TestWatchdogRearmPostponesExpiry(t *testing.T) {
	w := newWatchdog(80 * time.Millisecond)
	var fired atomic.Int32
	w.Begin(1, func() { fired.Add(1) })
	w.Arm(1)
	for i := 0; i < 5; i++ {
		time.Sleep(30 * time.Millisecond)
		w.Rearm(1)
	}
	if got := fired.Load(); got != 0 {
		t.Fatalf("expected no expiry while rearming, got %d", got)
	}
	time.Sleep(200 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Errorf("expected expiry after silence, got %d", got)
	}
}

func TestWatchdogNotArmedUntilConnect(t *testing.T) {
	w := newWatchdog(10 * time.Millisecond)
	var fired atomic.Int32
	w.Begin(1, func() { fired.Add(1) })
	time.Sleep(50 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Errorf("expected no expiry before Arm, got %d", got)
	}
	w.Stop()
}

func TestWatchdogStaleGenerationIsNoop(t *testing.T) {
	w := newWatchdog(20 * time.Millisecond)
	var first, second atomic.Int32
	w.Begin(1, func() { first.Add(1) })
	w.Arm(1)
	w.Begin(2, func() { second.Add(1) })
	w.Arm(1) // late connect from the previous attempt

	time.Sleep(80 * time.Millisecond)
	if got := first.Load(); got != 0 {
		t.Errorf("stale attempt expired %d times", got)
	}
	if got := second.Load(); got != 0 {
		t.Errorf("current attempt expired without being armed: %d", got)
	}
}

func TestWatchdogStop(t *testing.T) {
	w := newWatchdog(20 * time.Millisecond)
	var fired atomic.Int32
	w.Begin(1, func() { fired.Add(1) })
	w.Arm(1)
	w.Stop()
	w.Rearm(1)
	time.Sleep(80 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Errorf("expected stopped watchdog not to fire, got %d", got)
	}
}

func TestWatchdogSupersededTimerIsNoop(t *testing.T) {
	w := newWatchdog(30 * time.Millisecond)
	var fired atomic.Int32
	w.Begin(1, func() { fired.Add(1) })
	w.Arm(1)
	seq := w.seq
	w.Rearm(1)
	// a timer from before the rearm that already started running
	w.expire(1, seq)
	if got := fired.Load(); got != 0 {
		t.Errorf("superseded timer fired")
	}
	w.Stop()
}
