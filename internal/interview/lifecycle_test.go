package interview

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestLifecycle_DefaultCountdown(t *testing.T) {
	l := NewLifecycle(0, nil, nil)
	if got := l.Remaining(); got != 900 {
		t.Fatalf("remaining = %d, want 900", got)
	}
}

func TestLifecycle_TickBeforeBeginIsIgnored(t *testing.T) {
	l := NewLifecycle(10, nil, nil)
	l.Tick()
	if l.Elapsed() != 0 || l.Remaining() != 10 {
		t.Fatalf("counters moved before Begin")
	}
}

func TestLifecycle_ExpiresExactlyOnce(t *testing.T) {
	var ticks, expiries int32
	var lastElapsed, lastRemaining int64
	l := NewLifecycle(3,
		func(e, r int64) {
			atomic.AddInt32(&ticks, 1)
			lastElapsed, lastRemaining = e, r
		},
		func() { atomic.AddInt32(&expiries, 1) },
	)
	l.Begin()

	for i := 0; i < 10; i++ {
		l.Tick()
	}

	if ticks != 3 || expiries != 1 {
		t.Fatalf("ticks=%d expiries=%d, want 3 and 1", ticks, expiries)
	}
	if lastElapsed != 3 || lastRemaining != 0 {
		t.Fatalf("last tick = %d/%d, want 3/0", lastElapsed, lastRemaining)
	}
	if l.Running() {
		t.Fatalf("still running after expiry")
	}

	// Begin after expiry does not re-arm.
	l.Begin()
	l.Tick()
	if l.Elapsed() != 3 {
		t.Fatalf("elapsed = %d after re-Begin", l.Elapsed())
	}
}

func TestLifecycle_StopFreezesCounters(t *testing.T) {
	l := NewLifecycle(10, nil, nil)
	l.Begin()
	l.Tick()
	l.Tick()
	l.Stop()
	l.Stop()
	l.Tick()

	if l.Elapsed() != 2 || l.Remaining() != 8 {
		t.Fatalf("counters = %d/%d, want 2/8", l.Elapsed(), l.Remaining())
	}
}

func TestLifecycle_ExpiryCallbackMayStop(t *testing.T) {
	var l *Lifecycle
	l = NewLifecycle(1, nil, func() { l.Stop() })
	l.Begin()

	done := make(chan struct{})
	go func() {
		l.Tick()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Tick deadlocked when onExpire called Stop")
	}
}

func TestLifecycle_RunStopsOnStop(t *testing.T) {
	var ticks int32
	l := NewLifecycle(1000, func(int64, int64) { atomic.AddInt32(&ticks, 1) }, nil)
	l.Begin()

	done := make(chan struct{})
	go func() {
		l.Run(context.Background(), time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&ticks) < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	l.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
	if atomic.LoadInt32(&ticks) < 3 {
		t.Fatalf("ticks = %d, want at least 3", ticks)
	}
}
