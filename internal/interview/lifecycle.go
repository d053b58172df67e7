package interview

import (
	"context"
	"sync"
	"time"
)

// DefaultCountdown is the interview time budget.
const DefaultCountdown = 15 * time.Minute

// Lifecycle owns the elapsed up-counter and the remaining down-counter of one
// active interview. Both advance in whole seconds through Tick.
type Lifecycle struct {
	mu        sync.Mutex
	elapsed   int64
	remaining int64
	running   bool
	expired   bool
	stop      chan struct{}
	stopOnce  sync.Once

	onTick   func(elapsed, remaining int64)
	onExpire func()
}

// NewLifecycle returns a stopped lifecycle with countdownSeconds on the clock.
// onTick and onExpire are invoked without any lock held; either may be nil.
func NewLifecycle(countdownSeconds int64, onTick func(elapsed, remaining int64), onExpire func()) *Lifecycle {
	if countdownSeconds <= 0 {
		countdownSeconds = int64(DefaultCountdown / time.Second)
	}
	return &Lifecycle{
		remaining: countdownSeconds,
		stop:      make(chan struct{}),
		onTick:    onTick,
		onExpire:  onExpire,
	}
}

// Begin arms the counters. It does not start a ticker; see Run.
func (l *Lifecycle) Begin() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.expired {
		return
	}
	select {
	case <-l.stop:
		return
	default:
	}
	l.running = true
}

// Tick advances both counters by one second. When the countdown reaches zero
// the expiry callback fires exactly once and later ticks are ignored.
func (l *Lifecycle) Tick() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.elapsed++
	if l.remaining > 0 {
		l.remaining--
	}
	elapsed, remaining := l.elapsed, l.remaining
	fire := false
	if remaining == 0 {
		l.running = false
		l.expired = true
		fire = true
	}
	l.mu.Unlock()

	if l.onTick != nil {
		l.onTick(elapsed, remaining)
	}
	if fire && l.onExpire != nil {
		l.onExpire()
	}
}

// Stop halts both counters. Safe to call repeatedly and from callbacks.
func (l *Lifecycle) Stop() {
	l.mu.Lock()
	l.running = false
	l.mu.Unlock()
	l.stopOnce.Do(func() { close(l.stop) })
}

// Run drives Tick once per interval until ctx is done or Stop is called.
func (l *Lifecycle) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.stop:
			return
		case <-t.C:
			l.Tick()
		}
	}
}

func (l *Lifecycle) Elapsed() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.elapsed
}

func (l *Lifecycle) Remaining() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.remaining
}

func (l *Lifecycle) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}
