package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// window holds the admission timestamps for one caller, oldest first.
type window struct {
	timestamps []time.Time
	lastSeen   time.Time
}

// Limiter is a thread-safe sliding-window rate limiter keyed by caller ID.
//
// Every Admit call prunes the caller's expired timestamps, compares the
// remaining count against the limit, and records the admission, all under one
// lock acquisition so concurrent calls from the same caller cannot race past
// the quota. The lock is never held across I/O.
//
// The background sweep (StartSweeper) removes callers whose windows emptied
// since their last request. It is owned by the Limiter instance: the
// composition root starts it once with a cancellable context and it stops at
// teardown, so no free-floating timer outlives the limiter.
type Limiter struct {
	mu      sync.Mutex
	callers map[string]*window

	limit      int
	windowSize time.Duration
	maxCallers int
	clock      Clock
	metrics    Metrics
}

// New creates a Limiter from cfg, applying defaults for zero fields.
func New(cfg Config) *Limiter {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.MaxCallers <= 0 {
		cfg.MaxCallers = DefaultMaxCallers
	}
	if cfg.Clock == nil {
		cfg.Clock = &SystemClock{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NoopMetrics{}
	}

	return &Limiter{
		callers:    make(map[string]*window),
		limit:      cfg.Limit,
		windowSize: cfg.Window,
		maxCallers: cfg.MaxCallers,
		clock:      cfg.Clock,
		metrics:    cfg.Metrics,
	}
}

// Admit decides whether callerID may perform one more operation.
//
// An allowed decision counts toward the window immediately; a refused one
// records nothing, so probing while throttled does not extend the throttle.
// Refusals carry a retry hint fixed at the window size.
func (l *Limiter) Admit(callerID string) Decision {
	start := time.Now()

	l.mu.Lock()
	decision := l.admitLocked(callerID)
	l.mu.Unlock()

	l.metrics.RecordCheckDuration(time.Since(start))
	if decision.Allowed {
		l.metrics.RecordAllowed()
	} else {
		l.metrics.RecordDenied()
	}
	return decision
}

func (l *Limiter) admitLocked(callerID string) Decision {
	now := l.clock.Now()

	w := l.callers[callerID]
	if w == nil {
		if len(l.callers) >= l.maxCallers {
			l.evictIdlestLocked()
		}
		w = &window{timestamps: make([]time.Time, 0, l.limit)}
		l.callers[callerID] = w
	}

	// Clock skew protection: if the system clock stepped backwards, pin
	// "now" to the last timestamp we handed out for this caller so the
	// window cannot be reopened by time manipulation.
	if n := len(w.timestamps); n > 0 && now.Before(w.timestamps[n-1]) {
		slog.Warn("rate limiter detected backwards clock step",
			slog.String("caller_id", callerID),
			slog.Time("now", now),
			slog.Time("last_admission", w.timestamps[n-1]))
		now = w.timestamps[n-1]
	}
	w.lastSeen = now

	// Lazy prune: drop everything at or before the window start. The
	// timestamps slice is append-only, so it stays sorted and the prune is
	// a single reslice.
	cutoff := now.Add(-l.windowSize)
	idx := 0
	for idx < len(w.timestamps) && !w.timestamps[idx].After(cutoff) {
		idx++
	}
	if idx > 0 {
		w.timestamps = append(w.timestamps[:0], w.timestamps[idx:]...)
	}

	d := Decision{
		CallerID: callerID,
		Limit:    l.limit,
	}

	if len(w.timestamps) >= l.limit {
		d.Allowed = false
		d.Remaining = 0
		d.RetryAfter = l.windowSize
		d.ResetAt = w.timestamps[0].Add(l.windowSize)
		return d
	}

	w.timestamps = append(w.timestamps, now)
	d.Allowed = true
	d.Remaining = l.limit - len(w.timestamps)
	d.ResetAt = w.timestamps[0].Add(l.windowSize)
	return d
}

// evictIdlestLocked removes the caller idle the longest. Called with the
// lock held, only when the map is at capacity, so the linear scan is rare.
func (l *Limiter) evictIdlestLocked() {
	var (
		oldestKey  string
		oldestSeen time.Time
		first      = true
	)
	for key, w := range l.callers {
		if first || w.lastSeen.Before(oldestSeen) {
			oldestKey = key
			oldestSeen = w.lastSeen
			first = false
		}
	}
	if !first {
		delete(l.callers, oldestKey)
	}
}

// CallerCount returns the number of callers currently tracked.
func (l *Limiter) CallerCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.callers)
}

// StartSweeper launches the background sweep goroutine. It runs every
// interval until ctx is cancelled, removing callers whose windows are empty.
// The sweep never touches in-flight admissions: it takes the same lock Admit
// takes and holds it only for the map walk.
func (l *Limiter) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = l.windowSize
	}

	go func() {
		slog.Info("rate limiter sweeper started",
			slog.Duration("interval", interval),
			slog.Duration("window", l.windowSize))

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.Info("rate limiter sweeper stopped")
				return
			case <-ticker.C:
				removed, remaining := l.sweep()
				if removed > 0 {
					slog.Debug("rate limiter sweep completed",
						slog.Int("removed", removed),
						slog.Int("remaining", remaining))
				}
				l.metrics.SetActiveCallers(remaining)
			}
		}
	}()
}

// sweep removes callers with no admissions inside the current window and
// returns the number removed and the number remaining.
func (l *Limiter) sweep() (removed, remaining int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.clock.Now().Add(-l.windowSize)
	for key, w := range l.callers {
		live := false
		for _, ts := range w.timestamps {
			if ts.After(cutoff) {
				live = true
				break
			}
		}
		if !live {
			delete(l.callers, key)
			removed++
		}
	}
	return removed, len(l.callers)
}
