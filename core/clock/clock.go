// Package clock provides the session timer: a coarse periodic sampler for
// live display plus exact elapsed time on demand. Recorded durations must
// come from Exact, never from samples, so sampler jitter stays out of solve
// records.
package clock

import (
	"sync"
	"time"
)

const defaultInterval = 90 * time.Millisecond

// Config configures Clock.
type Config struct {
	// Interval is the sampler period. Zero selects the default (~90ms).
	Interval time.Duration
	// OnSample receives display updates from the sampler goroutine.
	OnSample func(elapsed time.Duration)
}

// Clock measures one timed attempt. The sampler goroutine is its only
// background activity and is cancelled exactly once per Stop or restart.
type Clock struct {
	mu       sync.Mutex
	interval time.Duration
	onSample func(time.Duration)

	start   time.Time
	running bool
	cancel  chan struct{}
	last    time.Duration
}

func New(cfg Config) *Clock {
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Clock{
		interval: interval,
		onSample: cfg.OnSample,
	}
}

// Start captures the start instant and schedules the sampler. A running
// clock is stopped first, so the sampler is never double-scheduled.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.start = time.Now()
	c.running = true
	c.last = 0
	ch := make(chan struct{})
	c.cancel = ch
	go c.sample(ch, c.start)
}

// Stop cancels the sampler and freezes the last computed elapsed value.
// Stopping an idle clock is a no-op.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Clock) stopLocked() {
	if c.cancel != nil {
		close(c.cancel)
		c.cancel = nil
	}
	if c.running {
		c.last = time.Since(c.start)
		c.running = false
	}
}

// Reset stops the sampler and clears the start instant.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.start = time.Time{}
	c.last = 0
}

// Exact returns now minus the start instant, recomputed at the moment of
// use. It keeps working after Stop; it returns zero before the first Start.
func (c *Clock) Exact() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.start.IsZero() {
		return 0
	}
	return time.Since(c.start)
}

// Running reports whether the sampler is scheduled.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// StartedAt returns the start instant of the current or last attempt.
func (c *Clock) StartedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.start
}

// Last returns the most recent sample, or the frozen value after Stop.
func (c *Clock) Last() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

func (c *Clock) sample(cancel <-chan struct{}, start time.Time) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-cancel:
			return
		case <-ticker.C:
			elapsed := time.Since(start)
			c.mu.Lock()
			stale := c.cancel == nil || c.start != start
			if !stale {
				c.last = elapsed
			}
			fn := c.onSample
			c.mu.Unlock()
			if stale {
				return
			}
			if fn != nil {
				fn(elapsed)
			}
		}
	}
}
