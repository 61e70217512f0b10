package clock

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestExactTracksWallClock(t *testing.T) {
	c := New(Config{Interval: time.Hour})
	if got := c.Exact(); got != 0 {
		t.Fatalf("exact before start should be 0, got %v", got)
	}
	c.Start()
	time.Sleep(30 * time.Millisecond)
	got := c.Exact()
	if got < 20*time.Millisecond {
		t.Fatalf("exact should track wall clock, got %v", got)
	}
	c.Stop()
	if after := c.Exact(); after < got {
		t.Fatalf("exact must stay usable after stop: %v < %v", after, got)
	}
}

func TestSamplerPublishesAndStops(t *testing.T) {
	var count atomic.Int64
	c := New(Config{
		Interval: 5 * time.Millisecond,
		OnSample: func(elapsed time.Duration) {
			if elapsed <= 0 {
				t.Errorf("sample should be positive, got %v", elapsed)
			}
			count.Add(1)
		},
	})
	c.Start()
	deadline := time.Now().Add(time.Second)
	for count.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatal("sampler did not publish in time")
		}
		time.Sleep(time.Millisecond)
	}
	c.Stop()
	settled := count.Load()
	time.Sleep(30 * time.Millisecond)
	if count.Load() > settled+1 {
		t.Fatalf("sampler kept publishing after stop: %d -> %d", settled, count.Load())
	}
}

func TestStopIsIdempotent(t *testing.T) {
	c := New(Config{Interval: 5 * time.Millisecond})
	c.Stop()
	c.Start()
	c.Stop()
	c.Stop()
	c.Reset()
	if c.Running() {
		t.Fatal("clock should be idle")
	}
	if c.Exact() != 0 {
		t.Fatal("reset should clear the start instant")
	}
}

func TestRestartReplacesSampler(t *testing.T) {
	var count atomic.Int64
	c := New(Config{
		Interval: 5 * time.Millisecond,
		OnSample: func(time.Duration) { count.Add(1) },
	})
	c.Start()
	first := c.StartedAt()
	time.Sleep(12 * time.Millisecond)
	c.Start()
	if !c.StartedAt().After(first) {
		t.Fatal("restart should capture a fresh start instant")
	}
	time.Sleep(12 * time.Millisecond)
	c.Stop()
	if count.Load() == 0 {
		t.Fatal("restarted sampler should still publish")
	}
	if c.Last() <= 0 {
		t.Fatalf("stop should freeze a positive elapsed, got %v", c.Last())
	}
}
