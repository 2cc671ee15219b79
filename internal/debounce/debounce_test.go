package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestManualClock(t *testing.T) {
	c := NewManualClock()
	var order []int

	c.AfterFunc(3*time.Second, func() { order = append(order, 3) })
	c.AfterFunc(1*time.Second, func() { order = append(order, 1) })
	stopped := c.AfterFunc(2*time.Second, func() { order = append(order, 2) })

	if !stopped.Stop() {
		t.Error("Expected Stop to report a prevented run")
	}
	if stopped.Stop() {
		t.Error("Expected second Stop to report false")
	}

	c.Advance(2 * time.Second)
	if len(order) != 1 || order[0] != 1 {
		t.Fatalf("Expected only the 1s timer to fire, got %v", order)
	}

	c.Advance(time.Second)
	if len(order) != 2 || order[1] != 3 {
		t.Fatalf("Expected the 3s timer to fire next, got %v", order)
	}
	if c.Pending() != 0 {
		t.Errorf("Expected no pending timers, got %d", c.Pending())
	}
	if got := c.Now().Sub(time.Unix(0, 0).UTC()); got != 3*time.Second {
		t.Errorf("Expected clock at 3s, got %v", got)
	}
}

func TestManualClockTimerScheduledByCallback(t *testing.T) {
	c := NewManualClock()
	fired := 0
	c.AfterFunc(time.Second, func() {
		fired++
		c.AfterFunc(time.Second, func() { fired++ })
	})

	c.Advance(2 * time.Second)
	if fired != 2 {
		t.Errorf("Expected chained timer to fire within the same advance, got %d", fired)
	}
}

func TestDebouncerBurst(t *testing.T) {
	c := NewManualClock()
	runs := 0
	d := New(c, 5*time.Second, func() { runs++ })

	d.Trigger()
	c.Advance(time.Second)
	d.Trigger()
	c.Advance(4 * time.Second)
	if runs != 0 {
		t.Fatalf("Expected no run before the quiet period ends, got %d", runs)
	}
	if !d.Pending() {
		t.Error("Expected pending run")
	}

	c.Advance(time.Second)
	if runs != 1 {
		t.Fatalf("Expected exactly one run, got %d", runs)
	}
	if d.Pending() {
		t.Error("Expected nothing pending after the run")
	}

	c.Advance(time.Minute)
	if runs != 1 {
		t.Errorf("Expected no further runs, got %d", runs)
	}
}

func TestDebouncerCancelAndClose(t *testing.T) {
	c := NewManualClock()
	runs := 0
	d := New(c, time.Second, func() { runs++ })

	d.Trigger()
	d.Cancel()
	c.Advance(2 * time.Second)
	if runs != 0 {
		t.Errorf("Expected cancelled run to be dropped, got %d", runs)
	}

	d.Trigger()
	d.Close()
	d.Trigger()
	c.Advance(2 * time.Second)
	if runs != 0 {
		t.Errorf("Expected no runs after Close, got %d", runs)
	}
	if c.Pending() != 0 {
		t.Errorf("Expected no timers left, got %d", c.Pending())
	}
}

func TestDebouncerRealClock(t *testing.T) {
	var runs atomic.Int32
	done := make(chan struct{}, 1)
	d := New(nil, 20*time.Millisecond, func() {
		runs.Add(1)
		done <- struct{}{}
	})

	for i := 0; i < 5; i++ {
		d.Trigger()
		time.Sleep(2 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for debounced run")
	}
	time.Sleep(50 * time.Millisecond)
	if n := runs.Load(); n != 1 {
		t.Errorf("Expected one run, got %d", n)
	}
}
