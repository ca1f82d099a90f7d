package device

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestWatcherSignalsChange(t *testing.T) {
	var n atomic.Int64
	fn := func() (string, error) {
		// First two polls agree, then the fingerprint flips once.
		if n.Add(1) <= 2 {
			return "before", nil
		}
		return "after", nil
	}

	w := NewWatcher(time.Millisecond, fn)
	w.Start()
	defer w.Stop()

	select {
	case <-w.Events():
	case <-time.After(time.Second):
		t.Fatal("expected a change event")
	}

	// The fingerprint stays stable afterwards, so no further event may
	// arrive before Stop closes the channel.
	select {
	case <-w.Events():
		t.Error("unexpected event for an unchanged fingerprint")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestWatcherClampsInterval(t *testing.T) {
	// A zero interval comes out of a "0 seconds" config value and would
	// panic the ticker.
	w := NewWatcher(0, func() (string, error) {
		return "steady", nil
	})
	if w.interval <= 0 {
		t.Fatalf("interval = %v, want a positive clamp", w.interval)
	}
	w.Start()
	w.Stop()
}

func TestWatcherStopClosesEvents(t *testing.T) {
	w := NewWatcher(time.Millisecond, func() (string, error) {
		return "steady", nil
	})
	w.Start()
	w.Stop()

	select {
	case _, ok := <-w.Events():
		if ok {
			t.Error("events after stop must only report closure")
		}
	case <-time.After(time.Second):
		t.Fatal("events channel must close after stop")
	}
}
