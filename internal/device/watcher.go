package device

import (
	"log/slog"
	"time"
)

// FingerprintFunc summarizes the current device set as an opaque string.
type FingerprintFunc func() (string, error)

// Watcher polls a device fingerprint and signals when it changes. It only
// reports that something changed; deciding when to re-enumerate (and
// debouncing bursts of events) is the consumer's business.
type Watcher struct {
	interval    time.Duration
	fingerprint FingerprintFunc

	events chan struct{}
	done   chan struct{}
}

func NewWatcher(interval time.Duration, fn FingerprintFunc) *Watcher {
	// A non-positive interval would panic the ticker.
	if interval <= 0 {
		interval = time.Second
	}
	if fn == nil {
		fn = Fingerprint
	}
	return &Watcher{
		interval:    interval,
		fingerprint: fn,
		events:      make(chan struct{}, 1),
		done:        make(chan struct{}),
	}
}

// Events signals each detected change. The channel is closed by Stop.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

func (w *Watcher) Start() {
	go w.run()
}

// Stop ends polling. It must not be called twice.
func (w *Watcher) Stop() {
	close(w.done)
}

func (w *Watcher) run() {
	defer close(w.events)

	last, err := w.fingerprint()
	if err != nil {
		slog.Debug("device watcher disabled", "error", err)
		<-w.done
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			current, err := w.fingerprint()
			if err != nil {
				slog.Debug("fingerprint failed", "error", err)
				continue
			}
			if current == last {
				continue
			}
			last = current
			select {
			case w.events <- struct{}{}:
			default:
				// An unconsumed event already covers this change.
			}
		}
	}
}
