package panel

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/usbdeck/usbdeck/internal/device"
)

const msgDeviceGone = "device is no longer present, refresh to update the list"

// StorageDetails resolves the overview's selected device against the
// current storages snapshot, at the moment the action fires. A vanished
// device is reported through the shared error surface.
func (m *MainArea) StorageDetails(id device.ID) (device.StorageInfo, bool) {
	if m.closing {
		return device.StorageInfo{}, false
	}
	storage, ok := m.storages[id]
	if !ok {
		m.lastErr = msgDeviceGone
		return device.StorageInfo{}, false
	}
	return storage, true
}

// EjectResult is the completion value of one eject call.
type EjectResult struct {
	generation uint64
	id         device.ID
	err        error
}

// Err exposes the eject failure, if any, for logging by the consumer.
func (r EjectResult) Err() error { return r.err }

// RequestEject starts an asynchronous eject of the given device. It shares
// the scanning gate with refresh, so it is dropped while a scan or another
// eject is in flight. Returns nil when dropped or when the device has
// already vanished.
func (m *MainArea) RequestEject(ctx context.Context, id device.ID) <-chan EjectResult {
	if m.scanning || m.closing {
		slog.Debug("eject request dropped", "scanning", m.scanning, "closing", m.closing)
		return nil
	}

	storage, ok := m.storages[id]
	if !ok {
		m.lastErr = msgDeviceGone
		return nil
	}

	m.ejectGeneration++
	gen := m.ejectGeneration
	m.scanning = true
	m.lastErr = ""

	done := make(chan EjectResult, 1)
	go func() {
		err := m.ejector.Eject(ctx, storage)
		done <- EjectResult{generation: gen, id: id, err: err}
	}()

	slog.Debug("eject started", "device", id, "generation", gen)
	return done
}

// ApplyEject consumes an eject completion under the same guards as
// ApplyRefresh. It reports whether the caller should start a follow-up
// refresh: a successful eject changes the device set, so the panel
// re-enumerates right away.
func (m *MainArea) ApplyEject(res EjectResult) bool {
	if m.closing {
		slog.Debug("eject result discarded, panel closing")
		return false
	}
	if res.generation != m.ejectGeneration {
		slog.Debug("stale eject result discarded",
			"got", res.generation, "want", m.ejectGeneration)
		return false
	}

	m.scanning = false
	if res.err != nil {
		m.lastErr = fmt.Sprintf("eject failed: %v", res.err)
		slog.Error("eject failed", "device", res.id, "error", res.err)
		return false
	}

	slog.Info("device ejected", "device", res.id)
	return true
}
