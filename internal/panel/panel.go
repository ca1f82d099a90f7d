// Package panel implements the state engine behind the device panel: one
// authoritative aggregate that owns device discovery results, the per-device
// page cache, and the navigation cursor. Views render snapshots of it and
// feed user intents back in; they never hold state of their own.
//
// Everything here is confined to the control goroutine (the UI event loop).
// The only asynchronous boundary is enumeration and eject: RequestRefresh
// and RequestEject hand back a one-shot channel whose value must be passed
// to the matching Apply method on the control goroutine. The worker
// goroutine never touches a MainArea field.
package panel

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/usbdeck/usbdeck/internal/browser"
	"github.com/usbdeck/usbdeck/internal/device"
	"github.com/usbdeck/usbdeck/internal/fsys"
)

// ViewKind tags the navigation cursor.
type ViewKind int

const (
	ViewOverview ViewKind = iota
	ViewDevice
)

// View is the single navigation cursor: the overview, or one device's page.
type View struct {
	Kind   ViewKind
	Device device.ID
}

// FSFactory builds the filesystem capability a new page is bound to.
type FSFactory func(info device.StorageInfo) fsys.FS

// Config carries the tunables the panel takes from the config file.
type Config struct {
	// RefreshTimeout bounds one enumeration call. Zero means no bound.
	RefreshTimeout time.Duration
	// Filter is applied to every page's directory listings.
	Filter browser.Filter
}

// MainArea is the authoritative aggregate for the panel. Create it with New
// when the panel opens; call SetClosing when teardown begins and Close once
// the event loop has drained.
type MainArea struct {
	enum    device.Enumerator
	ejector device.Ejector
	newFS   FSFactory
	cfg     Config

	devices  []device.Device
	storages map[device.ID]device.StorageInfo
	pages    pageCache
	view     View

	scanning bool
	closing  bool
	lastErr  string

	generation      uint64
	ejectGeneration uint64
}

func New(enum device.Enumerator, ejector device.Ejector, newFS FSFactory, cfg Config) *MainArea {
	return &MainArea{
		enum:     enum,
		ejector:  ejector,
		newFS:    newFS,
		cfg:      cfg,
		storages: map[device.ID]device.StorageInfo{},
		pages:    newPageCache(),
		view:     View{Kind: ViewOverview},
	}
}

// Snapshot is the immutable copy of state handed to views for rendering.
type Snapshot struct {
	Scanning  bool
	Devices   []device.Device
	Storages  map[device.ID]device.StorageInfo
	View      View
	LastError string
}

func (m *MainArea) Snapshot() Snapshot {
	devices := make([]device.Device, len(m.devices))
	copy(devices, m.devices)
	storages := make(map[device.ID]device.StorageInfo, len(m.storages))
	for id, s := range m.storages {
		storages[id] = s
	}
	return Snapshot{
		Scanning:  m.scanning,
		Devices:   devices,
		Storages:  storages,
		View:      m.view,
		LastError: m.lastErr,
	}
}

func (m *MainArea) Scanning() bool { return m.scanning }
func (m *MainArea) CurrentView() View { return m.view }

// LastError is the single error-display surface; the latest message
// replaces any earlier one.
func (m *MainArea) LastError() string { return m.lastErr }

// SetClosing marks the start of window teardown. From here on every
// completion is discarded on arrival and no state field changes again.
func (m *MainArea) SetClosing() {
	m.closing = true
}

// Close releases all cached pages. Call after the event loop has stopped.
func (m *MainArea) Close() {
	m.SetClosing()
	m.pages.closeAll()
}

// RefreshResult is the completion value of one enumeration.
type RefreshResult struct {
	generation uint64
	snapshot   device.Snapshot
	err        error
}

// Err exposes the enumeration failure, if any, for logging by the consumer.
func (r RefreshResult) Err() error { return r.err }

// RequestRefresh starts one enumeration. While a scan is in flight further
// requests are dropped, not queued, and nil is returned. The caller must
// deliver the channel's single value to ApplyRefresh on the control
// goroutine.
func (m *MainArea) RequestRefresh(ctx context.Context) <-chan RefreshResult {
	if m.scanning || m.closing {
		slog.Debug("refresh request dropped", "scanning", m.scanning, "closing", m.closing)
		return nil
	}

	m.generation++
	gen := m.generation
	m.scanning = true
	m.lastErr = ""

	done := make(chan RefreshResult, 1)
	go func() {
		if m.cfg.RefreshTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, m.cfg.RefreshTimeout)
			defer cancel()
		}
		snap, err := m.enum.Enumerate(ctx)
		done <- RefreshResult{generation: gen, snapshot: snap, err: err}
	}()

	slog.Debug("refresh started", "generation", gen)
	return done
}

// ApplyRefresh consumes an enumeration completion. Guard order: a closing
// panel discards everything; a stale generation is dropped (unreachable
// while duplicate requests are ignored, kept against future overlap
// policies); otherwise the result replaces devices and storages and the
// page cache is reconciled before interactivity returns.
func (m *MainArea) ApplyRefresh(res RefreshResult) {
	if m.closing {
		slog.Debug("refresh result discarded, panel closing")
		return
	}
	if res.generation != m.generation {
		slog.Debug("stale refresh result discarded",
			"got", res.generation, "want", m.generation)
		return
	}

	m.scanning = false
	if res.err != nil {
		m.lastErr = fmt.Sprintf("refresh failed: %v", res.err)
		slog.Error("refresh failed", "error", res.err)
		return
	}

	m.devices = res.snapshot.Devices
	m.storages = res.snapshot.Storages
	if m.storages == nil {
		m.storages = map[device.ID]device.StorageInfo{}
	}
	m.lastErr = ""

	evicted := m.pages.reconcile(m.storages)
	for _, id := range evicted {
		if m.view.Kind == ViewDevice && m.view.Device == id {
			m.view = View{Kind: ViewOverview}
		}
	}
	// Guard against a current view that never had a page.
	if m.view.Kind == ViewDevice {
		if _, ok := m.storages[m.view.Device]; !ok {
			m.view = View{Kind: ViewOverview}
		}
	}

	slog.Debug("refresh applied",
		"generation", res.generation,
		"devices", len(m.devices),
		"storages", len(m.storages),
		"evicted", len(evicted))
}
