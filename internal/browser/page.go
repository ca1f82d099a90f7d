// Package browser holds the per-device file pages that the main area
// caches. A page owns its browsing position and last listing; it is created
// on first navigation to a device and released when the device vanishes.
package browser

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/usbdeck/usbdeck/internal/device"
	"github.com/usbdeck/usbdeck/internal/fsys"
)

var ErrPageClosed = errors.New("page has been released")

// Page is a file browser bound to one storage device. It is confined to the
// control goroutine; nothing here is safe for concurrent use.
type Page struct {
	deviceID device.ID
	fs       fsys.FS
	filter   Filter

	root    string
	dir     string
	entries []fsys.Entry
	lastErr error
	closed  bool
}

func NewPage(id device.ID, fs fsys.FS, root string, filter Filter) *Page {
	return &Page{
		deviceID: id,
		fs:       fs,
		filter:   filter,
		root:     root,
		dir:      root,
	}
}

func (p *Page) DeviceID() device.ID  { return p.deviceID }
func (p *Page) Root() string         { return p.root }
func (p *Page) Dir() string          { return p.dir }
func (p *Page) Entries() []fsys.Entry { return p.entries }
func (p *Page) Err() error           { return p.lastErr }

// Revalidate resets the page to the given mount root if it differs from the
// one the page was last positioned against. Reports whether a reset
// happened; callers reload the listing when it did.
func (p *Page) Revalidate(root string) bool {
	if p.closed || root == p.root {
		return false
	}
	slog.Debug("mount root changed, resetting page",
		"device", p.deviceID, "old", p.root, "new", root)
	p.root = root
	p.dir = root
	p.entries = nil
	p.lastErr = nil
	return true
}

// Load refreshes the listing of the current directory.
func (p *Page) Load(ctx context.Context) error {
	if p.closed {
		return ErrPageClosed
	}
	entries, err := p.fs.List(ctx, p.dir)
	if err != nil {
		p.lastErr = err
		return err
	}
	p.entries = p.filter.Apply(entries)
	p.lastErr = nil
	return nil
}

// Enter descends into the named child directory of the current listing.
func (p *Page) Enter(name string) bool {
	if p.closed {
		return false
	}
	for _, entry := range p.entries {
		if entry.Name == name && entry.IsDir {
			p.dir = filepath.Join(p.dir, name)
			p.entries = nil
			return true
		}
	}
	return false
}

// Up ascends one directory, never above the mount root.
func (p *Page) Up() bool {
	if p.closed || p.dir == p.root {
		return false
	}
	p.dir = filepath.Dir(p.dir)
	p.entries = nil
	return true
}

// Close releases the page. Safe to call more than once; the underlying
// filesystem capability is closed exactly once if it supports closing.
func (p *Page) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	p.entries = nil
	if closer, ok := p.fs.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (p *Page) Closed() bool { return p.closed }
