package panel

import (
	"log/slog"

	"github.com/usbdeck/usbdeck/internal/browser"
	"github.com/usbdeck/usbdeck/internal/device"
)

// ShowOverview moves the navigation cursor to the overview. It always
// succeeds.
func (m *MainArea) ShowOverview() {
	if m.closing {
		return
	}
	m.view = View{Kind: ViewOverview}
}

// ShowDevice moves the cursor to the given device's file page, creating the
// page on first visit. A device that is unknown, or has nothing mounted, is
// a silent redirect back to the overview, not an error; the sidebar picks
// the corrected cursor up from the next snapshot. Before the page is shown
// its browsing position is revalidated against the device's current mount
// root.
func (m *MainArea) ShowDevice(id device.ID) *browser.Page {
	if m.closing {
		return nil
	}

	storage, ok := m.storages[id]
	if !ok {
		slog.Debug("device not present, redirecting to overview", "device", id)
		m.view = View{Kind: ViewOverview}
		return nil
	}

	root := storage.MountRoot()
	if root == "" {
		slog.Debug("device has no mounted volume, redirecting to overview", "device", id)
		m.view = View{Kind: ViewOverview}
		return nil
	}

	page := m.pages.get(id)
	if page == nil {
		page = browser.NewPage(id, m.newFS(storage), root, m.cfg.Filter)
		m.pages.put(id, page)
		slog.Debug("page created", "device", id, "root", root)
	}
	page.Revalidate(root)

	m.view = View{Kind: ViewDevice, Device: id}
	return page
}

// CurrentPage returns the page of the device the cursor is on, or nil when
// the overview is showing.
func (m *MainArea) CurrentPage() *browser.Page {
	if m.view.Kind != ViewDevice {
		return nil
	}
	return m.pages.get(m.view.Device)
}
