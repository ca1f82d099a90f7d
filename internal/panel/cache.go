package panel

import (
	"log/slog"

	"github.com/samber/lo"
	"github.com/usbdeck/usbdeck/internal/browser"
	"github.com/usbdeck/usbdeck/internal/device"
)

// pageCache owns the per-device file pages. Pages are created lazily on
// first navigation and live until the device disappears from an enumeration
// result or the panel is torn down. Nothing outside the aggregate may
// mutate it.
type pageCache struct {
	pages map[device.ID]*browser.Page
}

func newPageCache() pageCache {
	return pageCache{pages: map[device.ID]*browser.Page{}}
}

func (c *pageCache) get(id device.ID) *browser.Page {
	return c.pages[id]
}

func (c *pageCache) put(id device.ID, page *browser.Page) {
	c.pages[id] = page
}

func (c *pageCache) len() int {
	return len(c.pages)
}

// reconcile evicts every page whose device is absent from the new storages
// map and returns the evicted ids. Surviving pages keep their instance even
// when the device's metadata changed; reacting to a moved mount path is the
// page's job at display time. Eviction happens here, synchronously with the
// data update, so a page for an unmounted volume never stays reachable.
func (c *pageCache) reconcile(storages map[device.ID]device.StorageInfo) []device.ID {
	gone := lo.Filter(lo.Keys(c.pages), func(id device.ID, _ int) bool {
		_, ok := storages[id]
		return !ok
	})

	for _, id := range gone {
		page := c.pages[id]
		delete(c.pages, id)
		if err := page.Close(); err != nil {
			slog.Warn("failed to release page", "device", id, "error", err)
		}
		slog.Debug("page evicted", "device", id)
	}
	return gone
}

func (c *pageCache) closeAll() {
	for id, page := range c.pages {
		if err := page.Close(); err != nil {
			slog.Warn("failed to release page", "device", id, "error", err)
		}
	}
	c.pages = map[device.ID]*browser.Page{}
}
