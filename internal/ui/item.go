package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/dustin/go-humanize"
	"github.com/usbdeck/usbdeck/internal/device"
)

// deviceItem adapts one enumeration entry to the overview list.
type deviceItem struct {
	dev device.Device
}

var _ list.DefaultItem = (*deviceItem)(nil)

func (i deviceItem) Title() string {
	base := i.dev.Base()
	if storage, ok := i.dev.(device.StorageDevice); ok {
		if root := storage.MountRoot(); root != "" {
			return base.Label() + "  " + root
		}
	}
	return base.Label()
}

func (i deviceItem) Description() string {
	storage, ok := i.dev.(device.StorageDevice)
	if !ok {
		return describeBase(i.dev.Base())
	}
	if len(storage.Volumes) == 0 {
		return "storage device, nothing mounted"
	}
	vol := storage.Volumes[0]
	if vol.TotalBytes == 0 {
		return describeBase(storage.Info)
	}
	return fmt.Sprintf("%s free of %s • %s",
		humanize.IBytes(vol.FreeBytes),
		humanize.IBytes(vol.TotalBytes),
		vol.Filesystem,
	)
}

func (i deviceItem) FilterValue() string {
	return i.dev.Base().Label()
}

// storageID returns the navigation target when this entry is a storage
// device.
func (i deviceItem) storageID() (device.ID, bool) {
	if _, ok := i.dev.(device.StorageDevice); !ok {
		return "", false
	}
	return i.dev.Base().ID, true
}

func describeBase(info device.Info) string {
	switch {
	case info.Serial != "":
		return "sn " + info.Serial
	case info.VendorID != "":
		return info.VendorID + ":" + info.ProductID
	default:
		return "no volume information"
	}
}
