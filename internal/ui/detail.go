package ui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/usbdeck/usbdeck/internal/device"
)

// renderDetails builds the device detail text shown in the viewport.
func renderDetails(storage device.StorageInfo) string {
	var b strings.Builder

	writeRow := func(name, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "%-14s %s\n", name+":", value)
	}

	b.WriteString(storage.Label())
	b.WriteString("\n\n")
	writeRow("Manufacturer", storage.Manufacturer)
	writeRow("Product", storage.Product)
	writeRow("Serial", storage.Serial)
	writeRow("Vendor ID", storage.VendorID)
	writeRow("Product ID", storage.ProductID)
	writeRow("USB version", storage.USBVersion)
	if storage.SpeedMbps > 0 {
		writeRow("Link speed", fmt.Sprintf("%.0f Mbps", storage.SpeedMbps))
	}
	if storage.BusNumber > 0 {
		writeRow("Bus/Port", fmt.Sprintf("%d/%d", storage.BusNumber, storage.PortNumber))
	}

	for i, vol := range storage.Volumes {
		fmt.Fprintf(&b, "\nVolume %d\n", i+1)
		writeRow("  Mount", vol.MountPath)
		writeRow("  Drive", vol.DriveLetter)
		writeRow("  Filesystem", vol.Filesystem)
		writeRow("  Label", vol.Label)
		if vol.TotalBytes > 0 {
			writeRow("  Capacity", humanize.IBytes(vol.TotalBytes))
			writeRow("  Free", humanize.IBytes(vol.FreeBytes))
		}
	}

	return b.String()
}
