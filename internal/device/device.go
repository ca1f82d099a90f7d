package device

import "path/filepath"

// ID is an opaque identifier for an attached device. It is unique among
// currently attached devices and used as the key for page caching and
// navigation, but it is not guaranteed to survive a replug.
type ID string

// Info describes a device independent of any storage capability. It is an
// immutable snapshot taken at enumeration time.
type Info struct {
	ID           ID
	VendorID     string
	ProductID    string
	Manufacturer string
	Product      string
	Serial       string
	USBVersion   string
	SpeedMbps    float64
	BusNumber    int
	PortNumber   int
}

// Label returns a human-readable name for the device.
func (i Info) Label() string {
	switch {
	case i.Product != "" && i.Manufacturer != "":
		return i.Manufacturer + " " + i.Product
	case i.Product != "":
		return i.Product
	case i.Manufacturer != "":
		return i.Manufacturer
	default:
		return string(i.ID)
	}
}

// VolumeInfo describes one mounted (or mountable) volume of a storage device.
type VolumeInfo struct {
	MountPath   string
	DriveLetter string
	Filesystem  string
	Label       string
	TotalBytes  uint64
	FreeBytes   uint64
}

// StorageInfo extends Info with volume metadata for storage-capable devices.
type StorageInfo struct {
	Info
	Volumes []VolumeInfo
}

// MountRoot returns the directory a file browser should open for this
// device: the first volume's mount path, or a drive-letter root on systems
// that use them. Empty when nothing is mounted.
func (s StorageInfo) MountRoot() string {
	if len(s.Volumes) == 0 {
		return ""
	}
	v := s.Volumes[0]
	if v.MountPath != "" {
		return v.MountPath
	}
	if v.DriveLetter != "" {
		return v.DriveLetter + string(filepath.Separator)
	}
	return ""
}

// Device is the tagged variant over base and storage devices that the
// overview list renders. Exactly one of the two concrete types below
// implements it for any given enumeration entry.
type Device interface {
	Base() Info
}

// BaseDevice is a device with no browsable storage.
type BaseDevice struct {
	Info
}

func (d BaseDevice) Base() Info { return d.Info }

// StorageDevice is a storage-capable device.
type StorageDevice struct {
	StorageInfo
}

func (d StorageDevice) Base() Info { return d.StorageInfo.Info }

// Snapshot is the result of one enumeration: the ordered device list for
// the overview plus the keyed subset of storage-capable devices.
type Snapshot struct {
	Devices  []Device
	Storages map[ID]StorageInfo
}
