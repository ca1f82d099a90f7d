//go:build linux

package device

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/moby/sys/mountinfo"
	"github.com/shirou/gopsutil/v3/disk"
	"golang.org/x/sync/errgroup"
)

const sysBlockDir = "/sys/block"

// SysfsEnumerator discovers removable block devices through sysfs. Mount
// points come from the mount table and volume usage from statfs; all of it
// is re-read on every call.
type SysfsEnumerator struct {
	blockDir string
}

func NewEnumerator() Enumerator {
	return &SysfsEnumerator{blockDir: sysBlockDir}
}

func (e *SysfsEnumerator) Enumerate(ctx context.Context) (Snapshot, error) {
	entries, err := os.ReadDir(e.blockDir)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read %s: %w", e.blockDir, err)
	}

	mounts, err := mountinfo.GetMounts(nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to get mount info: %w", err)
	}
	mountsBySource := make(map[string]*mountinfo.Info, len(mounts))
	for _, m := range mounts {
		mountsBySource[m.Source] = m
	}

	snap := Snapshot{Storages: make(map[ID]StorageInfo)}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return Snapshot{}, err
		}

		name := entry.Name()
		blockPath := filepath.Join(e.blockDir, name)
		if !isRemovable(blockPath) {
			continue
		}

		info := readUsbInfo(blockPath, name)
		volumes := e.readVolumes(blockPath, name, mountsBySource)

		if len(volumes) == 0 {
			snap.Devices = append(snap.Devices, BaseDevice{Info: info})
			continue
		}

		storage := StorageInfo{Info: info, Volumes: volumes}
		snap.Devices = append(snap.Devices, StorageDevice{StorageInfo: storage})
		snap.Storages[info.ID] = storage
	}

	if err := fillVolumeUsage(ctx, &snap); err != nil {
		return Snapshot{}, err
	}

	slog.Debug("enumeration finished",
		"devices", len(snap.Devices),
		"storages", len(snap.Storages))
	return snap, nil
}

// readVolumes lists the partitions of a block device, falling back to the
// whole disk when it carries a filesystem without a partition table.
func (e *SysfsEnumerator) readVolumes(blockPath, name string, mounts map[string]*mountinfo.Info) []VolumeInfo {
	parts, _ := filepath.Glob(filepath.Join(blockPath, name+"*"))
	sort.Strings(parts)

	nodes := make([]string, 0, len(parts)+1)
	for _, p := range parts {
		nodes = append(nodes, "/dev/"+filepath.Base(p))
	}
	if len(nodes) == 0 {
		nodes = append(nodes, "/dev/"+name)
	}

	var volumes []VolumeInfo
	for _, node := range nodes {
		vol := VolumeInfo{Label: volumeLabel(node)}
		if m, ok := mounts[node]; ok {
			vol.MountPath = m.Mountpoint
			vol.Filesystem = m.FSType
		}
		volumes = append(volumes, vol)
	}
	return volumes
}

// fillVolumeUsage stats every mounted volume concurrently. Usage failures
// leave the counters at zero rather than failing the whole enumeration.
func fillVolumeUsage(ctx context.Context, snap *Snapshot) error {
	g, ctx := errgroup.WithContext(ctx)

	for id, storage := range snap.Storages {
		for vi := range storage.Volumes {
			vol := &storage.Volumes[vi]
			if vol.MountPath == "" {
				continue
			}
			g.Go(func() error {
				usage, err := disk.UsageWithContext(ctx, vol.MountPath)
				if err != nil {
					slog.Debug("failed to stat volume", "mountpoint", vol.MountPath, "error", err)
					return nil
				}
				vol.TotalBytes = usage.Total
				vol.FreeBytes = usage.Free
				return nil
			})
		}
		snap.Storages[id] = storage
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Storages share volume slices with the device list entries, so the
	// usage written above is already visible there.
	return nil
}

func isRemovable(blockPath string) bool {
	data, err := os.ReadFile(filepath.Join(blockPath, "removable"))
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(data)) == "1"
}

// readUsbInfo walks from the block device to its USB ancestor and reads the
// identity attributes exposed there.
func readUsbInfo(blockPath, name string) Info {
	info := Info{ID: ID(name)}

	usbDir, ok := findUsbAncestor(filepath.Join(blockPath, "device"))
	if !ok {
		info.Product = sysfsAttr(filepath.Join(blockPath, "device"), "model")
		info.Manufacturer = sysfsAttr(filepath.Join(blockPath, "device"), "vendor")
		return info
	}

	info.VendorID = sysfsAttr(usbDir, "idVendor")
	info.ProductID = sysfsAttr(usbDir, "idProduct")
	info.Manufacturer = sysfsAttr(usbDir, "manufacturer")
	info.Product = sysfsAttr(usbDir, "product")
	info.Serial = sysfsAttr(usbDir, "serial")
	info.USBVersion = sysfsAttr(usbDir, "version")
	if speed, err := strconv.ParseFloat(sysfsAttr(usbDir, "speed"), 64); err == nil {
		info.SpeedMbps = speed
	}
	if bus, err := strconv.Atoi(sysfsAttr(usbDir, "busnum")); err == nil {
		info.BusNumber = bus
	}
	if port, err := strconv.Atoi(sysfsAttr(usbDir, "devnum")); err == nil {
		info.PortNumber = port
	}

	if info.Serial != "" {
		info.ID = ID(info.VendorID + ":" + info.ProductID + ":" + info.Serial)
	}
	return info
}

// findUsbAncestor follows the device symlink upwards until it hits a
// directory carrying USB identity attributes.
func findUsbAncestor(devicePath string) (string, bool) {
	dir, err := filepath.EvalSymlinks(devicePath)
	if err != nil {
		return "", false
	}
	for i := 0; i < 10; i++ {
		if _, err := os.Stat(filepath.Join(dir, "idVendor")); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir || parent == "/" {
			return "", false
		}
		dir = parent
	}
	return "", false
}

func sysfsAttr(dir, name string) string {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// volumeLabel resolves the filesystem label through the by-label symlink
// farm maintained by udev.
func volumeLabel(devNode string) string {
	links, err := filepath.Glob("/dev/disk/by-label/*")
	if err != nil {
		return ""
	}
	for _, link := range links {
		target, err := filepath.EvalSymlinks(link)
		if err != nil {
			continue
		}
		if target == devNode {
			return filepath.Base(link)
		}
	}
	return ""
}

// SysfsEjector unmounts all mounted volumes of a device so it can be
// pulled safely.
type SysfsEjector struct{}

func NewEjector() Ejector {
	return &SysfsEjector{}
}

func (e *SysfsEjector) Eject(ctx context.Context, info StorageInfo) error {
	var failed []string
	for _, vol := range info.Volumes {
		if vol.MountPath == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := syscall.Unmount(vol.MountPath, 0); err != nil {
			slog.Warn("unmount failed", "mountpoint", vol.MountPath, "error", err)
			failed = append(failed, vol.MountPath)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to unmount %s", strings.Join(failed, ", "))
	}
	return nil
}

// Fingerprint summarizes the attached removable devices and their mounts.
// A change in the returned string means the device set changed.
func Fingerprint() (string, error) {
	entries, err := os.ReadDir(sysBlockDir)
	if err != nil {
		return "", err
	}

	var parts []string
	for _, entry := range entries {
		name := entry.Name()
		blockPath := filepath.Join(sysBlockDir, name)
		if !isRemovable(blockPath) {
			continue
		}
		subs, _ := filepath.Glob(filepath.Join(blockPath, name+"*"))
		parts = append(parts, name+":"+strconv.Itoa(len(subs)))
	}
	sort.Strings(parts)

	mounts, err := mountinfo.GetMounts(func(m *mountinfo.Info) (skip, stop bool) {
		return !strings.HasPrefix(m.Source, "/dev/"), false
	})
	if err != nil {
		return "", err
	}
	var mountParts []string
	for _, m := range mounts {
		mountParts = append(mountParts, m.Source+"="+m.Mountpoint)
	}
	sort.Strings(mountParts)

	return strings.Join(parts, ",") + "|" + strings.Join(mountParts, ","), nil
}
