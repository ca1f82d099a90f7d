package panel

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/usbdeck/usbdeck/internal/device"
	"github.com/usbdeck/usbdeck/internal/fsys"
)

// fakeEnumerator returns a fixed snapshot and counts how often it runs.
type fakeEnumerator struct {
	mu    sync.Mutex
	calls int
	snap  device.Snapshot
	err   error
}

func (f *fakeEnumerator) Enumerate(ctx context.Context) (device.Snapshot, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.snap, f.err
}

func (f *fakeEnumerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeEjector struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeEjector) Eject(ctx context.Context, info device.StorageInfo) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.err
}

// fakeFS serves canned listings and counts Close calls so tests can assert
// that eviction releases a page exactly once.
type fakeFS struct {
	entries []fsys.Entry
	closes  int
}

func (f *fakeFS) List(ctx context.Context, dir string) ([]fsys.Entry, error) {
	return f.entries, nil
}

func (f *fakeFS) Close() error {
	f.closes++
	return nil
}

func makeStorage(id device.ID, mount string) device.StorageInfo {
	return device.StorageInfo{
		Info: device.Info{ID: id, Product: "Stick " + string(id)},
		Volumes: []device.VolumeInfo{
			{MountPath: mount, Filesystem: "vfat", TotalBytes: 1 << 30, FreeBytes: 1 << 29},
		},
	}
}

func makeSnapshot(storages ...device.StorageInfo) device.Snapshot {
	snap := device.Snapshot{Storages: map[device.ID]device.StorageInfo{}}
	for _, s := range storages {
		snap.Devices = append(snap.Devices, device.StorageDevice{StorageInfo: s})
		snap.Storages[s.ID] = s
	}
	return snap
}

// testArea builds an aggregate wired to fakes. The returned map collects
// the filesystem fake created for each device.
func testArea(t *testing.T, enum *fakeEnumerator, ejector *fakeEjector) (*MainArea, map[device.ID]*fakeFS) {
	t.Helper()
	if enum == nil {
		enum = &fakeEnumerator{}
	}
	if ejector == nil {
		ejector = &fakeEjector{}
	}
	filesystems := map[device.ID]*fakeFS{}
	area := New(enum, ejector, func(info device.StorageInfo) fsys.FS {
		f := &fakeFS{}
		filesystems[info.ID] = f
		return f
	}, Config{})
	return area, filesystems
}

// refresh runs one full request/apply cycle synchronously.
func refresh(t *testing.T, area *MainArea) {
	t.Helper()
	ch := area.RequestRefresh(context.Background())
	if ch == nil {
		t.Fatal("refresh request was unexpectedly dropped")
	}
	area.ApplyRefresh(<-ch)
}

func TestDuplicateRefreshDropped(t *testing.T) {
	enum := &fakeEnumerator{snap: makeSnapshot()}
	area, _ := testArea(t, enum, nil)

	first := area.RequestRefresh(context.Background())
	if first == nil {
		t.Fatal("first refresh request must start a scan")
	}
	if second := area.RequestRefresh(context.Background()); second != nil {
		t.Error("second request while scanning must be dropped, not queued")
	}
	if area.generation != 1 {
		t.Errorf("generation = %d, want 1", area.generation)
	}

	area.ApplyRefresh(<-first)

	if got := enum.callCount(); got != 1 {
		t.Errorf("enumeration ran %d times, want 1", got)
	}
	if area.Scanning() {
		t.Error("scanning must be false after the completion is applied")
	}
}

func TestRefreshHappyPath(t *testing.T) {
	s2 := makeStorage("D2", "/mnt/d2")
	snap := device.Snapshot{
		Devices: []device.Device{
			device.BaseDevice{Info: device.Info{ID: "D1", Product: "Hub"}},
			device.StorageDevice{StorageInfo: s2},
		},
		Storages: map[device.ID]device.StorageInfo{"D2": s2},
	}
	area, _ := testArea(t, &fakeEnumerator{snap: snap}, nil)

	refresh(t, area)

	if area.Scanning() {
		t.Error("scanning must be false after a completed refresh")
	}
	got := area.Snapshot()
	if len(got.Devices) != 2 {
		t.Errorf("devices length = %d, want 2", len(got.Devices))
	}
	if _, ok := got.Storages["D2"]; !ok || len(got.Storages) != 1 {
		t.Errorf("storages = %v, want exactly D2", got.Storages)
	}
	if got.LastError != "" {
		t.Errorf("unexpected error message %q", got.LastError)
	}
}

func TestRefreshFailureReported(t *testing.T) {
	area, _ := testArea(t, &fakeEnumerator{err: errors.New("enumeration backend exploded")}, nil)

	refresh(t, area)

	if area.Scanning() {
		t.Error("scanning must be false after a failed refresh")
	}
	if area.LastError() == "" {
		t.Error("a failed refresh must surface an error message")
	}
	if len(area.devices) != 0 {
		t.Error("a failed refresh must not touch the device list")
	}
}

func TestCloseDiscardsResult(t *testing.T) {
	testCases := []struct {
		name string
		enum *fakeEnumerator
	}{
		{name: "success result", enum: &fakeEnumerator{snap: makeSnapshot(makeStorage("D2", "/mnt/d2"))}},
		{name: "failure result", enum: &fakeEnumerator{err: errors.New("boom")}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			area, _ := testArea(t, tc.enum, nil)

			ch := area.RequestRefresh(context.Background())
			if ch == nil {
				t.Fatal("refresh request was unexpectedly dropped")
			}
			area.SetClosing()
			before := View{Kind: area.view.Kind, Device: area.view.Device}

			area.ApplyRefresh(<-ch)

			if len(area.devices) != 0 || len(area.storages) != 0 {
				t.Error("devices/storages must be untouched after closing")
			}
			if area.pages.len() != 0 {
				t.Error("pages must be untouched after closing")
			}
			if area.view != before {
				t.Error("view must be untouched after closing")
			}
			if !area.scanning {
				t.Error("no field changes after closing, scanning included")
			}
			if area.LastError() != "" {
				t.Error("no error must be surfaced after closing")
			}
		})
	}
}

func TestStaleGenerationDiscarded(t *testing.T) {
	area, _ := testArea(t, &fakeEnumerator{snap: makeSnapshot(makeStorage("D2", "/mnt/d2"))}, nil)
	refresh(t, area)

	stale := RefreshResult{generation: area.generation - 1, snapshot: device.Snapshot{}}
	area.ApplyRefresh(stale)

	if len(area.storages) != 1 {
		t.Error("a stale completion must not replace current state")
	}
}

func TestNavigationRedirect(t *testing.T) {
	area, _ := testArea(t, &fakeEnumerator{snap: makeSnapshot(makeStorage("D2", "/mnt/d2"))}, nil)
	refresh(t, area)

	if page := area.ShowDevice("missing"); page != nil {
		t.Error("navigating to an unknown device must not create a page")
	}
	if area.CurrentView().Kind != ViewOverview {
		t.Errorf("view = %v, want overview after redirect", area.CurrentView())
	}
}

func TestShowDeviceCachesPage(t *testing.T) {
	area, filesystems := testArea(t, &fakeEnumerator{snap: makeSnapshot(makeStorage("D2", "/mnt/d2"))}, nil)
	refresh(t, area)

	first := area.ShowDevice("D2")
	if first == nil {
		t.Fatal("navigation to a present device must yield a page")
	}
	if area.CurrentView() != (View{Kind: ViewDevice, Device: "D2"}) {
		t.Errorf("view = %v, want device D2", area.CurrentView())
	}

	second := area.ShowDevice("D2")
	if first != second {
		t.Error("a cached page instance must survive repeated navigation")
	}
	if len(filesystems) != 1 {
		t.Errorf("filesystem capability created %d times, want 1", len(filesystems))
	}
}

func TestMountPathRevalidation(t *testing.T) {
	enum := &fakeEnumerator{snap: makeSnapshot(makeStorage("A", "/mnt/p"))}
	area, _ := testArea(t, enum, nil)
	refresh(t, area)

	page := area.ShowDevice("A")
	if page.Dir() != "/mnt/p" {
		t.Fatalf("page dir = %q, want /mnt/p", page.Dir())
	}

	enum.snap = makeSnapshot(makeStorage("A", "/mnt/q"))
	refresh(t, area)

	page = area.ShowDevice("A")
	if page.Dir() != "/mnt/q" {
		t.Errorf("page dir = %q, want the new mount root /mnt/q", page.Dir())
	}
	if page.Root() != "/mnt/q" {
		t.Errorf("page root = %q, want /mnt/q", page.Root())
	}
}

func TestVanishedSelectionRedirects(t *testing.T) {
	enum := &fakeEnumerator{snap: makeSnapshot(makeStorage("D2", "/mnt/d2"))}
	area, filesystems := testArea(t, enum, nil)
	refresh(t, area)
	area.ShowDevice("D2")

	enum.snap = makeSnapshot()
	refresh(t, area)

	if area.pages.len() != 0 {
		t.Error("the vanished device's page must be evicted during reconciliation")
	}
	if got := filesystems["D2"].closes; got != 1 {
		t.Errorf("page resources released %d times, want exactly 1", got)
	}
	if area.CurrentView().Kind != ViewOverview {
		t.Error("the view must be redirected to overview, not left dangling")
	}
}

func TestEjectMissingDevice(t *testing.T) {
	area, _ := testArea(t, &fakeEnumerator{snap: makeSnapshot()}, nil)
	refresh(t, area)

	if ch := area.RequestEject(context.Background(), "gone"); ch != nil {
		t.Error("ejecting an absent device must not start a worker")
	}
	if area.LastError() == "" {
		t.Error("ejecting an absent device must surface a message")
	}
}

func TestEjectSuccessTriggersRefresh(t *testing.T) {
	ejector := &fakeEjector{}
	area, _ := testArea(t, &fakeEnumerator{snap: makeSnapshot(makeStorage("D2", "/mnt/d2"))}, ejector)
	refresh(t, area)

	ch := area.RequestEject(context.Background(), "D2")
	if ch == nil {
		t.Fatal("eject of a present device must start")
	}
	if !area.Scanning() {
		t.Error("eject must hold the scanning gate while in flight")
	}
	if dup := area.RequestRefresh(context.Background()); dup != nil {
		t.Error("refresh during an eject must be dropped")
	}

	if !area.ApplyEject(<-ch) {
		t.Error("a successful eject must ask for a follow-up refresh")
	}
	if area.Scanning() {
		t.Error("scanning must clear once the eject completes")
	}
}

func TestEjectFailureReported(t *testing.T) {
	ejector := &fakeEjector{err: errors.New("volume is busy")}
	area, _ := testArea(t, &fakeEnumerator{snap: makeSnapshot(makeStorage("D2", "/mnt/d2"))}, ejector)
	refresh(t, area)

	ch := area.RequestEject(context.Background(), "D2")
	if area.ApplyEject(<-ch) {
		t.Error("a failed eject must not ask for a refresh")
	}
	if area.LastError() == "" {
		t.Error("a failed eject must surface an error message")
	}
}

func TestDetailsMissingDevice(t *testing.T) {
	area, _ := testArea(t, &fakeEnumerator{snap: makeSnapshot(makeStorage("D2", "/mnt/d2"))}, nil)
	refresh(t, area)

	if _, ok := area.StorageDetails("D2"); !ok {
		t.Error("details for a present device must resolve")
	}
	if _, ok := area.StorageDetails("gone"); ok {
		t.Error("details for an absent device must fail")
	}
	if area.LastError() == "" {
		t.Error("details for an absent device must surface a message")
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	area, _ := testArea(t, &fakeEnumerator{snap: makeSnapshot(makeStorage("D2", "/mnt/d2"))}, nil)
	refresh(t, area)

	snap := area.Snapshot()
	delete(snap.Storages, "D2")
	snap.Devices[0] = device.BaseDevice{}

	if _, ok := area.storages["D2"]; !ok {
		t.Error("mutating a snapshot must not leak into the aggregate")
	}
	if _, ok := area.devices[0].(device.StorageDevice); !ok {
		t.Error("mutating a snapshot's device list must not leak into the aggregate")
	}
}

func TestNavigationFrozenWhileClosing(t *testing.T) {
	area, _ := testArea(t, &fakeEnumerator{snap: makeSnapshot(makeStorage("D2", "/mnt/d2"))}, nil)
	refresh(t, area)
	area.SetClosing()

	if page := area.ShowDevice("D2"); page != nil {
		t.Error("navigation must be inert once closing")
	}
	if area.RequestRefresh(context.Background()) != nil {
		t.Error("refresh must be inert once closing")
	}
	if area.CurrentView().Kind != ViewOverview {
		t.Error("view must not move once closing")
	}
}
