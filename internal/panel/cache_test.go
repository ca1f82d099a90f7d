package panel

import (
	"context"
	"testing"
)

func TestReconcileEvictsOnlyVanished(t *testing.T) {
	enum := &fakeEnumerator{snap: makeSnapshot(
		makeStorage("A", "/mnt/a"),
		makeStorage("B", "/mnt/b"),
	)}
	area, filesystems := testArea(t, enum, nil)
	refresh(t, area)

	pageA := area.ShowDevice("A")
	pageB := area.ShowDevice("B")
	if pageA == nil || pageB == nil {
		t.Fatal("both pages must exist before reconciliation")
	}

	enum.snap = makeSnapshot(makeStorage("A", "/mnt/a"))
	refresh(t, area)

	if area.pages.len() != 1 {
		t.Fatalf("page cache size = %d, want 1", area.pages.len())
	}
	if area.pages.get("A") != pageA {
		t.Error("the surviving device must keep its cached page instance")
	}
	if !pageB.Closed() {
		t.Error("the vanished device's page must be released")
	}
	if got := filesystems["B"].closes; got != 1 {
		t.Errorf("vanished page released %d times, want exactly 1", got)
	}
	if got := filesystems["A"].closes; got != 0 {
		t.Errorf("surviving page released %d times, want 0", got)
	}
}

func TestReconcileSurvivesMetadataChange(t *testing.T) {
	enum := &fakeEnumerator{snap: makeSnapshot(makeStorage("A", "/mnt/a"))}
	area, _ := testArea(t, enum, nil)
	refresh(t, area)
	pageA := area.ShowDevice("A")

	// Same device, different volume metadata: the cache must not evict.
	changed := makeStorage("A", "/mnt/elsewhere")
	changed.Volumes[0].FreeBytes = 42
	enum.snap = makeSnapshot(changed)
	refresh(t, area)

	if area.pages.get("A") != pageA {
		t.Error("a metadata change must not evict the page")
	}
	if pageA.Closed() {
		t.Error("a metadata change must not release the page")
	}
}

func TestCloseReleasesAllPages(t *testing.T) {
	enum := &fakeEnumerator{snap: makeSnapshot(
		makeStorage("A", "/mnt/a"),
		makeStorage("B", "/mnt/b"),
	)}
	area, filesystems := testArea(t, enum, nil)
	refresh(t, area)
	area.ShowDevice("A")
	area.ShowDevice("B")

	area.Close()

	for id, f := range filesystems {
		if f.closes != 1 {
			t.Errorf("page %s released %d times at teardown, want 1", id, f.closes)
		}
	}
	if area.RequestRefresh(context.Background()) != nil {
		t.Error("a closed panel must not start another scan")
	}
}
