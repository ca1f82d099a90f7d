package device

import "testing"

func TestInfoLabel(t *testing.T) {
	cases := []struct {
		name string
		info Info
		want string
	}{
		{
			name: "manufacturer and product",
			info: Info{ID: "1-4", Manufacturer: "Kingston", Product: "DataTraveler"},
			want: "Kingston DataTraveler",
		},
		{
			name: "product only",
			info: Info{ID: "1-4", Product: "DataTraveler"},
			want: "DataTraveler",
		},
		{
			name: "manufacturer only",
			info: Info{ID: "1-4", Manufacturer: "Kingston"},
			want: "Kingston",
		},
		{
			name: "falls back to id",
			info: Info{ID: "1-4"},
			want: "1-4",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.info.Label(); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestStorageMountRoot(t *testing.T) {
	cases := []struct {
		name    string
		volumes []VolumeInfo
		want    string
	}{
		{
			name: "no volumes",
			want: "",
		},
		{
			name:    "mount path wins",
			volumes: []VolumeInfo{{MountPath: "/mnt/stick", DriveLetter: "E:"}},
			want:    "/mnt/stick",
		},
		{
			name:    "first volume wins",
			volumes: []VolumeInfo{{MountPath: "/mnt/a"}, {MountPath: "/mnt/b"}},
			want:    "/mnt/a",
		},
		{
			name:    "unmounted volume",
			volumes: []VolumeInfo{{Filesystem: "vfat"}},
			want:    "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := StorageInfo{Volumes: tc.volumes}
			if got := s.MountRoot(); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDeviceVariants(t *testing.T) {
	devices := []Device{
		BaseDevice{Info{ID: "hub"}},
		StorageDevice{StorageInfo{Info: Info{ID: "stick"}}},
	}

	if _, ok := devices[0].(StorageDevice); ok {
		t.Error("a base device must not match the storage variant")
	}
	s, ok := devices[1].(StorageDevice)
	if !ok {
		t.Fatal("a storage device must match the storage variant")
	}
	if s.Base().ID != "stick" {
		t.Errorf("base id = %q, want stick", s.Base().ID)
	}
}
