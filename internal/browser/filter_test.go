package browser

import (
	"testing"

	"github.com/usbdeck/usbdeck/internal/fsys"
)

func names(entries []fsys.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilterApply(t *testing.T) {
	listing := []fsys.Entry{
		{Name: "Photos", IsDir: true},
		{Name: ".Trashes", IsDir: true},
		{Name: ".DS_Store", Size: 6148},
		{Name: "movie.mp4", Size: 4 << 30},
		{Name: "note.txt", Size: 12},
		{Name: "backup.tmp", Size: 2048},
	}

	cases := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{
			name:   "no rules keeps everything",
			filter: Filter{},
			want:   []string{"Photos", ".Trashes", ".DS_Store", "movie.mp4", "note.txt", "backup.tmp"},
		},
		{
			name:   "hidden entries",
			filter: Filter{HideHidden: true},
			want:   []string{"Photos", "movie.mp4", "note.txt", "backup.tmp"},
		},
		{
			name:   "exact file names",
			filter: Filter{Files: []string{".DS_Store", "note.txt"}},
			want:   []string{"Photos", ".Trashes", "movie.mp4", "backup.tmp"},
		},
		{
			name:   "regexp patterns",
			filter: Filter{Patterns: []string{`\.tmp$`}},
			want:   []string{"Photos", ".Trashes", ".DS_Store", "movie.mp4", "note.txt"},
		},
		{
			name:   "glob patterns",
			filter: Filter{Globs: []string{"*.mp4"}},
			want:   []string{"Photos", ".Trashes", ".DS_Store", "note.txt", "backup.tmp"},
		},
		{
			name:   "minimum size spares directories",
			filter: Filter{MinSize: "1KB"},
			want:   []string{"Photos", ".Trashes", ".DS_Store", "movie.mp4", "backup.tmp"},
		},
		{
			name:   "maximum size",
			filter: Filter{MaxSize: "1GB"},
			want:   []string{"Photos", ".Trashes", ".DS_Store", "note.txt", "backup.tmp"},
		},
		{
			name:   "invalid rules are ignored",
			filter: Filter{Patterns: []string{"["}, MinSize: "banana"},
			want:   []string{"Photos", ".Trashes", ".DS_Store", "movie.mp4", "note.txt", "backup.tmp"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := names(tc.filter.Apply(listing))
			if !equal(got, tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}
