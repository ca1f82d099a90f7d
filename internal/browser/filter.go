package browser

import (
	"regexp"
	"strings"

	"github.com/docker/go-units"
	"github.com/gobwas/glob"
	"github.com/usbdeck/usbdeck/internal/fsys"
)

// Filter hides entries from a directory listing. Size bounds use human
// notation ("1KB", "10GB"); empty strings mean unbounded.
type Filter struct {
	HideHidden bool
	Files      []string
	Patterns   []string
	Globs      []string
	MinSize    string
	MaxSize    string
}

// Apply returns the entries that pass every rule. Directories are never
// hidden by size, only by name rules.
func (f Filter) Apply(entries []fsys.Entry) []fsys.Entry {
	filtered := make([]fsys.Entry, 0, len(entries))
	for _, entry := range entries {
		if f.rejected(entry) {
			continue
		}
		filtered = append(filtered, entry)
	}
	return filtered
}

func (f Filter) rejected(entry fsys.Entry) bool {
	if f.HideHidden && strings.HasPrefix(entry.Name, ".") {
		return true
	}
	for _, name := range f.Files {
		if entry.Name == name {
			return true
		}
	}
	for _, pattern := range f.Patterns {
		if matched, err := regexp.MatchString(pattern, entry.Name); err == nil && matched {
			return true
		}
	}
	for _, g := range f.Globs {
		if compiled, err := glob.Compile(g); err == nil && compiled.Match(entry.Name) {
			return true
		}
	}
	if entry.IsDir {
		return false
	}
	if f.MinSize != "" {
		if min, err := units.FromHumanSize(f.MinSize); err == nil && entry.Size < min {
			return true
		}
	}
	if f.MaxSize != "" {
		if max, err := units.FromHumanSize(f.MaxSize); err == nil && max < entry.Size {
			return true
		}
	}
	return false
}
