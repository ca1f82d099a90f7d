package fsys

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Entry is one row of a directory listing.
type Entry struct {
	Name    string
	Size    int64
	Mode    fs.FileMode
	ModTime time.Time
	IsDir   bool
}

// FS is the filesystem capability a browser page is built on. One instance
// is created per storage device, rooted at the device's mount path.
type FS interface {
	// List returns the entries of dir, directories first.
	List(ctx context.Context, dir string) ([]Entry, error)
}

// Local serves directory listings for paths under a fixed root. Requests
// outside the root are rejected so a page can never escape its device.
type Local struct {
	root string
}

func NewLocal(root string) *Local {
	return &Local{root: filepath.Clean(root)}
}

func (l *Local) Root() string { return l.root }

func (l *Local) List(ctx context.Context, dir string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !l.contains(dir) {
		return nil, fmt.Errorf("%s is outside of %s", dir, l.root)
	}

	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	entries := make([]Entry, 0, len(dirents))
	for _, d := range dirents {
		entry := Entry{Name: d.Name(), IsDir: d.IsDir()}
		if info, err := d.Info(); err == nil {
			entry.Size = info.Size()
			entry.Mode = info.Mode()
			entry.ModTime = info.ModTime()
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

func (l *Local) contains(dir string) bool {
	rel, err := filepath.Rel(l.root, filepath.Clean(dir))
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel))
}
