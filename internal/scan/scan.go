package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dkoh/mend/internal/batch"
)

// Options filter which files a directory walk collects. Explicitly listed
// files bypass all filters.
type Options struct {
	// Extensions whitelists file suffixes, e.g. ".cs". Empty means
	// default to .cs.
	Extensions []string
	// Exclude holds glob patterns matched against both the file's base
	// name and its walk-relative path.
	Exclude []string
	// MaxFileBytes skips files larger than this. Zero means no cap.
	MaxFileBytes int64
}

func (o Options) extensions() []string {
	if len(o.Extensions) == 0 {
		return []string{".cs"}
	}
	return o.Extensions
}

// Collect expands paths into an ordered item list. A path that is a file
// becomes one item; a path that is a directory is walked. A missing path
// is an error — silently analyzing nothing would mask a typo.
func Collect(paths []string, opts Options) ([]batch.Item, error) {
	var items []batch.Item
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			items = append(items, batch.Item{Path: p})
			continue
		}
		collected, err := walkDir(p, opts)
		if err != nil {
			return nil, err
		}
		items = append(items, collected...)
	}
	return items, nil
}

func walkDir(root string, opts Options) ([]batch.Item, error) {
	var items []batch.Item
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !hasExtension(name, opts.extensions()) {
			return nil
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			rel = path
		}
		if excluded(name, rel, opts.Exclude) {
			return nil
		}
		if opts.MaxFileBytes > 0 {
			info, ierr := d.Info()
			if ierr == nil && info.Size() > opts.MaxFileBytes {
				return nil
			}
		}
		items = append(items, batch.Item{Path: path})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return items, nil
}

func hasExtension(name string, extensions []string) bool {
	for _, ext := range extensions {
		if strings.EqualFold(filepath.Ext(name), ext) {
			return true
		}
	}
	return false
}

func excluded(base, rel string, patterns []string) bool {
	for _, pat := range patterns {
		if ok, err := filepath.Match(pat, base); err == nil && ok {
			return true
		}
		if ok, err := filepath.Match(pat, rel); err == nil && ok {
			return true
		}
	}
	return false
}
