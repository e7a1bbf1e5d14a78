package crawler

import (
	"io/fs"
	"path/filepath"

	"weave/internal/classify"
)

// Crawler scans a directory for classifiable source files.
type Crawler struct {
	reg     *classify.Registry
	ignored []string
}

// New creates a new crawler instance.
func New(reg *classify.Registry) *Crawler {
	return &Crawler{
		reg:     reg,
		ignored: []string{".git", "vendor", "node_modules", "testdata"},
	}
}

// ScanSources walks the root directory and streams the path of every file
// whose extension is recognized by the registry, preventing large memory
// buildup on big trees.
func (c *Crawler) ScanSources(root string, onFile func(path string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip ignored directories
		if d.IsDir() {
			for _, ign := range c.ignored {
				if d.Name() == ign {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if !c.reg.Recognized(filepath.Ext(d.Name())) {
			return nil
		}

		return onFile(path)
	})
}
