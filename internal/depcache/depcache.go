// Package depcache is a content-addressed cache of installed dependency
// sets, keyed by a hash of the dependency manifest. Population is
// idempotent: entries are staged in a temp directory and renamed into
// place, so concurrent writers racing on one key both succeed and
// last-writer-wins is harmless.
package depcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Cache stores dependency download directories under a root.
type Cache struct {
	Root string
}

// New creates a cache rooted at dir.
func New(dir string) *Cache { return &Cache{Root: dir} }

// Key hashes the dependency manifest at path.
func Key(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("reading dependency manifest: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing dependency manifest: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Dir returns the canonical entry directory for key.
func (c *Cache) Dir(key string) string {
	return filepath.Join(c.Root, key[:2], key)
}

// Has reports whether an entry for key is fully populated.
func (c *Cache) Has(key string) bool {
	_, err := os.Stat(c.Dir(key))
	return err == nil
}

// Populate fills the entry for key by calling fill with a staging
// directory, then renames the staging directory into place. An entry that
// already exists is left alone; a concurrent winner is not an error.
func (c *Cache) Populate(key string, fill func(stagingDir string) error) error {
	entryDir := c.Dir(key)
	if c.Has(key) {
		return nil
	}
	parent := filepath.Dir(entryDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	tmpDir, err := os.MkdirTemp(parent, "tmp-"+key[:8]+"-")
	if err != nil {
		return fmt.Errorf("creating temp cache entry dir: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.RemoveAll(tmpDir)
		}
	}()
	if err := fill(tmpDir); err != nil {
		return err
	}
	if err := os.Rename(tmpDir, entryDir); err != nil {
		// A concurrent writer won the race; contents are content-addressed,
		// so the existing entry is equivalent.
		if c.Has(key) {
			return nil
		}
		return fmt.Errorf("committing cache entry: %w", err)
	}
	committed = true
	return nil
}

// Size returns the total byte size of the entry for key.
func (c *Cache) Size(key string) (int64, error) {
	var total int64
	err := filepath.WalkDir(c.Dir(key), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	return total, err
}
