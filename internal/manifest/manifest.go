// Package manifest writes the canonical package manifest: a deterministic
// YAML listing of every file in an assembled package. Two assemblies of
// identical inputs produce byte-identical manifests.
package manifest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// FileName is the manifest file written at the root of each package.
const FileName = "MANIFEST.yaml"

// Entry describes one file in a package.
type Entry struct {
	Path   string `yaml:"path"`
	Size   int64  `yaml:"size"`
	SHA256 string `yaml:"sha256"`
	Mode   string `yaml:"mode"`
}

// Manifest is the full canonical listing for one package directory.
type Manifest struct {
	App     string  `yaml:"app"`
	Target  string  `yaml:"target"`
	Version string  `yaml:"version"`
	Files   []Entry `yaml:"files"`
}

// Collect walks dir and builds the manifest with entries sorted by path.
// The manifest file itself is excluded.
func Collect(dir, app, tgt, version string) (Manifest, error) {
	m := Manifest{App: app, Target: tgt, Version: version}
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == FileName {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		sum, err := hashFile(p)
		if err != nil {
			return err
		}
		m.Files = append(m.Files, Entry{
			Path:   rel,
			Size:   info.Size(),
			SHA256: sum,
			Mode:   fmt.Sprintf("%04o", info.Mode().Perm()),
		})
		return nil
	})
	if err != nil {
		return Manifest{}, err
	}
	sort.Slice(m.Files, func(i, j int) bool { return m.Files[i].Path < m.Files[j].Path })
	return m, nil
}

// Marshal returns canonical YAML bytes with a trailing newline.
func Marshal(m Manifest) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	out := bytes.TrimRight(buf.Bytes(), "\n")
	out = append(out, '\n')
	return out, nil
}

// Write collects and writes the manifest for dir, returning its path.
func Write(dir, app, tgt, version string) (string, error) {
	m, err := Collect(dir, app, tgt, version)
	if err != nil {
		return "", err
	}
	b, err := Marshal(m)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Load reads and parses a manifest file.
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("invalid manifest: %v", err)
	}
	return m, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
