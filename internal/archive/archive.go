// Package archive compresses assembled packages into their
// platform-conventional formats: tarballs for Linux, zips elsewhere.
// Output is deterministic: entries are sorted and timestamps fixed, so
// archiving identical trees twice yields identical bytes.
package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// fixedTime stamps every archive entry so re-runs are byte-identical.
var fixedTime = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

type entry struct {
	rel  string
	path string
	mode fs.FileMode
}

func collectEntries(dir string) ([]entry, error) {
	var entries []entry
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
		info, err := d.Info()
		if err != nil {
			return err
		}
		entries = append(entries, entry{rel: filepath.ToSlash(rel), path: p, mode: info.Mode()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].rel < entries[j].rel })
	return entries, nil
}

// CreateZip archives dir into a zip file at out. Entry names are relative
// to dir.
func CreateZip(dir, out string) error {
	entries, err := collectEntries(dir)
	if err != nil {
		return err
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	zw := zip.NewWriter(f)
	for _, e := range entries {
		hdr := &zip.FileHeader{
			Name:     e.rel,
			Method:   zip.Deflate,
			Modified: fixedTime,
		}
		hdr.SetMode(e.mode)
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		if err := copyFile(w, e.path); err != nil {
			return err
		}
	}
	return zw.Close()
}

// CreateTarGz archives dir into a gzipped tarball at out. Entry names are
// prefixed with prefix, matching the extracted top-level directory
// convention for tarballs.
func CreateTarGz(dir, out, prefix string) error {
	entries, err := collectEntries(dir)
	if err != nil {
		return err
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	gw, err := gzip.NewWriterLevel(f, gzip.BestCompression)
	if err != nil {
		return err
	}
	tw := tar.NewWriter(gw)
	for _, e := range entries {
		name := e.rel
		if prefix != "" {
			name = strings.TrimSuffix(prefix, "/") + "/" + name
		}
		info, err := os.Stat(e.path)
		if err != nil {
			return err
		}
		hdr := &tar.Header{
			Name:    name,
			Mode:    int64(e.mode.Perm()),
			Size:    info.Size(),
			ModTime: fixedTime,
			Format:  tar.FormatUSTAR,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if err := copyFile(tw, e.path); err != nil {
			return err
		}
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return gw.Close()
}

func copyFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}
