// Package assemble lays out one distributable package directory per
// build target: the native artifact when the build produced one, a
// generated README, and the always-present interpreter fallback bundle.
package assemble

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/architeuthis-flux/jumperless-forge/internal/target"
)

// Options bundles the inputs for one package assembly.
type Options struct {
	AppName      string
	Entrypoint   string // path to the interpreter entry source
	Requirements string // path to the dependency manifest, may be absent
	Assets       string // path to the assets directory, may be absent
	ArtifactPath string // native executable or .app bundle; "" when build failed
	Target       target.Target
	OutDir       string // the per-platform package directory to create
}

// Result reports what the assembler produced.
type Result struct {
	Dir            string
	FallbackDir    string
	NativeIncluded bool
}

// FallbackDirName returns the name of the fallback bundle directory.
func FallbackDirName(app string) string { return app + " Python" }

// Assemble builds the package directory. It succeeds even when
// ArtifactPath is empty or missing: the fallback bundle guarantees every
// platform a usable package. Assembly is idempotent; the output directory
// is recreated from scratch on every run.
func Assemble(opts Options) (Result, error) {
	if err := os.RemoveAll(opts.OutDir); err != nil {
		return Result{}, fmt.Errorf("clearing package dir: %w", err)
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("creating package dir: %w", err)
	}

	res := Result{Dir: opts.OutDir}

	if opts.ArtifactPath != "" {
		included, err := placeArtifact(opts)
		if err != nil {
			return Result{}, err
		}
		res.NativeIncluded = included
	}

	fallbackDir := filepath.Join(opts.OutDir, FallbackDirName(opts.AppName))
	if err := assembleFallback(opts, fallbackDir); err != nil {
		return Result{}, err
	}
	res.FallbackDir = fallbackDir

	readme := platformReadme(opts.AppName, opts.Target)
	if err := os.WriteFile(filepath.Join(opts.OutDir, "README.md"), []byte(readme), 0o644); err != nil {
		return Result{}, fmt.Errorf("writing package readme: %w", err)
	}
	return res, nil
}

// placeArtifact copies the native artifact to the package top level.
// A missing artifact is a soft degrade, not an error.
func placeArtifact(opts Options) (bool, error) {
	info, err := os.Stat(opts.ArtifactPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking artifact: %w", err)
	}
	if info.IsDir() {
		// macOS .app bundle
		dst := filepath.Join(opts.OutDir, filepath.Base(opts.ArtifactPath))
		if err := copyTree(opts.ArtifactPath, dst); err != nil {
			return false, fmt.Errorf("copying app bundle: %w", err)
		}
		return true, nil
	}
	name := opts.Target.ExecutableName(opts.AppName)
	dst := filepath.Join(opts.OutDir, name)
	mode := fs.FileMode(0o755)
	if opts.Target.Platform == target.Windows {
		mode = 0o644
	}
	if err := copyFileMode(opts.ArtifactPath, dst, mode); err != nil {
		return false, fmt.Errorf("copying executable: %w", err)
	}
	return true, nil
}

// assembleFallback lays out the interpreter fallback bundle. Every file
// the launcher needs must land here: the bundle is independently runnable
// without the native executable.
func assembleFallback(opts Options, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating fallback dir: %w", err)
	}
	if opts.Entrypoint != "" {
		if err := copyIfExists(opts.Entrypoint, filepath.Join(dir, filepath.Base(opts.Entrypoint)), 0o644); err != nil {
			return err
		}
	}
	if opts.Requirements != "" {
		if err := copyIfExists(opts.Requirements, filepath.Join(dir, filepath.Base(opts.Requirements)), 0o644); err != nil {
			return err
		}
	}
	if opts.Assets != "" {
		if st, err := os.Stat(opts.Assets); err == nil && st.IsDir() {
			if err := copyTree(opts.Assets, filepath.Join(dir, "assets")); err != nil {
				return fmt.Errorf("copying assets: %w", err)
			}
		}
	}
	if err := writeLaunchers(dir, opts.AppName, filepath.Base(opts.Entrypoint), opts.Target); err != nil {
		return err
	}
	readme := fallbackReadme(opts.AppName, filepath.Base(opts.Entrypoint), opts.Target)
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte(readme), 0o644); err != nil {
		return fmt.Errorf("writing fallback readme: %w", err)
	}
	return nil
}

func copyIfExists(src, dst string, mode fs.FileMode) error {
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return copyFileMode(src, dst, mode)
}

func copyFileMode(src, dst string, mode fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		out := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(out, 0o755)
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return copyFileMode(p, out, info.Mode().Perm())
	})
}

// scriptBaseName converts an app name into the launcher script base name,
// e.g. "Jumperless" -> "run_jumperless".
func scriptBaseName(app string) string {
	return "run_" + strings.ToLower(strings.ReplaceAll(app, " ", "_"))
}
