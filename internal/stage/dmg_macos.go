package stage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/architeuthis-flux/jumperless-forge/internal/target"
)

// dmgMacOSRunner builds a disk image from each macOS package. The image
// is best-effort: a missing create-dmg tool or a failed run leaves the
// plain archive in place without failing the target.
func dmgMacOSRunner(ctx context.Context, in Envelope, deps Deps) (Envelope, error) {
	if in.Meta == nil || in.Meta.Config == nil {
		return Envelope{}, fmt.Errorf("%s: missing config", StageDMGMacOS)
	}
	cfg := in.Meta.Config
	if !cfg.MacOS.DMG {
		return in, nil
	}
	runTool := deps.RunTool()
	return runPerRecord(in, func(rec Record) (Record, *Error) {
		if rec.Target.Platform != target.MacOS || rec.Package == nil {
			return rec, nil
		}
		avail := runTool(ctx, ToolSpec{
			Program:   "create-dmg",
			Args:      []string{"--version"},
			TimeoutMs: cfg.Build.TimeoutMs,
		})
		if avail.Failed() {
			verbosef(in.Meta, deps, "create-dmg not available, skipping disk image for %s", rec.Target)
			return rec, nil
		}
		name := fmt.Sprintf("%s-macOS-%s.dmg", cfg.App.Name, rec.Target.Arch)
		out := filepath.Join(cfg.Build.OutDir, name)
		staging := filepath.Join(cfg.Build.OutDir, "dmg-staging-"+string(rec.Target.Arch))
		if err := stageDMGInput(rec.Package.Dir, staging); err != nil {
			verbosef(in.Meta, deps, "disk image staging failed for %s: %v", rec.Target, err)
			return rec, nil
		}
		defer func() { _ = os.RemoveAll(staging) }()
		res := runTool(ctx, ToolSpec{
			Program: "create-dmg",
			Args: []string{
				"--volname", cfg.App.Name,
				"--window-size", "600", "400",
				"--icon-size", "100",
				out,
				staging,
			},
			TimeoutMs: cfg.Build.TimeoutMs,
		})
		if res.Failed() {
			verbosef(in.Meta, deps, "disk image creation failed for %s: %s", rec.Target, res.Diagnostic("create-dmg"))
			return rec, nil
		}
		rec.DMG = &ArchiveInfo{Name: name, Path: out}
		verbosef(in.Meta, deps, "disk image %s -> %s", rec.Target, out)
		return rec, nil
	})
}

// stageDMGInput copies the package into a staging directory whose entry
// names carry no spaces; create-dmg mishandles paths with spaces.
func stageDMGInput(pkgDir, staging string) error {
	if err := os.RemoveAll(staging); err != nil {
		return err
	}
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return err
	}
	entries, err := os.ReadDir(pkgDir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		src := filepath.Join(pkgDir, e.Name())
		dst := filepath.Join(staging, strings.ReplaceAll(e.Name(), " ", "_"))
		if e.IsDir() {
			if err := os.CopyFS(dst, os.DirFS(src)); err != nil {
				return err
			}
			continue
		}
		if err := copyStagedFile(src, dst); err != nil {
			return err
		}
	}
	return nil
}

func copyStagedFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func init() { Register(StageDMGMacOS, dmgMacOSRunner) }
