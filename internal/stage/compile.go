package stage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/architeuthis-flux/jumperless-forge/internal/config"
	"github.com/architeuthis-flux/jumperless-forge/internal/target"
	"github.com/architeuthis-flux/jumperless-forge/internal/winver"
)

// compileRunner invokes the native compiler once per target in parallel.
// A failed compile marks only its own record; sibling targets proceed.
func compileRunner(ctx context.Context, in Envelope, deps Deps) (Envelope, error) {
	if in.Meta == nil || in.Meta.Config == nil {
		return Envelope{}, fmt.Errorf("%s: missing config", StageCompile)
	}
	cfg := in.Meta.Config
	runTool := deps.RunTool()
	return runPerRecord(in, func(rec Record) (Record, *Error) {
		artifact, iconUsed, err := compileTarget(ctx, cfg, rec, runTool)
		if err != nil {
			e := failRecord(&rec, StageCompile, err.Error())
			return rec, &e
		}
		rec.Artifact = &ArtifactInfo{Path: artifact, IconUsed: iconUsed}
		verbosef(in.Meta, deps, "compiled %s -> %s", rec.Target, artifact)
		return rec, nil
	})
}

func compileTarget(ctx context.Context, cfg *config.Config, rec Record, runTool ToolRunner) (string, bool, error) {
	distDir := filepath.Join(cfg.Build.DistDir, rec.Target.String())
	if err := os.MkdirAll(distDir, 0o755); err != nil {
		return "", false, fmt.Errorf("creating dist dir: %v", err)
	}

	args := []string{
		"--onefile",
		"--name", cfg.App.Name,
		"--distpath", distDir,
		"--workpath", filepath.Join(distDir, "build"),
		"--specpath", distDir,
		"--noconfirm",
	}

	iconUsed := false
	if icon := cfg.IconFor(rec.Target); icon != "" {
		if _, err := os.Stat(icon); err == nil {
			args = append(args, "--icon", icon)
			iconUsed = true
		}
		// Missing icon: proceed without one rather than failing the build.
	}

	if rec.Target.Platform == target.Windows {
		infoPath := filepath.Join(distDir, "version_info.txt")
		internalName := baseName(cfg.App.Entrypoint)
		if err := winver.Write(infoPath, cfg.App.Name, internalName, rec.Version); err != nil {
			return "", false, fmt.Errorf("writing version info: %v", err)
		}
		args = append(args, "--version-file", infoPath)
	}

	args = append(args, cfg.App.Entrypoint)

	res := runTool(ctx, ToolSpec{
		Program:   "pyinstaller",
		Args:      args,
		TimeoutMs: cfg.Build.TimeoutMs,
	})
	if res.Failed() {
		return "", false, fmt.Errorf("%s", res.Diagnostic("pyinstaller"))
	}

	artifact := filepath.Join(distDir, rec.Target.ExecutableName(cfg.App.Name))
	return artifact, iconUsed, nil
}

func baseName(path string) string {
	b := filepath.Base(path)
	return b[:len(b)-len(filepath.Ext(b))]
}

func init() { Register(StageCompile, compileRunner) }
