package stage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/architeuthis-flux/jumperless-forge/internal/smoke"
)

const smokeExecTimeoutMs = 30000

func ensureSmoke(rec *Record) *SmokeInfo {
	if rec.Smoke == nil {
		rec.Smoke = &SmokeInfo{}
	}
	s := *rec.Smoke
	rec.Smoke = &s
	return rec.Smoke
}

// smokeStructureRunner verifies the fixed package layout for each target.
func smokeStructureRunner(_ context.Context, in Envelope, deps Deps) (Envelope, error) {
	if in.Meta == nil || in.Meta.Config == nil {
		return Envelope{}, fmt.Errorf("%s: missing config", StageSmokeStructure)
	}
	cfg := in.Meta.Config
	return runPerRecord(in, func(rec Record) (Record, *Error) {
		dir := packageDir(cfg.Build.OutDir, rec)
		check := smoke.Structure(dir, cfg.App.Name, rec.Target)
		ensureSmoke(&rec).Structure = check.OK
		if !check.OK {
			e := failRecord(&rec, StageSmokeStructure, check.Message)
			return rec, &e
		}
		verbosef(in.Meta, deps, "structure ok for %s", rec.Target)
		return rec, nil
	})
}

// smokeExecutableRunner runs the native executable with --help. A missing
// executable degrades when the package shipped pure-fallback.
func smokeExecutableRunner(ctx context.Context, in Envelope, deps Deps) (Envelope, error) {
	if in.Meta == nil || in.Meta.Config == nil {
		return Envelope{}, fmt.Errorf("%s: missing config", StageSmokeExecutable)
	}
	cfg := in.Meta.Config
	runTool := deps.RunTool()
	return runPerRecord(in, func(rec Record) (Record, *Error) {
		dir := packageDir(cfg.Build.OutDir, rec)
		check := smoke.Executable(dir, cfg.App.Name, rec.Target, func(path string) smoke.ExecResult {
			res := runTool(ctx, ToolSpec{
				Program:   path,
				Args:      []string{"--help"},
				Dir:       filepath.Dir(path),
				TimeoutMs: smokeExecTimeoutMs,
			})
			return smoke.ExecResult{ExitCode: res.ExitCode, TimedOut: res.TimedOut, ErrorMsg: res.ErrorMsg}
		})
		ensureSmoke(&rec).Executable = check.OK
		if !check.OK {
			e := failRecord(&rec, StageSmokeExecutable, check.Message)
			return rec, &e
		}
		verbosef(in.Meta, deps, "executable ok for %s", rec.Target)
		return rec, nil
	})
}

// smokeFallbackRunner verifies the fallback bundle is complete.
func smokeFallbackRunner(_ context.Context, in Envelope, deps Deps) (Envelope, error) {
	if in.Meta == nil || in.Meta.Config == nil {
		return Envelope{}, fmt.Errorf("%s: missing config", StageSmokeFallback)
	}
	cfg := in.Meta.Config
	return runPerRecord(in, func(rec Record) (Record, *Error) {
		dir := packageDir(cfg.Build.OutDir, rec)
		check := smoke.Fallback(dir, cfg.App.Name, filepath.Base(cfg.App.Entrypoint), filepath.Base(cfg.App.Requirements), rec.Target)
		ensureSmoke(&rec).Fallback = check.OK
		if !check.OK {
			e := failRecord(&rec, StageSmokeFallback, check.Message)
			return rec, &e
		}
		verbosef(in.Meta, deps, "fallback ok for %s", rec.Target)
		return rec, nil
	})
}

func init() {
	Register(StageSmokeStructure, smokeStructureRunner)
	Register(StageSmokeExecutable, smokeExecutableRunner)
	Register(StageSmokeFallback, smokeFallbackRunner)
}
