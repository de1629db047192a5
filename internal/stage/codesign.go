package stage

import (
	"context"
	"fmt"

	"github.com/architeuthis-flux/jumperless-forge/internal/target"
)

// codesignRunner signs macOS application bundles. Signing is
// configuration-gated: without an identity the stage is a no-op, which is
// not an error.
func codesignRunner(ctx context.Context, in Envelope, deps Deps) (Envelope, error) {
	if in.Meta == nil || in.Meta.Config == nil {
		return Envelope{}, fmt.Errorf("%s: missing config", StageCodesign)
	}
	cfg := in.Meta.Config
	if cfg.MacOS.Signing.Identity == "" {
		return in, nil
	}
	runTool := deps.RunTool()
	return runPerRecord(in, func(rec Record) (Record, *Error) {
		if rec.Target.Platform != target.MacOS || rec.Artifact == nil || !rec.Artifact.Bundle {
			return rec, nil
		}
		res := runTool(ctx, ToolSpec{
			Program: "codesign",
			Args: []string{
				"--deep", "--force",
				"--options", "runtime",
				"--sign", cfg.MacOS.Signing.Identity,
				rec.Artifact.Path,
			},
			TimeoutMs: cfg.Build.TimeoutMs,
		})
		if res.Failed() {
			e := failRecord(&rec, StageCodesign, res.Diagnostic("codesign"))
			return rec, &e
		}
		artifact := *rec.Artifact
		artifact.Signed = true
		rec.Artifact = &artifact
		verbosef(in.Meta, deps, "signed %s", rec.Artifact.Path)
		return rec, nil
	})
}

// notaryPasswordVar carries the app-specific password into the notarytool
// process. notarytool only reads credentials named on --password; the
// @env: indirection keeps the value out of argv.
const notaryPasswordVar = "NOTARY_PASSWORD"

// notarizeRunner submits signed bundles for trust validation. Gated on
// notarization credentials; skipped silently when absent.
func notarizeRunner(ctx context.Context, in Envelope, deps Deps) (Envelope, error) {
	if in.Meta == nil || in.Meta.Config == nil {
		return Envelope{}, fmt.Errorf("%s: missing config", StageNotarize)
	}
	cfg := in.Meta.Config
	if cfg.MacOS.Notarize.AppleID == "" {
		return in, nil
	}
	runTool := deps.RunTool()
	return runPerRecord(in, func(rec Record) (Record, *Error) {
		if rec.Target.Platform != target.MacOS || rec.Artifact == nil || !rec.Artifact.Signed {
			return rec, nil
		}
		zipPath := rec.Artifact.Path + ".notarize.zip"
		res := runTool(ctx, ToolSpec{
			Program:   "ditto",
			Args:      []string{"-c", "-k", "--keepParent", rec.Artifact.Path, zipPath},
			TimeoutMs: cfg.Build.TimeoutMs,
		})
		if res.Failed() {
			e := failRecord(&rec, StageNotarize, res.Diagnostic("ditto"))
			return rec, &e
		}
		args := []string{
			"notarytool", "submit", zipPath,
			"--apple-id", cfg.MacOS.Notarize.AppleID,
			"--password", "@env:" + notaryPasswordVar,
			"--wait",
		}
		if cfg.MacOS.Signing.TeamID != "" {
			args = append(args, "--team-id", cfg.MacOS.Signing.TeamID)
		}
		res = runTool(ctx, ToolSpec{
			Program:   "xcrun",
			Args:      args,
			Env:       map[string]string{notaryPasswordVar: cfg.MacOS.Notarize.Password},
			TimeoutMs: cfg.Build.TimeoutMs,
		})
		if res.Failed() {
			e := failRecord(&rec, StageNotarize, res.Diagnostic("notarytool"))
			return rec, &e
		}
		// Staple so the bundle validates offline.
		res = runTool(ctx, ToolSpec{
			Program:   "xcrun",
			Args:      []string{"stapler", "staple", rec.Artifact.Path},
			TimeoutMs: cfg.Build.TimeoutMs,
		})
		if res.Failed() {
			e := failRecord(&rec, StageNotarize, res.Diagnostic("stapler"))
			return rec, &e
		}
		artifact := *rec.Artifact
		artifact.Notarized = true
		rec.Artifact = &artifact
		verbosef(in.Meta, deps, "notarized %s", rec.Artifact.Path)
		return rec, nil
	})
}

func init() {
	Register(StageCodesign, codesignRunner)
	Register(StageNotarize, notarizeRunner)
}
