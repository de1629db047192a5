package stage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/architeuthis-flux/jumperless-forge/internal/macbundle"
	"github.com/architeuthis-flux/jumperless-forge/internal/target"
)

// bundleMacOSRunner wraps compiled macOS executables into application
// bundles. Non-macOS records pass through untouched.
func bundleMacOSRunner(_ context.Context, in Envelope, deps Deps) (Envelope, error) {
	if in.Meta == nil || in.Meta.Config == nil {
		return Envelope{}, fmt.Errorf("%s: missing config", StageBundleMacOS)
	}
	cfg := in.Meta.Config
	return runPerRecord(in, func(rec Record) (Record, *Error) {
		if rec.Target.Platform != target.MacOS || rec.Artifact == nil {
			return rec, nil
		}
		appPath, err := macbundle.Create(macbundle.Options{
			AppName:    cfg.App.Name,
			BundleID:   cfg.MacOS.BundleID,
			Version:    rec.Version,
			Executable: rec.Artifact.Path,
			IconPath:   cfg.Icons.MacOS,
			OutDir:     filepath.Dir(rec.Artifact.Path),
		})
		if err != nil {
			e := failRecord(&rec, StageBundleMacOS, err.Error())
			return rec, &e
		}
		artifact := *rec.Artifact
		artifact.Path = appPath
		artifact.Bundle = true
		rec.Artifact = &artifact
		verbosef(in.Meta, deps, "bundled %s -> %s", rec.Target, appPath)
		return rec, nil
	})
}

func init() { Register(StageBundleMacOS, bundleMacOSRunner) }
