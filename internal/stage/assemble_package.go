package stage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/architeuthis-flux/jumperless-forge/internal/assemble"
)

// packageDir returns the per-target package directory under the output root.
func packageDir(outDir string, rec Record) string {
	return filepath.Join(outDir, rec.Target.String())
}

// assemblePackageRunner lays out one package directory per target.
// Assembly runs even when the build stage produced no artifact: the
// fallback bundle alone is a complete, usable package.
func assemblePackageRunner(_ context.Context, in Envelope, deps Deps) (Envelope, error) {
	if in.Meta == nil || in.Meta.Config == nil {
		return Envelope{}, fmt.Errorf("%s: missing config", StageAssemblePackage)
	}
	cfg := in.Meta.Config
	return runPerRecordDegraded(in, func(rec Record) (Record, *Error) {
		artifactPath := ""
		if rec.Artifact != nil {
			artifactPath = rec.Artifact.Path
		}
		res, err := assemble.Assemble(assemble.Options{
			AppName:      cfg.App.Name,
			Entrypoint:   cfg.App.Entrypoint,
			Requirements: cfg.App.Requirements,
			Assets:       cfg.App.Assets,
			ArtifactPath: artifactPath,
			Target:       rec.Target,
			OutDir:       packageDir(cfg.Build.OutDir, rec),
		})
		if err != nil {
			e := failRecord(&rec, StageAssemblePackage, err.Error())
			return rec, &e
		}
		rec.Package = &PackageInfo{Dir: res.Dir, NativeIncluded: res.NativeIncluded}
		verbosef(in.Meta, deps, "assembled %s package in %s (native=%v)", rec.Target, res.Dir, res.NativeIncluded)
		return rec, nil
	})
}

func init() { Register(StageAssemblePackage, assemblePackageRunner) }
