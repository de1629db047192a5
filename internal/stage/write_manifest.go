package stage

import (
	"context"
	"fmt"

	"github.com/architeuthis-flux/jumperless-forge/internal/manifest"
)

// writeManifestRunner writes the canonical package manifest for each
// assembled package.
func writeManifestRunner(_ context.Context, in Envelope, deps Deps) (Envelope, error) {
	if in.Meta == nil || in.Meta.Config == nil {
		return Envelope{}, fmt.Errorf("%s: missing config", StageWriteManifest)
	}
	cfg := in.Meta.Config
	return runPerRecord(in, func(rec Record) (Record, *Error) {
		if rec.Package == nil {
			return rec, nil
		}
		path, err := manifest.Write(rec.Package.Dir, cfg.App.Name, rec.Target.String(), rec.Version)
		if err != nil {
			e := failRecord(&rec, StageWriteManifest, err.Error())
			return rec, &e
		}
		pkg := *rec.Package
		pkg.ManifestPath = path
		rec.Package = &pkg
		verbosef(in.Meta, deps, "wrote manifest %s", path)
		return rec, nil
	})
}

func init() { Register(StageWriteManifest, writeManifestRunner) }
