package stage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/architeuthis-flux/jumperless-forge/internal/archive"
	"github.com/architeuthis-flux/jumperless-forge/internal/target"
)

// archiveRunner compresses each assembled package into its
// platform-conventional archive under the output root.
func archiveRunner(_ context.Context, in Envelope, deps Deps) (Envelope, error) {
	if in.Meta == nil || in.Meta.Config == nil {
		return Envelope{}, fmt.Errorf("%s: missing config", StageArchive)
	}
	cfg := in.Meta.Config
	return runPerRecord(in, func(rec Record) (Record, *Error) {
		if rec.Package == nil {
			return rec, nil
		}
		name := rec.Target.ArchiveName(cfg.App.Name)
		out := filepath.Join(cfg.Build.OutDir, name)
		var err error
		if rec.Target.Platform == target.Linux {
			prefix := strings.TrimSuffix(name, rec.Target.ArchiveExt())
			err = archive.CreateTarGz(rec.Package.Dir, out, prefix)
		} else {
			err = archive.CreateZip(rec.Package.Dir, out)
		}
		if err != nil {
			e := failRecord(&rec, StageArchive, err.Error())
			return rec, &e
		}
		rec.Archive = &ArchiveInfo{Name: name, Path: out}
		verbosef(in.Meta, deps, "archived %s -> %s", rec.Target, out)
		return rec, nil
	})
}

func init() { Register(StageArchive, archiveRunner) }
