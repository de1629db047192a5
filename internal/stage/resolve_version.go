package stage

import (
	"context"
	"fmt"

	"github.com/architeuthis-flux/jumperless-forge/internal/gitver"
)

// resolveVersionRunner determines the application version once per run
// and stamps it onto every record.
func resolveVersionRunner(_ context.Context, in Envelope, deps Deps) (Envelope, error) {
	if in.Meta == nil || in.Meta.Config == nil {
		return Envelope{}, fmt.Errorf("%s: missing config", StageResolveVersion)
	}
	out := in
	version := in.Meta.Version
	if version == "" {
		if in.Meta.Tag != "" && gitver.IsReleaseTag(in.Meta.Tag) {
			version = gitver.Strip(in.Meta.Tag)
		} else {
			version = gitver.Resolve(".", in.Meta.Config.App.Entrypoint)
		}
	}
	meta := *in.Meta
	meta.Version = version
	out.Meta = &meta
	out.Records = append([]Record(nil), in.Records...)
	for i := range out.Records {
		out.Records[i].Version = version
	}
	verbosef(out.Meta, deps, "resolved version %s", version)
	return out, nil
}

func init() { Register(StageResolveVersion, resolveVersionRunner) }
