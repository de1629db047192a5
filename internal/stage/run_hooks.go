package stage

import (
	"context"
	"fmt"

	"github.com/architeuthis-flux/jumperless-forge/internal/hooks"
)

// runHooksRunner executes the configured Lua packaging hooks against each
// assembled package directory, pre-package first, then post-package.
// Hooks run after assembly and before the manifest is written, so any
// amendments they make are covered by the manifest and archive.
func runHooksRunner(_ context.Context, in Envelope, deps Deps) (Envelope, error) {
	if in.Meta == nil || in.Meta.Config == nil {
		return Envelope{}, fmt.Errorf("%s: missing config", StageRunHooks)
	}
	cfg := in.Meta.Config
	scripts := make([]string, 0, 2)
	if cfg.Hooks.PrePackage != "" {
		scripts = append(scripts, cfg.Hooks.PrePackage)
	}
	if cfg.Hooks.PostPackage != "" {
		scripts = append(scripts, cfg.Hooks.PostPackage)
	}
	if len(scripts) == 0 {
		return in, nil
	}
	sb := hooks.Sandbox{
		TimeoutMs:        cfg.Hooks.TimeoutMs,
		MemoryLimitBytes: cfg.Hooks.MemoryLimitBytes,
	}
	return runPerRecord(in, func(rec Record) (Record, *Error) {
		if rec.Package == nil {
			return rec, nil
		}
		env := hooks.Env{
			App:     cfg.App.Name,
			Version: rec.Version,
			Target:  rec.Target,
			Dir:     rec.Package.Dir,
		}
		for _, script := range scripts {
			if err := hooks.Run(script, env, sb); err != nil {
				e := failRecord(&rec, StageRunHooks, err.Error())
				return rec, &e
			}
			verbosef(in.Meta, deps, "ran hook %s for %s", script, rec.Target)
		}
		return rec, nil
	})
}

func init() { Register(StageRunHooks, runHooksRunner) }
