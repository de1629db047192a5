package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/architeuthis-flux/jumperless-forge/internal/target"
)

// compileCUE loads and compiles a CUE file at the given path.
func compileCUE(path string) (cue.Value, error) {
	if filepath.Ext(path) != ".cue" {
		return cue.Value{}, errors.New("unsupported config format: expected .cue")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cue.Value{}, fmt.Errorf("failed to read config: %w", err)
	}
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data)
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("invalid config: %v", err)
	}
	return v, nil
}

func requireStringField(v cue.Value, name string) error {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return fmt.Errorf("missing required field: %s", name)
	}
	if f.Kind() != cue.StringKind {
		return fmt.Errorf("invalid type for field: %s (expected string)", name)
	}
	return nil
}

func decodeString(v cue.Value, path string, dst *string) {
	f := v.LookupPath(cue.ParsePath(path))
	if f.Exists() && f.Kind() == cue.StringKind {
		_ = f.Decode(dst)
	}
}

func decodeInt(v cue.Value, path string, dst *int) {
	f := v.LookupPath(cue.ParsePath(path))
	if f.Exists() && f.Kind() == cue.IntKind {
		_ = f.Decode(dst)
	}
}

func decodeBool(v cue.Value, path string, dst *bool) {
	f := v.LookupPath(cue.ParsePath(path))
	if f.Exists() && f.Kind() == cue.BoolKind {
		_ = f.Decode(dst)
	}
}

func parseApp(v cue.Value, cfg *Config) error {
	av := v.LookupPath(cue.ParsePath("app"))
	if !av.Exists() {
		return nil
	}
	decodeString(av, "name", &cfg.App.Name)
	decodeString(av, "entrypoint", &cfg.App.Entrypoint)
	decodeString(av, "requirements", &cfg.App.Requirements)
	decodeString(av, "assets", &cfg.App.Assets)
	return nil
}

func parseBuild(v cue.Value, cfg *Config) {
	bv := v.LookupPath(cue.ParsePath("build"))
	if !bv.Exists() {
		return
	}
	decodeString(bv, "distDir", &cfg.Build.DistDir)
	decodeString(bv, "outDir", &cfg.Build.OutDir)
	decodeInt(bv, "timeoutMs", &cfg.Build.TimeoutMs)
	decodeInt(bv, "workers", &cfg.Build.Workers)
	decodeString(bv, "interpreter", &cfg.Build.Interpreter)
}

func parseIcons(v cue.Value, cfg *Config) {
	iv := v.LookupPath(cue.ParsePath("icons"))
	if !iv.Exists() {
		return
	}
	decodeString(iv, "linux", &cfg.Icons.Linux)
	decodeString(iv, "macos", &cfg.Icons.MacOS)
	decodeString(iv, "windows", &cfg.Icons.Windows)
}

func parseTargets(v cue.Value, cfg *Config) error {
	tv := v.LookupPath(cue.ParsePath("targets"))
	if !tv.Exists() {
		return nil
	}
	if tv.Kind() != cue.ListKind {
		return fmt.Errorf("invalid type for field: targets (expected list)")
	}
	var raw []struct {
		Platform string `json:"platform"`
		Arch     string `json:"arch"`
		Required *bool  `json:"required"`
	}
	if err := tv.Decode(&raw); err != nil {
		return fmt.Errorf("invalid value for targets: %v", err)
	}
	cfg.Targets = cfg.Targets[:0]
	for _, r := range raw {
		t, err := target.Parse(r.Platform, r.Arch)
		if err != nil {
			return err
		}
		required := true
		if r.Required != nil {
			required = *r.Required
		}
		cfg.Targets = append(cfg.Targets, TargetSpec{Target: t, Required: required})
	}
	return nil
}

func parseMacOS(v cue.Value, cfg *Config) {
	mv := v.LookupPath(cue.ParsePath("macos"))
	if !mv.Exists() {
		return
	}
	decodeString(mv, "bundleID", &cfg.MacOS.BundleID)
	decodeBool(mv, "dmg", &cfg.MacOS.DMG)
	decodeString(mv, "signing.identity", &cfg.MacOS.Signing.Identity)
	decodeString(mv, "signing.teamID", &cfg.MacOS.Signing.TeamID)
	decodeString(mv, "notarize.appleID", &cfg.MacOS.Notarize.AppleID)
	decodeString(mv, "notarize.password", &cfg.MacOS.Notarize.Password)
}

func parseHooks(v cue.Value, cfg *Config) {
	hv := v.LookupPath(cue.ParsePath("hooks"))
	if !hv.Exists() {
		return
	}
	decodeString(hv, "prePackage", &cfg.Hooks.PrePackage)
	decodeString(hv, "postPackage", &cfg.Hooks.PostPackage)
	decodeInt(hv, "timeoutMs", &cfg.Hooks.TimeoutMs)
	decodeInt(hv, "memoryLimitBytes", &cfg.Hooks.MemoryLimitBytes)
}

func parseRelease(v cue.Value, cfg *Config) {
	rv := v.LookupPath(cue.ParsePath("release"))
	if !rv.Exists() {
		return
	}
	decodeString(rv, "repo", &cfg.Release.Repo)
	decodeBool(rv, "draft", &cfg.Release.Draft)
}

func parseUI(v cue.Value, cfg *Config) {
	uv := v.LookupPath(cue.ParsePath("ui"))
	if !uv.Exists() {
		return
	}
	decodeBool(uv, "progress", &cfg.UI.Progress)
	decodeInt(uv, "progressIntervalMs", &cfg.UI.ProgressIntervalMs)
}
