// Package config loads and validates the forge pipeline configuration
// from a CUE file.
package config

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"

	"github.com/architeuthis-flux/jumperless-forge/internal/target"
)

// App describes the application being packaged.
type App struct {
	Name         string
	Entrypoint   string
	Requirements string
	Assets       string
}

// Build holds build-stage settings.
type Build struct {
	DistDir     string
	OutDir      string
	TimeoutMs   int
	Workers     int
	Interpreter string
}

// Icons maps platform names to icon file paths. Missing entries and
// missing files degrade to an icon-less build.
type Icons struct {
	Linux   string
	MacOS   string
	Windows string
}

// Signing holds macOS code-signing settings. Empty identity disables signing.
type Signing struct {
	Identity string
	TeamID   string
}

// Notarize holds macOS notarization settings. Empty AppleID disables it.
type Notarize struct {
	AppleID  string
	Password string
}

// MacOS groups macOS-only build settings. DMG enables best-effort disk
// image creation for macOS packages; a missing create-dmg tool skips it.
type MacOS struct {
	BundleID string
	DMG      bool
	Signing  Signing
	Notarize Notarize
}

// Hooks configures optional Lua packaging hooks.
type Hooks struct {
	PrePackage       string
	PostPackage      string
	TimeoutMs        int
	MemoryLimitBytes int
}

// Release holds release-publisher settings.
type Release struct {
	Repo  string
	Draft bool
}

// UI holds progress reporting settings.
type UI struct {
	Progress           bool
	ProgressIntervalMs int
}

// TargetSpec selects one matrix entry and whether its failure fails the run.
type TargetSpec struct {
	Target   target.Target
	Required bool
}

// Config is the parsed pipeline configuration.
type Config struct {
	ConfigVersion string
	App           App
	Build         Build
	Icons         Icons
	Targets       []TargetSpec
	MacOS         MacOS
	Hooks         Hooks
	Release       Release
	UI            UI
}

// Environment variable names for externally supplied secrets. Secrets are
// never read from the config file and never written back out.
const (
	EnvSignIdentity   = "JLFORGE_SIGN_IDENTITY"
	EnvSignTeamID     = "JLFORGE_SIGN_TEAM_ID"
	EnvNotaryAppleID  = "JLFORGE_NOTARY_APPLE_ID"
	EnvNotaryPassword = "JLFORGE_NOTARY_PASSWORD"
	EnvGitHubToken    = "JLFORGE_GITHUB_TOKEN"
)

// Load parses the CUE config at path, applies defaults and environment
// secret overlays, and validates the result.
func Load(path string) (Config, error) {
	v, err := compileCUE(path)
	if err != nil {
		return Config{}, err
	}
	if err := requireStringField(v, "configVersion"); err != nil {
		return Config{}, err
	}
	cfg := defaults()
	if err := v.LookupPath(cue.ParsePath("configVersion")).Decode(&cfg.ConfigVersion); err != nil {
		return Config{}, fmt.Errorf("invalid value for configVersion: %v", err)
	}
	if err := parseApp(v, &cfg); err != nil {
		return Config{}, err
	}
	parseBuild(v, &cfg)
	parseIcons(v, &cfg)
	if err := parseTargets(v, &cfg); err != nil {
		return Config{}, err
	}
	parseMacOS(v, &cfg)
	parseHooks(v, &cfg)
	parseRelease(v, &cfg)
	parseUI(v, &cfg)
	applySecretEnv(&cfg)
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func defaults() Config {
	cfg := Config{
		App: App{
			Name:         "Jumperless",
			Entrypoint:   "JumperlessWokwiBridge.py",
			Requirements: "requirements.txt",
			Assets:       "assets",
		},
		Build: Build{
			DistDir:     "dist",
			OutDir:      "builds",
			TimeoutMs:   900000,
			Workers:     0,
			Interpreter: "python3",
		},
		MacOS: MacOS{BundleID: "com.jumperless.bridge", DMG: true},
		Hooks: Hooks{
			TimeoutMs:        2000,
			MemoryLimitBytes: 16 << 20,
		},
		UI: UI{ProgressIntervalMs: 500},
	}
	for _, t := range target.Supported {
		cfg.Targets = append(cfg.Targets, TargetSpec{Target: t, Required: true})
	}
	return cfg
}

func applySecretEnv(cfg *Config) {
	if s := os.Getenv(EnvSignIdentity); s != "" {
		cfg.MacOS.Signing.Identity = s
	}
	if s := os.Getenv(EnvSignTeamID); s != "" {
		cfg.MacOS.Signing.TeamID = s
	}
	if s := os.Getenv(EnvNotaryAppleID); s != "" {
		cfg.MacOS.Notarize.AppleID = s
	}
	if s := os.Getenv(EnvNotaryPassword); s != "" {
		cfg.MacOS.Notarize.Password = s
	}
}

func validate(cfg Config) error {
	if cfg.App.Name == "" {
		return fmt.Errorf("missing required field: app.name")
	}
	if cfg.App.Entrypoint == "" {
		return fmt.Errorf("missing required field: app.entrypoint")
	}
	if len(cfg.Targets) == 0 {
		return fmt.Errorf("targets must not be empty")
	}
	if cfg.Build.TimeoutMs <= 0 {
		return fmt.Errorf("invalid value for build.timeoutMs: must be positive")
	}
	return nil
}

// GitHubToken reads the release token from the environment.
func GitHubToken() string { return os.Getenv(EnvGitHubToken) }

// SelectTargets narrows cfg.Targets to the requested platform/arch.
// Empty platform selects all configured targets; empty arch selects all
// architectures of the platform.
func (c Config) SelectTargets(platform, arch string) ([]TargetSpec, error) {
	if platform == "" {
		return c.Targets, nil
	}
	var out []TargetSpec
	for _, ts := range c.Targets {
		if string(ts.Target.Platform) != platform {
			continue
		}
		if arch != "" && string(ts.Target.Arch) != arch {
			continue
		}
		out = append(out, ts)
	}
	if len(out) == 0 {
		if arch == "" {
			return nil, fmt.Errorf("no configured target for platform %s", platform)
		}
		if _, err := target.Parse(platform, arch); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("no configured target for %s-%s", platform, arch)
	}
	return out, nil
}

// IconFor returns the configured icon path for t, or "" when none is set.
func (c Config) IconFor(t target.Target) string {
	switch t.Platform {
	case target.Linux:
		return c.Icons.Linux
	case target.MacOS:
		return c.Icons.MacOS
	case target.Windows:
		return c.Icons.Windows
	}
	return ""
}
