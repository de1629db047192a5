// Package target enumerates the build targets the pipeline produces
// packages for, and owns the deterministic artifact and archive naming.
package target

import "fmt"

// Platform is an operating system family the pipeline can package for.
type Platform string

const (
	Linux   Platform = "linux"
	MacOS   Platform = "macos"
	Windows Platform = "windows"
)

// Arch is a CPU architecture the pipeline can package for.
type Arch string

const (
	X64   Arch = "x64"
	Arm64 Arch = "arm64"
)

// Target is one platform/architecture pair. Targets are enumerated
// statically and immutable for a pipeline invocation.
type Target struct {
	Platform Platform `json:"platform"`
	Arch     Arch     `json:"arch"`
}

// Supported is the fixed build matrix.
var Supported = []Target{
	{Platform: Linux, Arch: X64},
	{Platform: MacOS, Arch: X64},
	{Platform: MacOS, Arch: Arm64},
	{Platform: Windows, Arch: X64},
}

// Parse validates a platform/arch pair against the supported matrix.
func Parse(platform, arch string) (Target, error) {
	t := Target{Platform: Platform(platform), Arch: Arch(arch)}
	for _, s := range Supported {
		if s == t {
			return t, nil
		}
	}
	return Target{}, fmt.Errorf("unsupported target: %s-%s", platform, arch)
}

// ForPlatform returns all supported targets for a platform name.
func ForPlatform(platform string) []Target {
	var out []Target
	for _, s := range Supported {
		if string(s.Platform) == platform {
			out = append(out, s)
		}
	}
	return out
}

// String returns the canonical short form, e.g. "macos-arm64".
func (t Target) String() string {
	return string(t.Platform) + "-" + string(t.Arch)
}

// DisplayName returns the platform name used in archive names.
func (t Target) DisplayName() string {
	switch t.Platform {
	case Linux:
		return "Linux"
	case Windows:
		return "Windows"
	case MacOS:
		return "macOS"
	}
	return string(t.Platform)
}

// LongName returns the human-facing target name used in generated
// documentation, e.g. "macOS Apple Silicon".
func (t Target) LongName() string {
	if t.Platform == MacOS {
		if t.Arch == Arm64 {
			return "macOS Apple Silicon"
		}
		return "macOS Intel"
	}
	return t.DisplayName()
}

// ExecutableName returns the name of the native executable for app.
func (t Target) ExecutableName(app string) string {
	if t.Platform == Windows {
		return app + ".exe"
	}
	return app
}

// ArchiveExt returns the platform-conventional archive extension.
// Linux ships tarballs; macOS and Windows ship zips.
func (t Target) ArchiveExt() string {
	if t.Platform == Linux {
		return ".tar.gz"
	}
	return ".zip"
}

// ArchiveName returns the release archive file name for app, e.g.
// "Jumperless-Linux-x64.tar.gz".
func (t Target) ArchiveName(app string) string {
	return fmt.Sprintf("%s-%s-%s%s", app, t.DisplayName(), t.Arch, t.ArchiveExt())
}
