// Package relnotes generates the aggregate release documentation: one
// combined document covering every platform archive in a release.
package relnotes

import (
	"fmt"
	"strings"

	"github.com/architeuthis-flux/jumperless-forge/internal/target"
)

const projectURL = "https://github.com/Architeuthis-Flux/JumperlessV5"

// Archive names one published artifact.
type Archive struct {
	Target target.Target
	Name   string
}

// Combined renders the multi-platform release notes for version with the
// given archives.
func Combined(app, version string, archives []Archive) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s %s Multi-Platform Release\n\n", app, version)
	fmt.Fprintf(&b, "Welcome to %s! This release contains pre-built executables for all major platforms.\n\n", app)
	b.WriteString("## Quick Start Guide\n\n")
	b.WriteString("### 1. Choose Your Platform\n\n")
	b.WriteString("Download the appropriate package for your system:\n\n")
	for _, a := range archives {
		fmt.Fprintf(&b, "- **%s**: `%s`\n", a.Target.LongName(), a.Name)
	}
	b.WriteString("\n### 2. Extract and Run\n\n")
	b.WriteString("1. Extract the downloaded package\n")
	fmt.Fprintf(&b, "2. Run the `%s` executable (or `%s.exe` on Windows)\n", app, app)
	b.WriteString("3. Double-click to run, or run from terminal/command prompt\n\n")
	b.WriteString("### 3. Alternative: Python Fallback\n\n")
	b.WriteString("If the native executable doesn't work:\n\n")
	fmt.Fprintf(&b, "1. Go to the `%s Python` folder in your extracted package\n", app)
	b.WriteString("2. Follow the instructions in that folder's README.md\n\n")
	b.WriteString("## System Requirements\n\n")
	b.WriteString("### For Native Executables\n\n")
	b.WriteString("- **Linux**: x86_64 architecture, glibc 2.17+\n")
	b.WriteString("- **macOS**: macOS 10.15+ (Catalina or later)\n")
	b.WriteString("- **Windows**: Windows 10 or later, x64 architecture\n\n")
	b.WriteString("### For Python Fallback\n\n")
	b.WriteString("- **All platforms**: Python 3.9 or later\n")
	b.WriteString("- Dependencies are installed automatically by the launcher\n\n")
	b.WriteString("## Support\n\n")
	fmt.Fprintf(&b, "- Visit: %s\n", projectURL)
	return b.String()
}
