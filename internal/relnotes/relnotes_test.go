package relnotes

import (
	"strings"
	"testing"

	"github.com/architeuthis-flux/jumperless-forge/internal/target"
)

func TestCombined(t *testing.T) {
	archives := []Archive{
		{Target: target.Target{Platform: target.Linux, Arch: target.X64}, Name: "Jumperless-Linux-x64.tar.gz"},
		{Target: target.Target{Platform: target.MacOS, Arch: target.Arm64}, Name: "Jumperless-macOS-arm64.zip"},
		{Target: target.Target{Platform: target.Windows, Arch: target.X64}, Name: "Jumperless-Windows-x64.zip"},
	}
	out := Combined("Jumperless", "5.2.0", archives)

	for _, want := range []string{
		"# Jumperless 5.2.0 Multi-Platform Release",
		"- **Linux**: `Jumperless-Linux-x64.tar.gz`",
		"- **macOS Apple Silicon**: `Jumperless-macOS-arm64.zip`",
		"- **Windows**: `Jumperless-Windows-x64.zip`",
		"`Jumperless Python` folder",
		"Python 3.9 or later",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("release notes missing %q:\n%s", want, out)
		}
	}
}

func TestCombined_Deterministic(t *testing.T) {
	archives := []Archive{
		{Target: target.Target{Platform: target.Linux, Arch: target.X64}, Name: "Jumperless-Linux-x64.tar.gz"},
	}
	a := Combined("Jumperless", "1.0.0", archives)
	b := Combined("Jumperless", "1.0.0", archives)
	if a != b {
		t.Fatalf("release notes not deterministic")
	}
}
