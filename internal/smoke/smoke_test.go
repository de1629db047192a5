package smoke

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/architeuthis-flux/jumperless-forge/internal/assemble"
	"github.com/architeuthis-flux/jumperless-forge/internal/target"
)

var linuxX64 = target.Target{Platform: target.Linux, Arch: target.X64}

// assembledPackage builds a real package via the assembler so the checks
// run against the layout they will see in production.
func assembledPackage(t *testing.T, tgt target.Target, withArtifact bool) string {
	t.Helper()
	src := t.TempDir()
	entry := filepath.Join(src, "JumperlessWokwiBridge.py")
	if err := os.WriteFile(entry, []byte("__version__ = '1.0.0'\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	reqs := filepath.Join(src, "requirements.txt")
	if err := os.WriteFile(reqs, []byte("pyserial\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	artifact := ""
	if withArtifact {
		artifact = filepath.Join(src, "Jumperless")
		if err := os.WriteFile(artifact, []byte("bin"), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	out := filepath.Join(t.TempDir(), tgt.String())
	_, err := assemble.Assemble(assemble.Options{
		AppName:      "Jumperless",
		Entrypoint:   entry,
		Requirements: reqs,
		ArtifactPath: artifact,
		Target:       tgt,
		OutDir:       out,
	})
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestStructure_PassesWithFallbackOnly(t *testing.T) {
	dir := assembledPackage(t, linuxX64, false)
	if c := Structure(dir, "Jumperless", linuxX64); !c.OK {
		t.Fatalf("structure check failed: %s", c.Message)
	}
}

func TestStructure_MissingPackage(t *testing.T) {
	c := Structure(filepath.Join(t.TempDir(), "absent"), "Jumperless", linuxX64)
	if c.OK {
		t.Fatalf("expected failure")
	}
	if !strings.Contains(c.Message, "not found") {
		t.Fatalf("unexpected message: %s", c.Message)
	}
}

func TestStructure_MissingReadme(t *testing.T) {
	dir := assembledPackage(t, linuxX64, false)
	if err := os.Remove(filepath.Join(dir, "README.md")); err != nil {
		t.Fatal(err)
	}
	if c := Structure(dir, "Jumperless", linuxX64); c.OK {
		t.Fatalf("expected failure for missing readme")
	}
}

func TestFallback_Complete(t *testing.T) {
	dir := assembledPackage(t, linuxX64, false)
	c := Fallback(dir, "Jumperless", "JumperlessWokwiBridge.py", "requirements.txt", linuxX64)
	if !c.OK {
		t.Fatalf("fallback check failed: %s", c.Message)
	}
}

func TestFallback_LostExecBit(t *testing.T) {
	dir := assembledPackage(t, linuxX64, false)
	sh := filepath.Join(dir, "Jumperless Python", "run_jumperless.sh")
	if err := os.Chmod(sh, 0o644); err != nil {
		t.Fatal(err)
	}
	c := Fallback(dir, "Jumperless", "JumperlessWokwiBridge.py", "requirements.txt", linuxX64)
	if c.OK || !strings.Contains(c.Message, "not executable") {
		t.Fatalf("expected exec-bit failure, got ok=%v %q", c.OK, c.Message)
	}
}

func TestFallback_MissingEntrypoint(t *testing.T) {
	dir := assembledPackage(t, linuxX64, false)
	if err := os.Remove(filepath.Join(dir, "Jumperless Python", "JumperlessWokwiBridge.py")); err != nil {
		t.Fatal(err)
	}
	c := Fallback(dir, "Jumperless", "JumperlessWokwiBridge.py", "requirements.txt", linuxX64)
	if c.OK || !strings.Contains(c.Message, "JumperlessWokwiBridge.py") {
		t.Fatalf("expected missing-file failure, got ok=%v %q", c.OK, c.Message)
	}
}

func TestExecutable_TimeoutPasses(t *testing.T) {
	dir := assembledPackage(t, linuxX64, true)
	c := Executable(dir, "Jumperless", linuxX64, func(string) ExecResult {
		return ExecResult{TimedOut: true}
	})
	if !c.OK {
		t.Fatalf("timeout must pass, got %q", c.Message)
	}
}

func TestExecutable_NonZeroExitFails(t *testing.T) {
	dir := assembledPackage(t, linuxX64, true)
	c := Executable(dir, "Jumperless", linuxX64, func(string) ExecResult {
		return ExecResult{ExitCode: 2}
	})
	if c.OK || !strings.Contains(c.Message, "code 2") {
		t.Fatalf("expected exit-code failure, got ok=%v %q", c.OK, c.Message)
	}
}

func TestExecutable_Missing(t *testing.T) {
	dir := assembledPackage(t, linuxX64, false)
	ran := false
	c := Executable(dir, "Jumperless", linuxX64, func(string) ExecResult {
		ran = true
		return ExecResult{}
	})
	if c.OK {
		t.Fatalf("expected failure for missing executable")
	}
	if ran {
		t.Fatalf("runner must not be invoked without an executable")
	}
}
