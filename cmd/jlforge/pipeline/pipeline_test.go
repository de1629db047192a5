package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeProject lays out application sources and a config selecting only
// the linux target, with all paths rooted in temp directories.
func writeProject(t *testing.T) (cfgPath, outDir string) {
	t.Helper()
	dir := t.TempDir()
	entry := filepath.Join(dir, "JumperlessWokwiBridge.py")
	if err := os.WriteFile(entry, []byte("__version__ = '5.2.0'\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	reqs := filepath.Join(dir, "requirements.txt")
	if err := os.WriteFile(reqs, []byte("pyserial\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	outDir = filepath.Join(dir, "builds")
	cfg := fmt.Sprintf(`
configVersion: "1"
app: {
	name:         "Jumperless"
	entrypoint:   %q
	requirements: %q
}
build: {
	distDir:   %q
	outDir:    %q
	timeoutMs: 60000
}
targets: [{platform: "linux", arch: "x64"}]
`, entry, reqs, filepath.Join(dir, "dist"), outDir)
	cfgPath = filepath.Join(dir, "forge.cue")
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfgPath, outDir
}

func TestExecute_MissingConfigFlag(t *testing.T) {
	err := Execute(context.Background(), "build", Options{})
	if err == nil || !strings.Contains(err.Error(), "--config") {
		t.Fatalf("unexpected error: %v", err)
	}
}

// Without the native compiler installed the build stage fails, packaging
// absorbs the failure and ships a pure-fallback package, and the run as a
// whole succeeds.
func TestExecute_PackageDegradesWithoutCompiler(t *testing.T) {
	cfgPath, outDir := writeProject(t)
	var stdout, stderr bytes.Buffer

	err := Execute(context.Background(), "package", Options{
		ConfigPath: cfgPath,
		Stdout:     &stdout,
		Stderr:     &stderr,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	line := strings.TrimSpace(stdout.String())
	if strings.Contains(line, "\n") {
		t.Fatalf("expected a single JSON line, got:\n%s", line)
	}
	if !strings.Contains(line, `"degraded"`) {
		t.Fatalf("degrade marker missing from summary: %s", line)
	}
	if !strings.Contains(line, "Jumperless-Linux-x64.tar.gz") {
		t.Fatalf("archive missing from summary: %s", line)
	}

	archive := filepath.Join(outDir, "Jumperless-Linux-x64.tar.gz")
	if _, err := os.Stat(archive); err != nil {
		t.Fatalf("archive not produced: %v", err)
	}
	launcher := filepath.Join(outDir, "linux-x64", "Jumperless Python", "launcher.py")
	if _, err := os.Stat(launcher); err != nil {
		t.Fatalf("fallback bundle not assembled: %v", err)
	}
}

// Verification of a degraded package fails: the baseline checks require
// the native executable the build never produced.
func TestExecute_VerifyFailsOnPureFallback(t *testing.T) {
	cfgPath, _ := writeProject(t)
	var stdout bytes.Buffer

	if err := Execute(context.Background(), "package", Options{ConfigPath: cfgPath, Stdout: &stdout}); err != nil {
		t.Fatalf("package run failed: %v", err)
	}

	stdout.Reset()
	err := Execute(context.Background(), "verify", Options{ConfigPath: cfgPath, Stdout: &stdout})
	if err == nil {
		t.Fatalf("expected verify to fail without a native executable")
	}
	if err.Error() != "1 required target failed" {
		t.Fatalf("unexpected error: %v", err)
	}
	ec, ok := err.(interface{ ExitCode() int })
	if !ok || ec.ExitCode() != 1 {
		t.Fatalf("unexpected exit code")
	}
}
