package hooks

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/architeuthis-flux/jumperless-forge/internal/target"
)

func writeHook(t *testing.T, code string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hook.lua")
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testEnv(t *testing.T) Env {
	t.Helper()
	return Env{
		App:     "Jumperless",
		Version: "5.2.0",
		Target:  target.Target{Platform: target.MacOS, Arch: target.Arm64},
		Dir:     t.TempDir(),
	}
}

func TestRun_WriteRenameRemove(t *testing.T) {
	env := testEnv(t)
	if err := os.WriteFile(filepath.Join(env.Dir, "drop.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	hook := writeHook(t, `
pkg.write("NOTICE.txt", "built for " .. pkg.platform .. "-" .. pkg.arch)
pkg.rename("NOTICE.txt", "docs/NOTICE.txt")
pkg.remove("drop.txt")
`)
	if err := Run(hook, env, Sandbox{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(env.Dir, "docs", "NOTICE.txt"))
	if err != nil {
		t.Fatalf("renamed file missing: %v", err)
	}
	if string(data) != "built for macos-arm64" {
		t.Fatalf("unexpected content: %q", data)
	}
	if _, err := os.Stat(filepath.Join(env.Dir, "drop.txt")); !os.IsNotExist(err) {
		t.Fatalf("removed file still present")
	}
}

func TestRun_ExposesEnvFields(t *testing.T) {
	env := testEnv(t)
	hook := writeHook(t, `
if pkg.app ~= "Jumperless" or pkg.version ~= "5.2.0" then
  error("bad env")
end
`)
	if err := Run(hook, env, Sandbox{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRun_RejectsEscapingPaths(t *testing.T) {
	env := testEnv(t)
	cases := []string{
		`pkg.write("../outside.txt", "x")`,
		`pkg.write("/etc/owned", "x")`,
		`pkg.remove("../../tmp")`,
	}
	for _, code := range cases {
		err := Run(writeHook(t, code), env, Sandbox{})
		if err == nil || !strings.Contains(err.Error(), "escapes package directory") {
			t.Fatalf("hook %q: expected escape error, got %v", code, err)
		}
	}
}

func TestRun_Timeout(t *testing.T) {
	env := testEnv(t)
	hook := writeHook(t, `while true do end`)
	err := Run(hook, env, Sandbox{TimeoutMs: 50})
	if err == nil || !strings.Contains(err.Error(), "sandbox timeout") {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestRun_NoIOLibraries(t *testing.T) {
	env := testEnv(t)
	hook := writeHook(t, `io.open("/etc/passwd")`)
	if err := Run(hook, env, Sandbox{}); err == nil {
		t.Fatalf("io library must not be available")
	}
	hook = writeHook(t, `os.exit(0)`)
	if err := Run(hook, env, Sandbox{}); err == nil {
		t.Fatalf("os library must not be available")
	}
}

func TestRun_MissingScript(t *testing.T) {
	env := testEnv(t)
	if err := Run(filepath.Join(t.TempDir(), "absent.lua"), env, Sandbox{}); err == nil {
		t.Fatalf("expected error for missing hook")
	}
}
