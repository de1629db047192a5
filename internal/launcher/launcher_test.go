package launcher

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// fakeInterpreter writes a shell script standing in for python. pipStatus
// is the exit code of `-m pip install`, appStatus the exit code of running
// the entry point. Invocation arguments are appended to args.log in the
// working directory.
func fakeInterpreter(t *testing.T, pipStatus, appStatus int) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-script interpreter fake requires a unix shell")
	}
	script := `#!/bin/sh
if [ "$1" = "-m" ] && [ "$2" = "pip" ]; then
  if [ "$3" = "--version" ]; then exit 0; fi
  exit ` + itoa(pipStatus) + `
fi
echo "$@" >> args.log
exit ` + itoa(appStatus) + `
`
	path := filepath.Join(t.TempDir(), "python3")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func itoa(n int) string {
	return string(rune('0' + n))
}

func bundleDir(t *testing.T, withRequirements bool) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "launcher.py"), []byte("pass\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if withRequirements {
		if err := os.WriteFile(filepath.Join(dir, "requirements.txt"), []byte("pyserial\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func baseOptions(dir, interpreter string) Options {
	return Options{
		Dir:          dir,
		Entrypoint:   "launcher.py",
		Requirements: "requirements.txt",
		Interpreter:  interpreter,
		Stdout:       &bytes.Buffer{},
		Stderr:       &bytes.Buffer{},
		Stdin:        strings.NewReader(""),
		LookPath:     func(name string) (string, error) { return name, nil },
	}
}

func TestRun_NoInterpreter(t *testing.T) {
	opts := baseOptions(bundleDir(t, false), "")
	opts.LookPath = func(string) (string, error) { return "", errors.New("not found") }
	_, err := Run(context.Background(), opts)
	if !errors.Is(err, ErrNoInterpreter) {
		t.Fatalf("expected ErrNoInterpreter, got %v", err)
	}
	if !strings.Contains(err.Error(), "python.org") {
		t.Fatalf("error should carry a remediation hint: %v", err)
	}
}

func TestRun_SkipsInstallWithoutManifest(t *testing.T) {
	interp := fakeInterpreter(t, 0, 0)
	dir := bundleDir(t, false)
	opts := baseOptions(dir, interp)
	var out bytes.Buffer
	opts.Stdout = &out

	code, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != 0 {
		t.Fatalf("unexpected exit code: %d", code)
	}
	if strings.Contains(out.String(), "Installing dependencies") {
		t.Fatalf("install step must be silent without a manifest:\n%s", out.String())
	}
}

func TestRun_InstallFailureDeclined(t *testing.T) {
	interp := fakeInterpreter(t, 1, 0)
	dir := bundleDir(t, true)
	opts := baseOptions(dir, interp)
	var out bytes.Buffer
	opts.Stdout = &out
	opts.Confirm = func(string) bool { return false }

	code, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != 1 {
		t.Fatalf("declined continue must exit 1, got %d", code)
	}
	if !strings.Contains(out.String(), "install dependencies manually") {
		t.Fatalf("missing manual-install hint:\n%s", out.String())
	}
}

func TestRun_InstallFailureConfirmedContinues(t *testing.T) {
	interp := fakeInterpreter(t, 1, 0)
	dir := bundleDir(t, true)
	opts := baseOptions(dir, interp)
	opts.Confirm = func(string) bool { return true }

	code, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != 0 {
		t.Fatalf("confirmed continue should run the app, got exit %d", code)
	}
}

func TestRun_PropagatesExitCode(t *testing.T) {
	interp := fakeInterpreter(t, 0, 7)
	dir := bundleDir(t, false)
	opts := baseOptions(dir, interp)

	code, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != 7 {
		t.Fatalf("expected child exit code 7, got %d", code)
	}
}

func TestRun_ForwardsArguments(t *testing.T) {
	interp := fakeInterpreter(t, 0, 0)
	dir := bundleDir(t, false)
	opts := baseOptions(dir, interp)
	opts.Args = []string{"--port", "/dev/ttyACM0"}

	if _, err := Run(context.Background(), opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logged, err := os.ReadFile(filepath.Join(dir, "args.log"))
	if err != nil {
		t.Fatal(err)
	}
	got := strings.TrimSpace(string(logged))
	if got != "launcher.py --port /dev/ttyACM0" {
		t.Fatalf("unexpected child arguments: %q", got)
	}
}
