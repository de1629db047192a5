// Package smoke implements the baseline post-build verification checks:
// package structure, a --help invocation of the native executable, and
// completeness of the interpreter fallback bundle.
package smoke

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/architeuthis-flux/jumperless-forge/internal/assemble"
	"github.com/architeuthis-flux/jumperless-forge/internal/target"
)

// Check is one named verification with a result and diagnostic.
type Check struct {
	Name    string
	OK      bool
	Message string
}

// Structure verifies the fixed package layout: README plus executable
// and/or fallback bundle. A missing native executable is acceptable as
// long as the fallback bundle is present (degrade path).
func Structure(dir, app string, t target.Target) Check {
	if _, err := os.Stat(dir); err != nil {
		return Check{Name: "structure", Message: fmt.Sprintf("package directory not found: %s", dir)}
	}
	if _, err := os.Stat(filepath.Join(dir, "README.md")); err != nil {
		return Check{Name: "structure", Message: "main README missing"}
	}
	fallbackDir := filepath.Join(dir, assemble.FallbackDirName(app))
	fallbackOK := dirExists(fallbackDir)
	nativeOK := nativePresent(dir, app, t)
	if !fallbackOK && !nativeOK {
		return Check{Name: "structure", Message: "neither native executable nor fallback bundle present"}
	}
	if !fallbackOK {
		return Check{Name: "structure", Message: "fallback bundle directory missing"}
	}
	return Check{Name: "structure", OK: true}
}

// Fallback verifies the fallback bundle is independently runnable: entry
// source, dependency manifest, launchers and readme all present, with the
// shell launcher executable on unix platforms.
func Fallback(dir, app, entrypoint, requirements string, t target.Target) Check {
	fallbackDir := filepath.Join(dir, assemble.FallbackDirName(app))
	required := []string{entrypoint, requirements, "launcher.py", "README.md"}
	for _, f := range required {
		if f == "" {
			continue
		}
		if _, err := os.Stat(filepath.Join(fallbackDir, f)); err != nil {
			return Check{Name: "fallback", Message: fmt.Sprintf("required file missing: %s", f)}
		}
	}
	base := "run_" + lowerUnderscore(app)
	switch t.Platform {
	case target.Windows:
		if _, err := os.Stat(filepath.Join(fallbackDir, base+".bat")); err != nil {
			return Check{Name: "fallback", Message: fmt.Sprintf("batch launcher missing: %s.bat", base)}
		}
	default:
		p := filepath.Join(fallbackDir, base+".sh")
		info, err := os.Stat(p)
		if err != nil {
			return Check{Name: "fallback", Message: fmt.Sprintf("shell launcher missing: %s.sh", base)}
		}
		if info.Mode().Perm()&0o100 == 0 {
			return Check{Name: "fallback", Message: fmt.Sprintf("shell launcher not executable: %s.sh", base)}
		}
	}
	return Check{Name: "fallback", OK: true}
}

// ExecResult is how the executable check observes its invocation; the
// stage layer supplies the real process runner.
type ExecResult struct {
	ExitCode int
	TimedOut bool
	ErrorMsg string
}

// Executable interprets a --help invocation of the native executable.
// A timeout passes: interactive applications block waiting for input.
// A missing executable fails only when it was expected to exist.
func Executable(dir, app string, t target.Target, run func(path string) ExecResult) Check {
	name := t.ExecutableName(app)
	path := filepath.Join(dir, name)
	if t.Platform == target.MacOS {
		bundled := filepath.Join(dir, app+".app", "Contents", "MacOS", app+"_cli")
		if _, err := os.Stat(bundled); err == nil {
			path = bundled
		}
	}
	if _, err := os.Stat(path); err != nil {
		return Check{Name: "executable", Message: fmt.Sprintf("executable not found: %s", path)}
	}
	res := run(path)
	switch {
	case res.TimedOut:
		return Check{Name: "executable", OK: true, Message: "timed out (likely waiting for input)"}
	case res.ErrorMsg != "":
		return Check{Name: "executable", Message: res.ErrorMsg}
	case res.ExitCode != 0:
		return Check{Name: "executable", Message: fmt.Sprintf("exited with code %d", res.ExitCode)}
	default:
		return Check{Name: "executable", OK: true}
	}
}

func nativePresent(dir, app string, t target.Target) bool {
	if t.Platform == target.MacOS {
		if dirExists(filepath.Join(dir, app+".app")) {
			return true
		}
	}
	_, err := os.Stat(filepath.Join(dir, t.ExecutableName(app)))
	return err == nil
}

func dirExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && st.IsDir()
}

func lowerUnderscore(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == ' ' {
			out = append(out, '_')
			continue
		}
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		out = append(out, r)
	}
	return string(out)
}
