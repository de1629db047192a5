package assemble

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/architeuthis-flux/jumperless-forge/internal/target"
)

// writeLaunchers generates the interpreter launcher plus the
// platform-appropriate shell or batch wrapper.
func writeLaunchers(dir, app, entrypoint string, t target.Target) error {
	py := pythonLauncher(app, entrypoint)
	if err := os.WriteFile(filepath.Join(dir, "launcher.py"), []byte(py), 0o644); err != nil {
		return fmt.Errorf("writing launcher.py: %w", err)
	}
	base := scriptBaseName(app)
	switch t.Platform {
	case target.Linux, target.MacOS:
		sh := shellLauncher(app)
		if err := os.WriteFile(filepath.Join(dir, base+".sh"), []byte(sh), 0o755); err != nil {
			return fmt.Errorf("writing shell launcher: %w", err)
		}
	case target.Windows:
		bat := batchLauncher(app)
		if err := os.WriteFile(filepath.Join(dir, base+".bat"), []byte(bat), 0o644); err != nil {
			return fmt.Errorf("writing batch launcher: %w", err)
		}
	}
	return nil
}

// pythonLauncher is the universal interpreter launcher: verify the
// dependency manifest, install it when present (non-fatal on failure),
// then run the entry point forwarding all arguments.
func pythonLauncher(app, entrypoint string) string {
	return fmt.Sprintf(`#!/usr/bin/env python3
"""%[1]s Python Launcher

Installs declared dependencies when needed and runs the application,
forwarding all command line arguments.
"""

import os
import subprocess
import sys
from pathlib import Path


def install_dependencies():
    print("Installing dependencies...")
    try:
        subprocess.run(
            [sys.executable, "-m", "pip", "install", "-r", "requirements.txt"],
            check=True,
            capture_output=True,
        )
        print("Dependencies installed successfully")
        return True
    except subprocess.CalledProcessError as exc:
        print("Failed to install dependencies: %%s" %% exc)
        print("Please install dependencies manually:")
        print("  %%s -m pip install -r requirements.txt" %% sys.executable)
        return False


def main():
    print("%[1]s Python Launcher")
    print("=" * 40)

    os.chdir(Path(__file__).resolve().parent)

    if not Path("%[2]s").exists():
        print("%[2]s not found!")
        print("Please run this script from the '%[1]s Python' directory")
        sys.exit(1)

    if Path("requirements.txt").exists():
        if not install_dependencies():
            answer = input("Continue anyway? [y/N] ").strip().lower()
            if answer not in ("y", "yes"):
                sys.exit(1)
            print("Warning: continuing with possibly missing dependencies")

    print("Starting %[1]s...")
    result = subprocess.run([sys.executable, "%[2]s"] + sys.argv[1:])
    sys.exit(result.returncode)


if __name__ == "__main__":
    main()
`, app, entrypoint)
}

// shellLauncher finds a Python interpreter and hands off to launcher.py,
// replacing its own process and forwarding all arguments.
func shellLauncher(app string) string {
	return fmt.Sprintf(`#!/bin/bash
# %[1]s Shell Launcher
# Finds Python and runs the application

echo "%[1]s Shell Launcher"
echo "=========================="

PYTHON_CMD=""
for cmd in python3 python python3.12 python3.11 python3.10; do
    if command -v "$cmd" &> /dev/null; then
        PYTHON_CMD="$cmd"
        break
    fi
done

if [ -z "$PYTHON_CMD" ]; then
    echo "Python not found! Please install Python 3.9+ and try again."
    exit 1
fi

echo "Using Python: $PYTHON_CMD"

cd "$(dirname "$0")"

exec "$PYTHON_CMD" launcher.py "$@"
`, app)
}

// batchLauncher is the Windows counterpart of shellLauncher.
func batchLauncher(app string) string {
	return fmt.Sprintf(`@echo off
REM %[1]s Windows Launcher
REM Finds Python and runs the application

echo %[1]s Windows Launcher
echo ==========================

set PYTHON_CMD=
for %%%%i in (python.exe python3.exe py.exe) do (
    where /q %%%%i
    if not errorlevel 1 (
        set PYTHON_CMD=%%%%i
        goto found
    )
)

echo Python not found! Please install Python 3.9+ and try again.
pause
exit /b 1

:found
echo Using Python: %%PYTHON_CMD%%

cd /d "%%~dp0"

%%PYTHON_CMD%% launcher.py %%*
exit /b %%errorlevel%%
`, app)
}
