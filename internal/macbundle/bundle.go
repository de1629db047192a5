// Package macbundle wraps a raw macOS executable into an application
// bundle and applies the terminal-launcher rewrite that gives the CLI a
// persistent Terminal window when the bundle is opened from Finder.
package macbundle

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Options describes the bundle to create.
type Options struct {
	AppName    string
	BundleID   string
	Version    string
	Executable string // path to the compiled raw executable
	IconPath   string // .icns file; empty or missing degrades to no icon
	OutDir     string // directory the .app is created in
}

// Create builds <OutDir>/<AppName>.app around the executable and returns
// the bundle path. The terminal-launcher rewrite happens here, before any
// signing, so the signature covers the final contents.
func Create(opts Options) (string, error) {
	appPath := filepath.Join(opts.OutDir, opts.AppName+".app")
	macosDir := filepath.Join(appPath, "Contents", "MacOS")
	resourcesDir := filepath.Join(appPath, "Contents", "Resources")
	if err := os.RemoveAll(appPath); err != nil {
		return "", fmt.Errorf("clearing bundle dir: %w", err)
	}
	for _, d := range []string{macosDir, resourcesDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return "", fmt.Errorf("creating bundle dirs: %w", err)
		}
	}

	// The raw executable becomes <AppName>_cli; a shell launcher that
	// opens Terminal takes its place as the bundle entry point.
	cliPath := filepath.Join(macosDir, opts.AppName+"_cli")
	if err := copyExecutable(opts.Executable, cliPath); err != nil {
		return "", fmt.Errorf("installing executable: %w", err)
	}
	launcher := terminalLauncher(opts.AppName)
	if err := os.WriteFile(filepath.Join(macosDir, opts.AppName), []byte(launcher), 0o755); err != nil {
		return "", fmt.Errorf("installing launcher: %w", err)
	}

	iconFile := ""
	if opts.IconPath != "" {
		if _, err := os.Stat(opts.IconPath); err == nil {
			iconFile = opts.AppName + ".icns"
			if err := copyExecutable(opts.IconPath, filepath.Join(resourcesDir, iconFile)); err != nil {
				return "", fmt.Errorf("installing icon: %w", err)
			}
		}
	}

	plist := infoPlist(opts.AppName, opts.BundleID, opts.Version, iconFile)
	if err := os.WriteFile(filepath.Join(appPath, "Contents", "Info.plist"), []byte(plist), 0o644); err != nil {
		return "", fmt.Errorf("writing Info.plist: %w", err)
	}
	return appPath, nil
}

func copyExecutable(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return err
	}
	mode := info.Mode().Perm() | 0o111
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// terminalLauncher opens Terminal and runs the renamed CLI executable in
// it, so double-clicking the bundle yields a persistent console.
func terminalLauncher(app string) string {
	return fmt.Sprintf(`#!/bin/bash
# %[1]s macOS Launcher
# Opens Terminal and runs the CLI application

SCRIPT_DIR="$(cd "$(dirname "$0")" && pwd)"
CLI_EXECUTABLE="$SCRIPT_DIR/%[1]s_cli"

if [ ! -f "$CLI_EXECUTABLE" ]; then
    echo "Error: CLI executable not found at $CLI_EXECUTABLE"
    exit 1
fi

osascript -e "
tell application \"Terminal\"
    activate
    set newWindow to do script \"\"
    delay 0.5
    do script \"cd '$SCRIPT_DIR' && ./%[1]s_cli\" in newWindow
    set bounds of front window to {100, 100, 1000, 700}
end tell
"
`, app)
}

func infoPlist(app, bundleID, version, iconFile string) string {
	icon := ""
	if iconFile != "" {
		icon = fmt.Sprintf("\t<key>CFBundleIconFile</key>\n\t<string>%s</string>\n", iconFile)
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>CFBundleExecutable</key>
	<string>%[1]s</string>
	<key>CFBundleIdentifier</key>
	<string>%[2]s</string>
	<key>CFBundleName</key>
	<string>%[1]s</string>
	<key>CFBundleDisplayName</key>
	<string>%[1]s</string>
	<key>CFBundleShortVersionString</key>
	<string>%[3]s</string>
	<key>CFBundleVersion</key>
	<string>%[3]s</string>
	<key>CFBundlePackageType</key>
	<string>APPL</string>
	<key>LSMinimumSystemVersion</key>
	<string>10.15</string>
	<key>NSHighResolutionCapable</key>
	<true/>
%[4]s</dict>
</plist>
`, app, bundleID, version, icon)
}
