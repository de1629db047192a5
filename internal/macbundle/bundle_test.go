package macbundle

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testOptions(t *testing.T) Options {
	t.Helper()
	exe := filepath.Join(t.TempDir(), "Jumperless")
	if err := os.WriteFile(exe, []byte("binary"), 0o755); err != nil {
		t.Fatal(err)
	}
	return Options{
		AppName:    "Jumperless",
		BundleID:   "com.jumperless.bridge",
		Version:    "5.2.0",
		Executable: exe,
		OutDir:     t.TempDir(),
	}
}

func TestCreate_Layout(t *testing.T) {
	opts := testOptions(t)
	appPath, err := Create(opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appPath != filepath.Join(opts.OutDir, "Jumperless.app") {
		t.Fatalf("unexpected bundle path: %q", appPath)
	}

	// The raw executable is renamed and a terminal launcher takes its place.
	cli := filepath.Join(appPath, "Contents", "MacOS", "Jumperless_cli")
	info, err := os.Stat(cli)
	if err != nil {
		t.Fatalf("renamed executable missing: %v", err)
	}
	if info.Mode().Perm()&0o111 == 0 {
		t.Fatalf("cli executable lost its exec bit")
	}

	launcher := filepath.Join(appPath, "Contents", "MacOS", "Jumperless")
	data, err := os.ReadFile(launcher)
	if err != nil {
		t.Fatalf("launcher missing: %v", err)
	}
	if !strings.Contains(string(data), "osascript") || !strings.Contains(string(data), "Jumperless_cli") {
		t.Fatalf("launcher does not open the CLI in Terminal:\n%s", data)
	}

	plist, err := os.ReadFile(filepath.Join(appPath, "Contents", "Info.plist"))
	if err != nil {
		t.Fatalf("Info.plist missing: %v", err)
	}
	for _, want := range []string{
		"<string>Jumperless</string>",
		"<string>com.jumperless.bridge</string>",
		"<string>5.2.0</string>",
	} {
		if !strings.Contains(string(plist), want) {
			t.Fatalf("Info.plist missing %q:\n%s", want, plist)
		}
	}
	if strings.Contains(string(plist), "CFBundleIconFile") {
		t.Fatalf("icon key present without an icon")
	}
}

func TestCreate_WithIcon(t *testing.T) {
	opts := testOptions(t)
	icon := filepath.Join(t.TempDir(), "app.icns")
	if err := os.WriteFile(icon, []byte("icns"), 0o644); err != nil {
		t.Fatal(err)
	}
	opts.IconPath = icon

	appPath, err := Create(opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(appPath, "Contents", "Resources", "Jumperless.icns")); err != nil {
		t.Fatalf("icon not installed: %v", err)
	}
	plist, err := os.ReadFile(filepath.Join(appPath, "Contents", "Info.plist"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(plist), "CFBundleIconFile") {
		t.Fatalf("icon key missing from Info.plist")
	}
}

func TestCreate_MissingIconDegrades(t *testing.T) {
	opts := testOptions(t)
	opts.IconPath = filepath.Join(t.TempDir(), "absent.icns")
	appPath, err := Create(opts)
	if err != nil {
		t.Fatalf("missing icon must not fail bundling: %v", err)
	}
	plist, err := os.ReadFile(filepath.Join(appPath, "Contents", "Info.plist"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(plist), "CFBundleIconFile") {
		t.Fatalf("icon key present for a missing icon")
	}
}

func TestCreate_Idempotent(t *testing.T) {
	opts := testOptions(t)
	if _, err := Create(opts); err != nil {
		t.Fatal(err)
	}
	if _, err := Create(opts); err != nil {
		t.Fatalf("re-creating the bundle failed: %v", err)
	}
}
