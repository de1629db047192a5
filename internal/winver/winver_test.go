package winver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVersionTuple(t *testing.T) {
	cases := []struct {
		version string
		want    [4]int
	}{
		{"5.2.0", [4]int{5, 2, 0, 0}},
		{"1.2.3.4", [4]int{1, 2, 3, 4}},
		{"1.2.3.4.5", [4]int{1, 2, 3, 4}},
		{"2", [4]int{2, 0, 0, 0}},
		{"1.2.3-rc.1", [4]int{1, 2, 0, 0}},
		{"", [4]int{0, 0, 0, 0}},
	}
	for _, c := range cases {
		if got := VersionTuple(c.version); got != c.want {
			t.Fatalf("VersionTuple(%q): got %v want %v", c.version, got, c.want)
		}
	}
}

func TestRender(t *testing.T) {
	out := Render("Jumperless", "JumperlessWokwiBridge", "5.2.0")
	for _, want := range []string{
		"filevers=(5, 2, 0, 0)",
		"StringStruct(u'ProductName', u'Jumperless')",
		"StringStruct(u'OriginalFilename', u'JumperlessWokwiBridge.exe')",
		"StringStruct(u'FileVersion', u'5.2.0')",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered version info missing %q:\n%s", want, out)
		}
	}
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "version_info.txt")
	if err := Write(path, "Jumperless", "Jumperless", "1.0.0"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# UTF-8\n") {
		t.Fatalf("unexpected file header: %q", string(data[:16]))
	}
}
