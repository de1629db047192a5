// Package winver generates the Windows VSVersionInfo file consumed by
// the native compiler when embedding version metadata into the .exe.
package winver

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// VersionTuple pads or truncates a dotted version string to the four
// numeric parts Windows expects. Non-numeric parts become zero.
func VersionTuple(version string) [4]int {
	var out [4]int
	parts := strings.Split(version, ".")
	for i := 0; i < 4 && i < len(parts); i++ {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			break
		}
		out[i] = n
	}
	return out
}

// Render returns the version_info.txt content for the given app and version.
func Render(appName, internalName, version string) string {
	t := VersionTuple(version)
	tuple := fmt.Sprintf("(%d, %d, %d, %d)", t[0], t[1], t[2], t[3])
	var b strings.Builder
	b.WriteString("# UTF-8\n")
	b.WriteString("VSVersionInfo(\n")
	b.WriteString("  ffi=FixedFileInfo(\n")
	fmt.Fprintf(&b, "    filevers=%s,\n", tuple)
	fmt.Fprintf(&b, "    prodvers=%s,\n", tuple)
	b.WriteString("    mask=0x3f,\n")
	b.WriteString("    flags=0x0,\n")
	b.WriteString("    OS=0x4,\n")
	b.WriteString("    fileType=0x1,\n")
	b.WriteString("    subtype=0x0,\n")
	b.WriteString("    date=(0, 0)\n")
	b.WriteString("  ),\n")
	b.WriteString("  kids=[\n")
	b.WriteString("    StringFileInfo(\n")
	b.WriteString("      [\n")
	b.WriteString("        StringTable(\n")
	b.WriteString("          u'040904B0',\n")
	b.WriteString("          [\n")
	fmt.Fprintf(&b, "            StringStruct(u'CompanyName', u'%s Project'),\n", appName)
	fmt.Fprintf(&b, "            StringStruct(u'FileDescription', u'%s'),\n", internalName)
	fmt.Fprintf(&b, "            StringStruct(u'FileVersion', u'%s'),\n", version)
	fmt.Fprintf(&b, "            StringStruct(u'InternalName', u'%s'),\n", internalName)
	fmt.Fprintf(&b, "            StringStruct(u'OriginalFilename', u'%s.exe'),\n", internalName)
	fmt.Fprintf(&b, "            StringStruct(u'ProductName', u'%s'),\n", appName)
	fmt.Fprintf(&b, "            StringStruct(u'ProductVersion', u'%s'),\n", version)
	b.WriteString("          ]\n")
	b.WriteString("        )\n")
	b.WriteString("      ]\n")
	b.WriteString("    ),\n")
	b.WriteString("    VarFileInfo([VarStruct(u'Translation', [1033, 1200])])\n")
	b.WriteString("  ]\n")
	b.WriteString(")\n")
	return b.String()
}

// Write renders the version info file at path.
func Write(path, appName, internalName, version string) error {
	return os.WriteFile(path, []byte(Render(appName, internalName, version)), 0o644)
}
