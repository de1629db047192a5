package assemble

import (
	"fmt"
	"strings"

	"github.com/architeuthis-flux/jumperless-forge/internal/target"
)

const projectURL = "https://github.com/Architeuthis-Flux/JumperlessV5"

// platformReadme generates the top-level README for one platform package.
func platformReadme(app string, t target.Target) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s for %s\n\n", app, t.LongName())
	fmt.Fprintf(&b, "This package contains %s built for %s.\n\n", app, t.LongName())
	b.WriteString("## Quick Start\n\n")
	b.WriteString("### Option 1: Native Executable (Recommended)\n\n")
	switch t.Platform {
	case target.Windows:
		fmt.Fprintf(&b, "Double-click `%s.exe` or run from Command Prompt:\n\n```cmd\n%s.exe\n```\n", app, app)
	default:
		fmt.Fprintf(&b, "```bash\n./%s\n```\n\nOr double-click the executable in your file manager.\n", app)
	}
	b.WriteString("\n### Option 2: Python Fallback\n\n")
	b.WriteString("If the native executable doesn't work, use the Python fallback:\n\n")
	fmt.Fprintf(&b, "1. Go to the `%s` folder\n", FallbackDirName(app))
	b.WriteString("2. Follow the instructions in that folder's README.md\n\n")
	b.WriteString("## Package Contents\n\n")
	fmt.Fprintf(&b, "- `%s` - Native executable\n", t.ExecutableName(app))
	fmt.Fprintf(&b, "- `%s/` - Python source code fallback\n", FallbackDirName(app))
	b.WriteString("- `README.md` - This file\n\n")
	b.WriteString("## System Requirements\n\n")
	fmt.Fprintf(&b, "- %s operating system\n", t.LongName())
	b.WriteString("- No additional dependencies for native executable\n")
	b.WriteString("- Python 3.9+ for Python fallback\n\n")
	b.WriteString("## Need Help?\n\n")
	fmt.Fprintf(&b, "- Visit: %s\n", projectURL)
	return b.String()
}

// fallbackReadme generates the README inside the fallback bundle.
func fallbackReadme(app, entrypoint string, t target.Target) string {
	base := scriptBaseName(app)
	var b strings.Builder
	fmt.Fprintf(&b, "# %s Python Fallback\n\n", app)
	fmt.Fprintf(&b, "This folder contains the Python source code version of %s as a fallback option.\n\n", app)
	b.WriteString("## Quick Start\n\n")
	b.WriteString("### Option 1: Automatic Launcher (Recommended)\n\n")
	switch t.Platform {
	case target.Windows:
		fmt.Fprintf(&b, "```cmd\n%s.bat\n```\n\nOr double-click `%s.bat` in Windows Explorer.\n", base, base)
	default:
		fmt.Fprintf(&b, "```bash\n./%s.sh\n```\n\nOr double-click `%s.sh` in your file manager.\n", base, base)
	}
	b.WriteString("\n### Option 2: Manual Python Execution\n\n")
	b.WriteString("1. Install Python 3.9+ from https://python.org\n")
	b.WriteString("2. Install dependencies:\n\n")
	b.WriteString("   ```bash\n   pip install -r requirements.txt\n   ```\n\n")
	b.WriteString("3. Run the application:\n\n")
	b.WriteString("   ```bash\n   python " + entrypoint + "\n   ```\n\n")
	b.WriteString("## Requirements\n\n")
	b.WriteString("- Python 3.9 or higher\n")
	b.WriteString("- Dependencies listed in `requirements.txt`\n\n")
	b.WriteString("## Support\n\n")
	fmt.Fprintf(&b, "For support, visit: %s\n", projectURL)
	return b.String()
}
