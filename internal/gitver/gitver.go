// Package gitver resolves the application version for a pipeline run.
//
// Resolution order: highest semver tag in the enclosing git repository,
// then a __version__ assignment in the application entry source, then the
// default "1.0.0".
package gitver

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

const defaultVersion = "1.0.0"

var (
	releaseTagPattern = regexp.MustCompile(`^v(\d+)\.(\d+)\.(\d+)(?:-[0-9A-Za-z.-]+)?(?:\+[0-9A-Za-z.-]+)?$`)
	versionVarPattern = regexp.MustCompile(`__version__\s*=\s*['"]([^'"]*)['"]`)
)

// IsReleaseTag reports whether tag matches the v<semver> release pattern.
func IsReleaseTag(tag string) bool {
	return releaseTagPattern.MatchString(tag)
}

// Strip removes a leading "v" from a tag, yielding the bare version.
func Strip(tag string) string {
	return strings.TrimPrefix(tag, "v")
}

// Resolve determines the version for the application rooted at dir with
// the given entry source file. It never fails; absent inputs degrade to
// the default version.
func Resolve(dir, entrypoint string) string {
	if v, ok := fromGitTags(dir); ok {
		return v
	}
	if v, ok := fromSource(entrypoint); ok {
		return v
	}
	return defaultVersion
}

// fromGitTags returns the highest release tag of the repository
// enclosing dir, without the "v" prefix.
func fromGitTags(dir string) (string, bool) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", false
	}
	tags, err := repo.Tags()
	if err != nil {
		return "", false
	}
	best := ""
	var bestParts [3]int
	_ = tags.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		m := releaseTagPattern.FindStringSubmatch(name)
		if m == nil {
			return nil
		}
		var parts [3]int
		for i := 0; i < 3; i++ {
			parts[i], _ = strconv.Atoi(m[i+1])
		}
		if best == "" || lessParts(bestParts, parts) {
			best = name
			bestParts = parts
		}
		return nil
	})
	if best == "" {
		return "", false
	}
	return Strip(best), true
}

func lessParts(a, b [3]int) bool {
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// fromSource extracts a __version__ assignment from the entry source file.
func fromSource(entrypoint string) (string, bool) {
	if entrypoint == "" {
		return "", false
	}
	data, err := os.ReadFile(entrypoint)
	if err != nil {
		return "", false
	}
	m := versionVarPattern.FindSubmatch(data)
	if m == nil || len(m[1]) == 0 {
		return "", false
	}
	return string(m[1]), true
}
