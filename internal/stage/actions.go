package stage

import (
	"context"
	"fmt"
)

// Stage names, in the order the actions compose them.
const (
	StageResolveVersion  = "resolve-version"
	StageCompile         = "compile"
	StageBundleMacOS     = "bundle-macos"
	StageCodesign        = "codesign"
	StageNotarize        = "notarize"
	StageAssemblePackage = "assemble-package"
	StageRunHooks        = "run-hooks"
	StageWriteManifest   = "write-manifest"
	StageArchive         = "archive"
	StageDMGMacOS        = "dmg-macos"
	StageSmokeStructure  = "smoke-structure"
	StageSmokeExecutable = "smoke-executable"
	StageSmokeFallback   = "smoke-fallback"
	StageCollectArchives = "collect-archives"
	StageReleaseNotes    = "release-notes"
	StagePublishRelease  = "publish-release"
)

// ActionStages returns the deterministic stage order for an action.
func ActionStages(action string) ([]string, error) {
	switch action {
	case "build":
		return []string{
			StageResolveVersion,
			StageCompile,
			StageBundleMacOS,
			StageCodesign,
			StageNotarize,
		}, nil
	case "package":
		return []string{
			StageResolveVersion,
			StageCompile,
			StageBundleMacOS,
			StageCodesign,
			StageNotarize,
			StageAssemblePackage,
			StageRunHooks,
			StageWriteManifest,
			StageArchive,
			StageDMGMacOS,
		}, nil
	case "verify":
		return []string{
			StageResolveVersion,
			StageSmokeStructure,
			StageSmokeExecutable,
			StageSmokeFallback,
		}, nil
	case "release":
		return []string{
			StageCollectArchives,
			StageReleaseNotes,
			StagePublishRelease,
		}, nil
	default:
		return nil, fmt.Errorf("invalid action")
	}
}

// RunStages executes the named stages in order against the envelope.
func RunStages(ctx context.Context, names []string, in Envelope, deps Deps) (Envelope, error) {
	out := in
	var err error
	reporter := newProgressReporter(out.Meta, deps)
	for _, name := range names {
		out, err = reporter.runStage(ctx, name, out, deps)
		if err != nil {
			return Envelope{}, err
		}
	}
	return out, nil
}
