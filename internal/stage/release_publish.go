package stage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/architeuthis-flux/jumperless-forge/internal/config"
	"github.com/architeuthis-flux/jumperless-forge/internal/gitver"
	"github.com/architeuthis-flux/jumperless-forge/internal/release"
	"github.com/architeuthis-flux/jumperless-forge/internal/relnotes"
)

// Publisher creates the persistent release record and uploads assets.
// The real implementation talks to the GitHub API; tests substitute it.
type Publisher interface {
	CreateOrUpdate(ctx context.Context, repo, tag, name, body string, draft bool) (*release.Release, error)
	UploadAsset(ctx context.Context, repo string, releaseID int64, path string) error
}

// NewPublisher is replaceable in tests.
var NewPublisher = func(token string) Publisher { return release.NewClient(token) }

// collectArchivesRunner locates the archive produced for each target and
// stamps run-wide release metadata.
func collectArchivesRunner(_ context.Context, in Envelope, deps Deps) (Envelope, error) {
	if in.Meta == nil || in.Meta.Config == nil {
		return Envelope{}, fmt.Errorf("%s: missing config", StageCollectArchives)
	}
	cfg := in.Meta.Config
	out := in
	meta := *in.Meta
	rel := &ReleaseMeta{Tag: meta.Tag}
	if gitver.IsReleaseTag(meta.Tag) {
		rel.Version = gitver.Strip(meta.Tag)
	}
	meta.Release = rel
	out.Meta = &meta

	return runPerRecord(out, func(rec Record) (Record, *Error) {
		name := rec.Target.ArchiveName(cfg.App.Name)
		path := filepath.Join(cfg.Build.OutDir, name)
		if _, err := os.Stat(path); err != nil {
			e := failRecord(&rec, StageCollectArchives, fmt.Sprintf("archive not found: %s", path))
			return rec, &e
		}
		rec.Archive = &ArchiveInfo{Name: name, Path: path}
		verbosef(out.Meta, deps, "collected %s", path)
		return rec, nil
	})
}

// releaseNotesRunner generates the aggregate release documentation from
// the collected archives.
func releaseNotesRunner(_ context.Context, in Envelope, deps Deps) (Envelope, error) {
	if in.Meta == nil || in.Meta.Config == nil || in.Meta.Release == nil {
		return Envelope{}, fmt.Errorf("%s: missing release metadata", StageReleaseNotes)
	}
	cfg := in.Meta.Config
	var archives []relnotes.Archive
	for _, rec := range in.Records {
		if rec.Archive == nil {
			continue
		}
		archives = append(archives, relnotes.Archive{Target: rec.Target, Name: rec.Archive.Name})
	}
	version := in.Meta.Release.Version
	if version == "" {
		version = in.Meta.Version
	}
	notes := relnotes.Combined(cfg.App.Name, version, archives)
	path := filepath.Join(cfg.Build.OutDir, "RELEASE_NOTES.md")
	if err := os.WriteFile(path, []byte(notes), 0o644); err != nil {
		return Envelope{}, fmt.Errorf("%s: %v", StageReleaseNotes, err)
	}
	out := in
	meta := *in.Meta
	rel := *meta.Release
	rel.NotesPath = path
	meta.Release = &rel
	out.Meta = &meta
	verbosef(out.Meta, deps, "wrote release notes %s", path)
	return out, nil
}

// publishReleaseRunner creates the persistent release record, but only
// for triggers carrying a v<semver> tag. Everything else keeps its
// artifacts without publishing.
func publishReleaseRunner(ctx context.Context, in Envelope, deps Deps) (Envelope, error) {
	if in.Meta == nil || in.Meta.Config == nil || in.Meta.Release == nil {
		return Envelope{}, fmt.Errorf("%s: missing release metadata", StagePublishRelease)
	}
	cfg := in.Meta.Config
	out := in
	meta := *in.Meta
	rel := *meta.Release
	meta.Release = &rel
	out.Meta = &meta

	if !gitver.IsReleaseTag(rel.Tag) {
		rel.Skipped = fmt.Sprintf("tag %q does not match v<semver>; artifacts retained without a release", rel.Tag)
		verbosef(out.Meta, deps, "%s", rel.Skipped)
		return out, nil
	}
	if cfg.Release.Repo == "" {
		return Envelope{}, fmt.Errorf("%s: missing required field: release.repo", StagePublishRelease)
	}
	token := config.GitHubToken()
	if token == "" {
		return Envelope{}, fmt.Errorf("%s: missing %s in environment", StagePublishRelease, config.EnvGitHubToken)
	}

	notes, err := os.ReadFile(rel.NotesPath)
	if err != nil {
		return Envelope{}, fmt.Errorf("%s: %v", StagePublishRelease, err)
	}

	pub := NewPublisher(token)
	name := fmt.Sprintf("%s %s", cfg.App.Name, rel.Version)
	record, err := pub.CreateOrUpdate(ctx, cfg.Release.Repo, rel.Tag, name, string(notes), cfg.Release.Draft)
	if err != nil {
		return Envelope{}, fmt.Errorf("%s: %v", StagePublishRelease, err)
	}
	rel.URL = record.HTMLURL

	records, envErrs := uploadAssets(ctx, pub, cfg, record.ID, out.Records, deps, out.Meta)
	out.Records = records
	if len(envErrs) > 0 {
		out.Errors = append(out.Errors, envErrs...)
		SortEnvelopeErrors(&out)
	}
	rel.Published = true
	return out, nil
}

func uploadAssets(ctx context.Context, pub Publisher, cfg *config.Config, releaseID int64, records []Record, deps Deps, meta *Meta) ([]Record, []Error) {
	out := append([]Record(nil), records...)
	var envErrs []Error
	for i, rec := range out {
		if rec.Error != nil || rec.Archive == nil {
			continue
		}
		if err := pub.UploadAsset(ctx, cfg.Release.Repo, releaseID, rec.Archive.Path); err != nil {
			envErrs = append(envErrs, failRecord(&out[i], StagePublishRelease, err.Error()))
			continue
		}
		verbosef(meta, deps, "uploaded %s", rec.Archive.Name)
	}
	return out, envErrs
}

func init() {
	Register(StageCollectArchives, collectArchivesRunner)
	Register(StageReleaseNotes, releaseNotesRunner)
	Register(StagePublishRelease, publishReleaseRunner)
}
