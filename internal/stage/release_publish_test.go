package stage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/architeuthis-flux/jumperless-forge/internal/config"
	"github.com/architeuthis-flux/jumperless-forge/internal/release"
)

// fakePublisher records release API calls.
type fakePublisher struct {
	created   int
	uploads   []string
	uploadErr error
}

func (f *fakePublisher) CreateOrUpdate(_ context.Context, repo, tag, name, body string, draft bool) (*release.Release, error) {
	f.created++
	return &release.Release{ID: 42, TagName: tag, HTMLURL: "https://example.test/releases/" + tag}, nil
}

func (f *fakePublisher) UploadAsset(_ context.Context, repo string, releaseID int64, path string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads = append(f.uploads, filepath.Base(path))
	return nil
}

func withPublisher(t *testing.T, pub Publisher) {
	t.Helper()
	orig := NewPublisher
	NewPublisher = func(string) Publisher { return pub }
	t.Cleanup(func() { NewPublisher = orig })
}

// releaseEnv creates archives on disk matching the configured targets.
func releaseEnv(t *testing.T, cfg *config.Config, tag string) Envelope {
	t.Helper()
	if err := os.MkdirAll(cfg.Build.OutDir, 0o755); err != nil {
		t.Fatal(err)
	}
	env := envelopeFor(cfg, "", linuxX64, windowsX64)
	env.Meta.Tag = tag
	for _, rec := range env.Records {
		name := rec.Target.ArchiveName(cfg.App.Name)
		if err := os.WriteFile(filepath.Join(cfg.Build.OutDir, name), []byte("archive"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return env
}

func TestCollectArchives_MissingArchiveFailsRecord(t *testing.T) {
	cfg := testConfig(t)
	if err := os.MkdirAll(cfg.Build.OutDir, 0o755); err != nil {
		t.Fatal(err)
	}
	env := envelopeFor(cfg, "", linuxX64)
	env.Meta.Tag = "v1.0.0"

	out, err := Run(context.Background(), StageCollectArchives, env, Deps{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := out.Records[0]
	if rec.Error == nil || !strings.Contains(rec.Error.Message, "archive not found") {
		t.Fatalf("expected missing-archive failure: %+v", rec.Error)
	}
}

func TestRelease_NonReleaseTagSkipsPublishing(t *testing.T) {
	cfg := testConfig(t)
	cfg.Release.Repo = "architeuthis-flux/jumperless"
	pub := &fakePublisher{}
	withPublisher(t, pub)
	t.Setenv(config.EnvGitHubToken, "token")
	env := releaseEnv(t, cfg, "nightly-2026-08-26")

	names, err := ActionStages("release")
	if err != nil {
		t.Fatal(err)
	}
	out, err := RunStages(context.Background(), names, env, Deps{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rel := out.Meta.Release
	if rel == nil {
		t.Fatalf("release metadata missing")
	}
	if rel.Published || rel.Skipped == "" {
		t.Fatalf("non-release tag must skip publishing: %+v", rel)
	}
	if pub.created != 0 {
		t.Fatalf("publisher was called for a non-release tag")
	}
	// Archives and notes are retained regardless.
	if _, err := os.Stat(rel.NotesPath); err != nil {
		t.Fatalf("release notes missing: %v", err)
	}
	for _, rec := range out.Records {
		if rec.Archive == nil {
			t.Fatalf("archive collection lost: %+v", rec)
		}
	}
}

func TestRelease_PublishesForReleaseTag(t *testing.T) {
	cfg := testConfig(t)
	cfg.Release.Repo = "architeuthis-flux/jumperless"
	pub := &fakePublisher{}
	withPublisher(t, pub)
	t.Setenv(config.EnvGitHubToken, "token")
	env := releaseEnv(t, cfg, "v5.2.0")

	names, err := ActionStages("release")
	if err != nil {
		t.Fatal(err)
	}
	out, err := RunStages(context.Background(), names, env, Deps{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rel := out.Meta.Release
	if rel == nil || !rel.Published {
		t.Fatalf("expected a published release: %+v", rel)
	}
	if rel.Version != "5.2.0" {
		t.Fatalf("unexpected release version: %q", rel.Version)
	}
	if rel.URL == "" {
		t.Fatalf("release URL missing")
	}
	if pub.created != 1 {
		t.Fatalf("release record created %d times", pub.created)
	}
	if len(pub.uploads) != 2 {
		t.Fatalf("expected 2 asset uploads, got %v", pub.uploads)
	}
}

func TestRelease_MissingTokenFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.Release.Repo = "architeuthis-flux/jumperless"
	withPublisher(t, &fakePublisher{})
	t.Setenv(config.EnvGitHubToken, "")
	env := releaseEnv(t, cfg, "v1.0.0")

	names, err := ActionStages("release")
	if err != nil {
		t.Fatal(err)
	}
	_, err = RunStages(context.Background(), names, env, Deps{})
	if err == nil || !strings.Contains(err.Error(), config.EnvGitHubToken) {
		t.Fatalf("expected missing token error, got %v", err)
	}
}

func TestRelease_UploadFailureFailsRecord(t *testing.T) {
	cfg := testConfig(t)
	cfg.Release.Repo = "architeuthis-flux/jumperless"
	pub := &fakePublisher{uploadErr: errors.New("asset rejected")}
	withPublisher(t, pub)
	t.Setenv(config.EnvGitHubToken, "token")
	env := releaseEnv(t, cfg, "v5.2.0")

	names, err := ActionStages("release")
	if err != nil {
		t.Fatal(err)
	}
	out, err := RunStages(context.Background(), names, env, Deps{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, rec := range out.Records {
		if rec.Error == nil || rec.Error.Stage != StagePublishRelease {
			t.Fatalf("upload failure not recorded: %+v", rec.Error)
		}
	}
	if len(out.Errors) != 2 {
		t.Fatalf("unexpected envelope errors: %+v", out.Errors)
	}
}
