package stage

import (
	"github.com/architeuthis-flux/jumperless-forge/internal/config"
	"github.com/architeuthis-flux/jumperless-forge/internal/target"
)

// Error is an envelope-level error attributed to a stage and target.
type Error struct {
	Stage   string `json:"stage"`
	Target  string `json:"target,omitempty"`
	Message string `json:"message"`
}

// RecError is a per-record error payload.
type RecError struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// ArtifactInfo describes the compiled native artifact for one target.
type ArtifactInfo struct {
	Path      string `json:"path"`
	Bundle    bool   `json:"bundle,omitempty"`
	IconUsed  bool   `json:"iconUsed,omitempty"`
	Signed    bool   `json:"signed,omitempty"`
	Notarized bool   `json:"notarized,omitempty"`
}

// PackageInfo describes the assembled package directory for one target.
type PackageInfo struct {
	Dir            string `json:"dir"`
	NativeIncluded bool   `json:"nativeIncluded"`
	ManifestPath   string `json:"manifestPath,omitempty"`
}

// ArchiveInfo describes the compressed release archive for one target.
type ArchiveInfo struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// SmokeInfo holds per-check verification outcomes.
type SmokeInfo struct {
	Structure  bool `json:"structure"`
	Executable bool `json:"executable"`
	Fallback   bool `json:"fallback"`
}

// Record is the per-target shape in the envelope. Using a struct keeps
// JSON field ordering deterministic.
type Record struct {
	Target   target.Target `json:"target"`
	Required bool          `json:"required"`
	Version  string        `json:"version,omitempty"`
	Artifact *ArtifactInfo `json:"artifact,omitempty"`
	Package  *PackageInfo  `json:"package,omitempty"`
	Archive  *ArchiveInfo  `json:"archive,omitempty"`
	DMG      *ArchiveInfo  `json:"dmg,omitempty"`
	Smoke    *SmokeInfo    `json:"smoke,omitempty"`
	// Degraded records a build-stage failure that packaging absorbed by
	// shipping a pure-fallback package. It does not fail the target.
	Degraded *RecError `json:"degraded,omitempty"`
	Error    *RecError `json:"error,omitempty"`
}

// ReleaseMeta records the release-publisher outcome for a run.
type ReleaseMeta struct {
	Tag       string `json:"tag,omitempty"`
	Version   string `json:"version,omitempty"`
	Published bool   `json:"published"`
	Skipped   string `json:"skipped,omitempty"`
	URL       string `json:"url,omitempty"`
	NotesPath string `json:"notesPath,omitempty"`
}

// Meta holds run-wide settings and results shared by all stages.
type Meta struct {
	Config  *config.Config `json:"-"`
	Verbose bool           `json:"verbose,omitempty"`
	Tag     string         `json:"tag,omitempty"`
	Version string         `json:"version,omitempty"`
	Release *ReleaseMeta   `json:"release,omitempty"`
}

// Envelope is the JSON-serializable contract between stages. Field order
// is stable to keep JSON deterministic in tests.
type Envelope struct {
	Records []Record `json:"records"`
	Meta    *Meta    `json:"meta,omitempty"`
	Errors  []Error  `json:"errors,omitempty"`
}

// NewEnvelope builds the initial envelope for the selected targets.
func NewEnvelope(cfg *config.Config, specs []config.TargetSpec, verbose bool) Envelope {
	env := Envelope{Meta: &Meta{Config: cfg, Verbose: verbose}}
	for _, ts := range specs {
		env.Records = append(env.Records, Record{Target: ts.Target, Required: ts.Required})
	}
	return env
}
