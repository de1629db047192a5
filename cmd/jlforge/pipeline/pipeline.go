// Package pipeline wires a CLI action to the stage registry: load the
// config, select targets, run the action's stages in order, render the
// final envelope as a single JSON line and map it to an exit status.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/architeuthis-flux/jumperless-forge/internal/config"
	"github.com/architeuthis-flux/jumperless-forge/internal/stage"
)

// Options carries the flags shared by the action commands.
type Options struct {
	ConfigPath string
	Platform   string
	Arch       string
	Tag        string
	NotesOut   string
	Verbose    bool

	Stdout io.Writer
	Stderr io.Writer
}

func (o *Options) setDefaults() {
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
}

// Execute runs one action end to end and returns the error that decides
// the process exit status.
func Execute(ctx context.Context, action string, opts Options) error {
	opts.setDefaults()
	if opts.ConfigPath == "" {
		return fmt.Errorf("missing required flag: --config")
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	specs, err := cfg.SelectTargets(opts.Platform, opts.Arch)
	if err != nil {
		return err
	}
	names, err := stage.ActionStages(action)
	if err != nil {
		return err
	}

	env := stage.NewEnvelope(&cfg, specs, opts.Verbose)
	env.Meta.Tag = opts.Tag

	out, err := stage.RunStages(ctx, names, env, stage.Deps{Out: opts.Stderr})
	if err != nil {
		return err
	}
	if err := copyNotes(out, opts.NotesOut); err != nil {
		return err
	}
	if err := renderEnvelope(out, opts.Stdout); err != nil {
		return err
	}
	return stage.EvaluateRunExit(out)
}

// copyNotes duplicates the generated release notes to a caller-chosen path.
func copyNotes(out stage.Envelope, dest string) error {
	if dest == "" || out.Meta == nil || out.Meta.Release == nil || out.Meta.Release.NotesPath == "" {
		return nil
	}
	data, err := os.ReadFile(out.Meta.Release.NotesPath)
	if err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}

// encodeJSON returns the JSON encoding string with HTML escaping disabled.
func encodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// renderEnvelope writes the full envelope as one JSON line, errors sorted.
func renderEnvelope(out stage.Envelope, w io.Writer) error {
	stage.SortEnvelopeErrors(&out)
	s, err := encodeJSON(out)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, s)
	return err
}
