// Package stage implements the forge pipeline as a registry of named
// stages. Each stage transforms an Envelope carrying one record per
// build target; per-target failures are recorded on the record and never
// abort sibling targets.
package stage

import (
	"context"
	"io"
)

// Deps carries stage dependencies that tests may substitute.
type Deps struct {
	// Tools executes external tool invocations. Nil selects the real
	// process executor.
	Tools ToolRunner
	// Out receives human-readable per-step lines in verbose mode.
	Out io.Writer
}

// Runner executes a stage.
type Runner func(ctx context.Context, in Envelope, deps Deps) (Envelope, error)

var registry = map[string]Runner{}

// Register adds a stage runner.
func Register(name string, r Runner) {
	registry[name] = r
}

// Run executes a registered stage by name.
func Run(ctx context.Context, name string, in Envelope, deps Deps) (Envelope, error) {
	r, ok := registry[name]
	if !ok {
		return Envelope{}, ErrUnknown{name: name}
	}
	return r(ctx, in, deps)
}

// ErrUnknown is returned when a stage is not found.
type ErrUnknown struct{ name string }

func (e ErrUnknown) Error() string { return "unknown stage: " + e.name }
