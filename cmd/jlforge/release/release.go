package release

import (
	"fmt"

	"github.com/architeuthis-flux/jumperless-forge/cmd/jlforge/pipeline"
	"github.com/spf13/cobra"
)

var (
	cfgPath  string
	tag      string
	notesOut string
	verbose  bool
)

// Cmd represents the `jlforge release` command. A release record is only
// created for tags matching v<semver>; other tags keep their archives
// without publishing.
var Cmd = &cobra.Command{
	Use:           "release",
	Short:         "Publish archived packages as a tagged release",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tag == "" {
			return fmt.Errorf("missing required flag: --tag")
		}
		return pipeline.Execute(cmd.Context(), "release", pipeline.Options{
			ConfigPath: cfgPath,
			Tag:        tag,
			NotesOut:   notesOut,
			Verbose:    verbose,
		})
	},
}

func init() {
	Cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file (.cue)")
	Cmd.Flags().StringVar(&tag, "tag", "", "Trigger tag (publishes only for vX.Y.Z)")
	Cmd.Flags().StringVar(&notesOut, "notes-out", "", "Also write the generated release notes to this path")
	Cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print per-step detail to stderr")
}
