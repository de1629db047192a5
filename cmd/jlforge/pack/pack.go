// Package pack implements the `jlforge package` command. The package
// name avoids the Go keyword.
package pack

import (
	"github.com/architeuthis-flux/jumperless-forge/cmd/jlforge/pipeline"
	"github.com/spf13/cobra"
)

var (
	cfgPath  string
	platform string
	arch     string
	verbose  bool
)

// Cmd represents the `jlforge package` command.
var Cmd = &cobra.Command{
	Use:           "package",
	Short:         "Assemble and archive release packages for the selected targets",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return pipeline.Execute(cmd.Context(), "package", pipeline.Options{
			ConfigPath: cfgPath,
			Platform:   platform,
			Arch:       arch,
			Verbose:    verbose,
		})
	},
}

func init() {
	Cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file (.cue)")
	Cmd.Flags().StringVar(&platform, "platform", "", "Target platform (linux, macos, windows); all configured targets when omitted")
	Cmd.Flags().StringVar(&arch, "arch", "", "Target architecture (x64, arm64)")
	Cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print per-step detail to stderr")
}
