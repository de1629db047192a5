package root

import (
	"github.com/architeuthis-flux/jumperless-forge/cmd/jlforge/build"
	"github.com/architeuthis-flux/jumperless-forge/cmd/jlforge/launch"
	"github.com/architeuthis-flux/jumperless-forge/cmd/jlforge/pack"
	"github.com/architeuthis-flux/jumperless-forge/cmd/jlforge/release"
	"github.com/architeuthis-flux/jumperless-forge/cmd/jlforge/verify"
	"github.com/architeuthis-flux/jumperless-forge/cmd/jlforge/version"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for jlforge.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jlforge",
		Short: "CLI: builds, packages, verifies and publishes Jumperless for every supported platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show help when no subcommand is provided.
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Subcommands
	cmd.AddCommand(version.VersionCmd)
	cmd.AddCommand(build.Cmd)
	cmd.AddCommand(pack.Cmd)
	cmd.AddCommand(verify.Cmd)
	cmd.AddCommand(release.Cmd)
	cmd.AddCommand(launch.Cmd)

	return cmd
}

// Execute runs the root command with provided args.
func Execute(args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}
