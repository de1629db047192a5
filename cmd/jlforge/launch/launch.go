package launch

import (
	"github.com/architeuthis-flux/jumperless-forge/internal/launcher"
	"github.com/spf13/cobra"
)

// exitStatusError propagates the application's exit code without adding
// a diagnostic line of its own; the application already reported the
// failure on its own streams.
type exitStatusError struct{ code int }

func (e exitStatusError) Error() string { return "" }
func (e exitStatusError) ExitCode() int { return e.code }

var (
	dir          string
	entrypoint   string
	requirements string
	interpreter  string
	cacheDir     string
)

// Cmd represents the `jlforge launch` command: run the interpreter
// fallback bundle, forwarding arguments and propagating the exit code.
var Cmd = &cobra.Command{
	Use:           "launch [flags] -- [app args...]",
	Short:         "Run the interpreter fallback bundle",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := launcher.Run(cmd.Context(), launcher.Options{
			Dir:          dir,
			Entrypoint:   entrypoint,
			Requirements: requirements,
			Interpreter:  interpreter,
			CacheDir:     cacheDir,
			Args:         args,
		})
		if err != nil {
			return err
		}
		if code != 0 {
			return exitStatusError{code: code}
		}
		return nil
	},
}

func init() {
	Cmd.Flags().StringVar(&dir, "dir", ".", "Fallback bundle directory")
	Cmd.Flags().StringVar(&entrypoint, "entrypoint", "launcher.py", "Entry source file, relative to --dir")
	Cmd.Flags().StringVar(&requirements, "requirements", "requirements.txt", "Dependency manifest, relative to --dir")
	Cmd.Flags().StringVar(&interpreter, "interpreter", "", "Interpreter to use; searched on PATH when empty")
	Cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Dependency cache root")
}
