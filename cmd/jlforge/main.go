package main

import (
	"os"
	"strings"

	"github.com/architeuthis-flux/jumperless-forge/cmd/jlforge/root"
)

type exitCoder interface {
	ExitCode() int
}

func main() {
	if err := root.Execute(os.Args[1:]); err != nil {
		// Print a short, single-line error to stderr on failures.
		// Do not print usage or stack traces.
		// An empty message means the failure was already reported on the
		// child's own streams; only the exit code is propagated.
		msg := strings.Join(strings.Fields(err.Error()), " ")
		if msg != "" {
			_, _ = os.Stderr.WriteString(msg + "\n")
		}
		code := 1
		if ec, ok := err.(exitCoder); ok {
			if c := ec.ExitCode(); c != 0 {
				code = c
			}
		}
		os.Exit(code)
	}
}
