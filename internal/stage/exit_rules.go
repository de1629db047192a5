package stage

import "strconv"

const (
	exitCodeSuccess = 0
	exitCodeExecErr = 1
)

type runExitError struct {
	code int
	msg  string
}

func (e runExitError) Error() string { return e.msg }
func (e runExitError) ExitCode() int { return e.code }

func countRecordResults(records []Record) (successes int, failures int) {
	for _, r := range records {
		if r.Error != nil {
			failures++
		} else {
			successes++
		}
	}
	return
}

// requiredFailures counts failed records whose target is required.
// Optional targets degrade the run without failing it.
func requiredFailures(records []Record) int {
	n := 0
	for _, r := range records {
		if r.Required && r.Error != nil {
			n++
		}
	}
	return n
}

// EvaluateRunExit maps the final envelope to the process exit status.
// The pipeline as a whole fails only when a required target failed, never
// due to an optional or degraded step.
func EvaluateRunExit(env Envelope) error {
	if n := requiredFailures(env.Records); n > 0 {
		if n == 1 {
			return runExitError{code: exitCodeExecErr, msg: "1 required target failed"}
		}
		return runExitError{code: exitCodeExecErr, msg: strconv.Itoa(n) + " required targets failed"}
	}
	return nil
}
