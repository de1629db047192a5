package stage

import (
	"sort"
	"strings"
)

func sanitizeErrorMessage(msg string) string {
	s := strings.Join(strings.Fields(msg), " ")
	if s == "" {
		return "error"
	}
	return s
}

// SortEnvelopeErrors sorts errors by (stage, target, message) deterministically.
func SortEnvelopeErrors(env *Envelope) {
	if env == nil || len(env.Errors) == 0 {
		return
	}
	sort.Slice(env.Errors, func(i, j int) bool {
		ei, ej := env.Errors[i], env.Errors[j]
		if ei.Stage != ej.Stage {
			return ei.Stage < ej.Stage
		}
		if ei.Target != ej.Target {
			return ei.Target < ej.Target
		}
		return ei.Message < ej.Message
	})
}

// failRecord marks a record failed in stageName and returns the matching
// envelope-level error. Records that already failed are left untouched by
// stages; this is only called on live records.
func failRecord(rec *Record, stageName, msg string) Error {
	msg = sanitizeErrorMessage(msg)
	rec.Error = &RecError{Stage: stageName, Message: msg}
	return Error{Stage: stageName, Target: rec.Target.String(), Message: msg}
}
