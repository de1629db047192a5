package stage

import (
	"fmt"
	"os"
	"sync"
)

// verboseMu serializes verbose lines; per-record workers share deps.Out.
var verboseMu sync.Mutex

// verbosef writes a human-readable progress line when verbose mode is on.
func verbosef(meta *Meta, deps Deps, format string, args ...any) {
	if meta == nil || !meta.Verbose {
		return
	}
	w := deps.Out
	if w == nil {
		w = os.Stdout
	}
	verboseMu.Lock()
	defer verboseMu.Unlock()
	_, _ = fmt.Fprintf(w, format+"\n", args...)
}
