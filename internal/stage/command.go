package stage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"
)

const (
	defaultCaptureMaxBytes = 1 << 20
	defaultTermGraceMs     = 2000
)

// ToolSpec describes one external tool invocation.
type ToolSpec struct {
	Program   string
	Args      []string
	Dir       string
	Env       map[string]string
	TimeoutMs int
}

// ToolResult is the outcome of one external tool invocation. A timeout is
// reported via TimedOut and treated by callers identically to a failure.
type ToolResult struct {
	ExitCode        int
	Stdout          string
	Stderr          string
	StdoutTruncated bool
	StderrTruncated bool
	TimedOut        bool
	ErrorMsg        string
}

// Failed reports whether the invocation must be treated as a tool failure.
func (r ToolResult) Failed() bool {
	return r.TimedOut || r.ExitCode != 0 || r.ErrorMsg != ""
}

// Diagnostic returns a single-line human-readable failure description.
func (r ToolResult) Diagnostic(program string) string {
	switch {
	case r.TimedOut:
		return fmt.Sprintf("%s timed out", program)
	case r.ErrorMsg != "":
		return r.ErrorMsg
	default:
		msg := fmt.Sprintf("%s exited with code %d", program, r.ExitCode)
		if s := sanitizeErrorMessage(r.Stderr); s != "error" && s != "" && r.Stderr != "" {
			msg += ": " + s
		}
		return msg
	}
}

// ToolRunner executes an external tool. Tests substitute fakes.
type ToolRunner func(ctx context.Context, spec ToolSpec) ToolResult

// RunTool returns the runner from deps, falling back to the real executor.
func (d Deps) RunTool() ToolRunner {
	if d.Tools != nil {
		return d.Tools
	}
	return execTool
}

type limitedBuffer struct {
	max       int
	buf       bytes.Buffer
	truncated bool
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if b.max <= 0 {
		return n, nil
	}
	remain := b.max - b.buf.Len()
	if remain > 0 {
		if remain > len(p) {
			remain = len(p)
		}
		_, _ = b.buf.Write(p[:remain])
	}
	if len(p) > remain {
		b.truncated = true
	}
	return n, nil
}

func (b *limitedBuffer) String() string { return b.buf.String() }

// execTool runs the program in its own process group, enforcing the
// caller-imposed timeout with SIGTERM then SIGKILL after a grace period.
func execTool(ctx context.Context, spec ToolSpec) ToolResult {
	cmd := exec.Command(spec.Program, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = applyEnvOverlay(os.Environ(), spec.Env)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	outBuf := &limitedBuffer{max: defaultCaptureMaxBytes}
	errBuf := &limitedBuffer{max: defaultCaptureMaxBytes}
	cmd.Stdout = outBuf
	cmd.Stderr = errBuf

	if err := cmd.Start(); err != nil {
		var ee *exec.Error
		if errors.As(err, &ee) {
			return ToolResult{ExitCode: -1, ErrorMsg: fmt.Sprintf("program %s not found", spec.Program)}
		}
		return ToolResult{ExitCode: -1, ErrorMsg: fmt.Sprintf("program %s start failed", spec.Program)}
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	timeout := spec.TimeoutMs
	if timeout <= 0 {
		timeout = 60000
	}
	timer := time.NewTimer(time.Duration(timeout) * time.Millisecond)
	defer timer.Stop()

	var runErr error
	timedOut := false
	select {
	case runErr = <-done:
	case <-ctx.Done():
		timedOut = true
		terminate(cmd, done)
	case <-timer.C:
		timedOut = true
		terminate(cmd, done)
	}

	res := ToolResult{
		Stdout:          outBuf.String(),
		Stderr:          errBuf.String(),
		StdoutTruncated: outBuf.truncated,
		StderrTruncated: errBuf.truncated,
		TimedOut:        timedOut,
	}
	if timedOut {
		res.ExitCode = -2
		return res
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res
		}
		res.ExitCode = -1
		res.ErrorMsg = fmt.Sprintf("program %s execution failed", spec.Program)
		return res
	}
	return res
}

func terminate(cmd *exec.Cmd, done <-chan error) {
	signalProcess(cmd, syscall.SIGTERM)
	grace := time.NewTimer(time.Duration(defaultTermGraceMs) * time.Millisecond)
	defer grace.Stop()
	select {
	case <-done:
	case <-grace.C:
		signalProcess(cmd, syscall.SIGKILL)
		<-done
	}
}

func signalProcess(cmd *exec.Cmd, sig syscall.Signal) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	pid := cmd.Process.Pid
	if pid > 0 {
		if err := syscall.Kill(-pid, sig); err == nil {
			return
		}
	}
	_ = cmd.Process.Signal(sig)
}

func applyEnvOverlay(base []string, overlay map[string]string) []string {
	if len(overlay) == 0 {
		return append([]string(nil), base...)
	}
	m := map[string]string{}
	for _, kv := range base {
		i := -1
		for j := 0; j < len(kv); j++ {
			if kv[j] == '=' {
				i = j
				break
			}
		}
		if i <= 0 {
			continue
		}
		m[kv[:i]] = kv[i+1:]
	}
	for k, v := range overlay {
		m[k] = v
	}
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+v)
	}
	return out
}
