package stage

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestExecTool_CapturesOutput(t *testing.T) {
	res := execTool(context.Background(), ToolSpec{
		Program: "/bin/sh",
		Args:    []string{"-c", "echo out; echo err >&2"},
	})
	if res.Failed() {
		t.Fatalf("unexpected failure: %+v", res)
	}
	if strings.TrimSpace(res.Stdout) != "out" || strings.TrimSpace(res.Stderr) != "err" {
		t.Fatalf("unexpected capture: stdout=%q stderr=%q", res.Stdout, res.Stderr)
	}
}

func TestExecTool_ExitCode(t *testing.T) {
	res := execTool(context.Background(), ToolSpec{
		Program: "/bin/sh",
		Args:    []string{"-c", "exit 3"},
	})
	if !res.Failed() || res.ExitCode != 3 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestExecTool_ProgramNotFound(t *testing.T) {
	res := execTool(context.Background(), ToolSpec{Program: "definitely-not-a-real-tool"})
	if !res.Failed() {
		t.Fatalf("expected failure")
	}
	if !strings.Contains(res.ErrorMsg, "not found") {
		t.Fatalf("unexpected error message: %q", res.ErrorMsg)
	}
}

func TestExecTool_Timeout(t *testing.T) {
	start := time.Now()
	res := execTool(context.Background(), ToolSpec{
		Program:   "/bin/sh",
		Args:      []string{"-c", "sleep 30"},
		TimeoutMs: 100,
	})
	if !res.TimedOut || !res.Failed() {
		t.Fatalf("expected timeout: %+v", res)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Fatalf("termination took too long: %v", elapsed)
	}
}

func TestExecTool_EnvOverlay(t *testing.T) {
	res := execTool(context.Background(), ToolSpec{
		Program: "/bin/sh",
		Args:    []string{"-c", "echo $FORGE_TEST_VALUE"},
		Env:     map[string]string{"FORGE_TEST_VALUE": "overlay"},
	})
	if strings.TrimSpace(res.Stdout) != "overlay" {
		t.Fatalf("env overlay not applied: %q", res.Stdout)
	}
}

func TestLimitedBuffer_Truncates(t *testing.T) {
	b := &limitedBuffer{max: 4}
	n, err := b.Write([]byte("123456"))
	if err != nil || n != 6 {
		t.Fatalf("unexpected write result: %d %v", n, err)
	}
	if b.String() != "1234" || !b.truncated {
		t.Fatalf("unexpected buffer state: %q truncated=%v", b.String(), b.truncated)
	}
}

func TestToolResult_Diagnostic(t *testing.T) {
	cases := []struct {
		res  ToolResult
		want string
	}{
		{ToolResult{TimedOut: true}, "pyinstaller timed out"},
		{ToolResult{ErrorMsg: "program pyinstaller not found"}, "program pyinstaller not found"},
		{ToolResult{ExitCode: 2, Stderr: "bad  flag\n"}, "pyinstaller exited with code 2: bad flag"},
		{ToolResult{ExitCode: 1}, "pyinstaller exited with code 1"},
	}
	for _, c := range cases {
		if got := c.res.Diagnostic("pyinstaller"); got != c.want {
			t.Fatalf("Diagnostic: got %q want %q", got, c.want)
		}
	}
}
