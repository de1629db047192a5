package stage

import (
	"testing"

	"github.com/architeuthis-flux/jumperless-forge/internal/target"
)

func failedRecord(tgt target.Target, required bool) Record {
	return Record{
		Target:   tgt,
		Required: required,
		Error:    &RecError{Stage: StageCompile, Message: "boom"},
	}
}

func TestEvaluateRunExit_AllSucceeded(t *testing.T) {
	env := Envelope{Records: []Record{
		{Target: linuxX64, Required: true},
		{Target: windowsX64, Required: true},
	}}
	if err := EvaluateRunExit(env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEvaluateRunExit_OptionalFailureIsTolerated(t *testing.T) {
	env := Envelope{Records: []Record{
		{Target: linuxX64, Required: true},
		failedRecord(macosArm64, false),
	}}
	if err := EvaluateRunExit(env); err != nil {
		t.Fatalf("optional failure must not fail the run: %v", err)
	}
}

func TestEvaluateRunExit_RequiredFailure(t *testing.T) {
	env := Envelope{Records: []Record{
		{Target: linuxX64, Required: true},
		failedRecord(windowsX64, true),
	}}
	err := EvaluateRunExit(env)
	if err == nil {
		t.Fatalf("expected error")
	}
	if err.Error() != "1 required target failed" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	ec, ok := err.(interface{ ExitCode() int })
	if !ok || ec.ExitCode() != exitCodeExecErr {
		t.Fatalf("unexpected exit code")
	}
}

func TestEvaluateRunExit_MultipleRequiredFailures(t *testing.T) {
	env := Envelope{Records: []Record{
		failedRecord(linuxX64, true),
		failedRecord(windowsX64, true),
	}}
	err := EvaluateRunExit(env)
	if err == nil || err.Error() != "2 required targets failed" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEvaluateRunExit_DegradedIsNotFailure(t *testing.T) {
	env := Envelope{Records: []Record{{
		Target:   linuxX64,
		Required: true,
		Degraded: &RecError{Stage: StageCompile, Message: "boom"},
	}}}
	if err := EvaluateRunExit(env); err != nil {
		t.Fatalf("degraded record must not fail the run: %v", err)
	}
}
