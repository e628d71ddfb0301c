package process_test

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/iconoclast/childprocess/errors"
	"github.com/iconoclast/childprocess/process"
)

func helperCommand(t *testing.T, mode string, args ...string) process.Command {
	t.Helper()
	argv := helperArgv(t, mode, args...)
	return process.Command{
		Binary: argv[0],
		Args:   argv[1:],
		Env:    []string{helperEnv + "=1"},
	}
}

func TestRunCapturesStdout(t *testing.T) {
	result, err := process.Run(context.Background(), helperCommand(t, "print", "hello world"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := string(result.Stdout); got != "hello world" {
		t.Fatalf("expected 'hello world', got %q", got)
	}
	if result.ExitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", result.ExitCode)
	}
}

func TestRunCapturesStderr(t *testing.T) {
	result, err := process.Run(context.Background(), helperCommand(t, "stderr", "oops"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := string(result.Stderr); got != "oops" {
		t.Fatalf("expected stderr 'oops', got %q", got)
	}
	if len(result.Stdout) != 0 {
		t.Fatalf("expected empty stdout, got %q", result.Stdout)
	}
}

func TestRunStdin(t *testing.T) {
	cmd := helperCommand(t, "echo")
	cmd.Stdin = strings.NewReader("piped input")
	result, err := process.Run(context.Background(), cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := string(result.Stdout); got != "piped input" {
		t.Fatalf("expected 'piped input', got %q", got)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	result, err := process.Run(context.Background(), helperCommand(t, "exit", "42"))
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if !errors.HasCode(err, errors.ErrCodeExitStatus) {
		t.Fatalf("expected EXIT_STATUS, got %v", err)
	}
	if result == nil || result.ExitCode != 42 {
		t.Fatalf("expected exit code 42, got %+v", result)
	}
}

func TestRunContextCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	cmd := helperCommand(t, "sleep", "30s")
	cmd.GracePeriod = time.Second
	result, err := process.Run(ctx, cmd)
	if err == nil {
		t.Fatal("expected error from context cancellation")
	}
	if !errors.HasCode(err, errors.ErrCodeTimeout) {
		t.Fatalf("expected TIMEOUT, got %v", err)
	}
	if !stderrors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected the context error as cause, got %v", err)
	}
	if result.Duration > 5*time.Second {
		t.Fatalf("process took too long to stop: %v", result.Duration)
	}
}

func TestRunEmptyBinary(t *testing.T) {
	_, err := process.Run(context.Background(), process.Command{})
	if !errors.HasCode(err, errors.ErrCodeMissingField) {
		t.Fatalf("expected MISSING_FIELD, got %v", err)
	}
}

func TestRunMalformedEnv(t *testing.T) {
	cmd := helperCommand(t, "print", "x")
	cmd.Env = append(cmd.Env, "NOEQUALS")
	_, err := process.Run(context.Background(), cmd)
	if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestRunDuration(t *testing.T) {
	result, err := process.Run(context.Background(), helperCommand(t, "sleep", "100ms"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Duration < 50*time.Millisecond {
		t.Fatalf("duration too short: %v", result.Duration)
	}
}

func TestRunEnv(t *testing.T) {
	cmd := helperCommand(t, "env", "MY_TEST_VAR")
	cmd.Env = append(cmd.Env, "MY_TEST_VAR=hello123")
	result, err := process.Run(context.Background(), cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out := strings.TrimSpace(string(result.Stdout)); out != `{"MY_TEST_VAR":"hello123"}` {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRunUnset(t *testing.T) {
	t.Setenv("CHILDPROC_DROP_ME", "present")
	cmd := helperCommand(t, "env", "CHILDPROC_DROP_ME")
	cmd.Unset = []string{"CHILDPROC_DROP_ME"}
	result, err := process.Run(context.Background(), cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out := strings.TrimSpace(string(result.Stdout)); out != `{"CHILDPROC_DROP_ME":null}` {
		t.Fatalf("unexpected output %q", out)
	}
}
