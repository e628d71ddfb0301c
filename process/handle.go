package process

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/iconoclast/childprocess/errors"
	"github.com/iconoclast/childprocess/logger"
)

// State is the lifecycle phase of a started child.
type State int

const (
	// StateStarted means the child was created and has not been probed yet.
	StateStarted State = iota
	// StateRunning means a probe observed the child alive.
	StateRunning
	// StateExited means a probe observed the exit; it is terminal.
	StateExited
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateStarted:
		return "started"
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	default:
		return "unknown"
	}
}

// Handle is a started child process. It is safe for concurrent use.
type Handle struct {
	id      string
	pid     int
	path    string
	scope   StopScope
	started time.Time
	cfg     Config
	proc    native
	ends    *endpoints
	span    trace.SpanContext
	log     *logger.Logger

	mu     sync.Mutex
	state  State
	status exitStatus
}

func newHandle(ctx context.Context, proc native, path string, scope StopScope, ends *endpoints) *Handle {
	h := &Handle{
		id:      uuid.NewString(),
		pid:     proc.pid(),
		path:    path,
		scope:   scope,
		started: time.Now(),
		cfg:     CurrentConfig(),
		proc:    proc,
		ends:    ends,
		span:    trace.SpanContextFromContext(ctx),
		state:   StateStarted,
	}
	h.log = logger.Get("process").WithContext(ctx).WithFields(logger.Fields(
		logger.FieldPID, h.pid,
		logger.FieldHandleID, h.id,
	))
	return h
}

// ID returns a unique identifier used to correlate logs and traces.
func (h *Handle) ID() string { return h.id }

// Pid returns the operating-system process id.
func (h *Handle) Pid() int { return h.pid }

// Path returns the resolved executable path.
func (h *Handle) Path() string { return h.path }

// StartedAt returns when the child was created.
func (h *Handle) StartedAt() time.Time { return h.started }

// Scope returns the stop scope in effect for this child.
func (h *Handle) Scope() StopScope { return h.scope }

// Stdin returns the writable end of the child's stdin pipe, or nil when
// stdin is not a pipe. Close it to deliver end-of-file.
func (h *Handle) Stdin() io.WriteCloser { return h.ends.stdin() }

// Stdout returns the readable end of the child's stdout pipe, or nil.
func (h *Handle) Stdout() io.ReadCloser { return h.ends.output(roleStdout) }

// Stderr returns the readable end of the child's stderr pipe, or nil.
func (h *Handle) Stderr() io.ReadCloser { return h.ends.output(roleStderr) }

// State returns the last observed lifecycle phase without probing.
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// IsAlive probes the child once without blocking.
func (h *Handle) IsAlive() bool {
	exited, err := h.poll()
	if err != nil {
		h.log.Warn("liveness probe failed", logger.ErrorFields("probe", err))
		return true
	}
	return !exited
}

// Exited probes the child once and reports whether it has exited.
func (h *Handle) Exited() bool {
	return !h.IsAlive()
}

// ExitCode returns the child's exit code. A child killed by a signal on
// POSIX reports the signal number. Before the exit is observed it returns
// an INVALID_STATE error.
func (h *Handle) ExitCode() (int, error) {
	exited, err := h.poll()
	if err != nil {
		return 0, err
	}
	if !exited {
		return 0, errors.InvalidState("read exit code", "running")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status.code, nil
}

// Crashed reports whether the child exited with a non-zero code.
func (h *Handle) Crashed() (bool, error) {
	code, err := h.ExitCode()
	if err != nil {
		return false, err
	}
	return code != 0, nil
}

// Signaled reports the signal that terminated the child, if any.
func (h *Handle) Signaled() (os.Signal, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != StateExited || h.status.sig == 0 {
		return nil, false
	}
	return h.status.sig, true
}

// Wait polls until the child exits or timeout elapses and returns the exit
// code. A timeout is a TIMEOUT error and leaves the child running; a
// timeout <= 0 probes exactly once.
func (h *Handle) Wait(timeout time.Duration) (int, error) {
	deadline := time.Now().Add(timeout)
	for {
		exited, err := h.poll()
		if err != nil {
			return 0, err
		}
		if exited {
			return h.exitCode(), nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return 0, errors.Timeout("wait", timeout).WithDetail("pid", h.pid)
		}
		time.Sleep(min(h.cfg.PollInterval, remaining))
	}
}

// WaitContext polls until the child exits or ctx is done, in which case it
// returns ctx.Err() and leaves the child running.
func (h *Handle) WaitContext(ctx context.Context) (int, error) {
	ticker := time.NewTicker(h.cfg.PollInterval)
	defer ticker.Stop()
	for {
		exited, err := h.poll()
		if err != nil {
			return 0, err
		}
		if exited {
			return h.exitCode(), nil
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (h *Handle) exitCode() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status.code
}

// poll probes once and records the exit the first time it is seen.
func (h *Handle) poll() (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == StateExited {
		return true, nil
	}
	status, exited, err := h.proc.probe()
	if err != nil {
		return false, errors.Internal(err).WithDetail("pid", h.pid)
	}
	if !exited {
		h.state = StateRunning
		return false, nil
	}

	h.state = StateExited
	h.status = status
	h.proc.release()

	ctx := trace.ContextWithSpanContext(context.Background(), h.span)
	processMetrics().RecordExit(ctx, status.code != 0)
	fields := logger.MergeWithDuration(logger.Fields(logger.FieldExitCode, status.code), time.Since(h.started))
	if status.sig != 0 {
		fields[logger.FieldSignal] = status.sig.String()
	}
	h.log.Debug("process exited", fields)
	return true, nil
}
