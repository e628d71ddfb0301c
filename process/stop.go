package process

import (
	"context"
	"time"

	gops "github.com/shirou/gopsutil/v4/process"
	"go.opentelemetry.io/otel/trace"

	"github.com/iconoclast/childprocess/errors"
	"github.com/iconoclast/childprocess/logger"
	"github.com/iconoclast/childprocess/observability"
)

// Stop terminates the child: a graceful request (SIGTERM, or CTRL_BREAK on
// Windows), a wait of up to timeout, forceful termination (SIGKILL or
// TerminateProcess), and a final wait bounded by Config.KillTimeout. If the
// child is still alive after that, Stop returns an ESCALATION_FAILED error.
// A child that has already exited is left alone. timeout <= 0 uses
// Config.StopTimeout.
//
// With ScopeGroup, Stop is done only once every member of the group or job
// is gone; members outliving the leader are killed like the leader.
func (h *Handle) Stop(timeout time.Duration) error {
	_, err := h.stop(timeout)
	return err
}

// stop runs the escalation and reports whether forceful termination was needed.
func (h *Handle) stop(timeout time.Duration) (bool, error) {
	if timeout <= 0 {
		timeout = h.cfg.StopTimeout
	}
	if !h.IsAlive() && !h.groupLingers() {
		return false, nil
	}

	ctx := trace.ContextWithSpanContext(context.Background(), h.span)
	ctx, span := observability.StartSpan(ctx, observability.SpanProcessStop)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrPID, h.pid)
	observability.SetSpanAttribute(ctx, observability.AttrScope, h.scope.String())

	begin := time.Now()
	escalated, err := h.escalate(timeout)
	observability.SetSpanAttribute(ctx, observability.AttrEscalated, escalated)
	if err != nil {
		observability.SetSpanError(ctx, err)
		h.log.Error("stop failed", logger.MergeWithError(logger.Fields(
			logger.FieldEscalated, escalated,
			logger.FieldScope, h.scope.String(),
		), err))
		return escalated, err
	}

	elapsed := time.Since(begin)
	processMetrics().RecordStop(ctx, h.scope.String(), elapsed, escalated)
	fields := logger.DurationFields("stop", elapsed)
	fields[logger.FieldEscalated] = escalated
	fields[logger.FieldScope] = h.scope.String()
	h.log.Debug("process stopped", fields)
	return escalated, nil
}

func (h *Handle) escalate(timeout time.Duration) (bool, error) {
	tree := h.snapshot(nil)
	if err := h.deliver(true, tree); err != nil {
		h.log.Warn("graceful termination request failed", logger.ErrorFields("signal", err))
	}
	err := h.awaitStop(timeout)
	if err == nil {
		return false, nil
	}
	if !errors.HasCode(err, errors.ErrCodeTimeout) {
		return false, err
	}

	h.log.Warn("process ignored graceful termination, killing", logger.Fields(
		logger.FieldScope, h.scope.String(),
		"waited_ms", timeout.Milliseconds(),
	))
	tree = h.snapshot(tree)
	killErr := h.deliver(false, tree)
	if err := h.awaitStop(h.cfg.KillTimeout); err != nil {
		if !errors.HasCode(err, errors.ErrCodeTimeout) {
			return true, err
		}
		return true, errors.EscalationFailed(h.pid, h.cfg.KillTimeout).WithCause(killErr)
	}
	return true, nil
}

// awaitStop polls like Wait until the child has exited and, for
// ScopeGroup, the rest of its group or job is gone too.
func (h *Handle) awaitStop(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		exited, err := h.poll()
		if err != nil {
			return err
		}
		if exited && !h.groupLingers() {
			return nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return errors.Timeout("stop", timeout).WithDetail("pid", h.pid)
		}
		time.Sleep(min(h.cfg.PollInterval, remaining))
	}
}

// groupLingers reports whether ScopeGroup members are still running.
func (h *Handle) groupLingers() bool {
	return h.scope == ScopeGroup && h.proc.groupAlive()
}

// snapshot collects descendants for ScopeTree, keeping earlier entries so
// children orphaned between steps are still reached.
func (h *Handle) snapshot(prev []*gops.Process) []*gops.Process {
	if h.scope != ScopeTree {
		return nil
	}
	seen := make(map[int32]bool, len(prev))
	out := append([]*gops.Process(nil), prev...)
	for _, p := range prev {
		seen[p.Pid] = true
	}
	for _, p := range descendants(h.pid) {
		if !seen[p.Pid] {
			seen[p.Pid] = true
			out = append(out, p)
		}
	}
	return out
}

// deliver signals the descendants first, then the child itself. Descendants
// whose pid now names a different process are skipped. An exited child is
// only signaled for ScopeGroup, where the signal targets the group.
func (h *Handle) deliver(graceful bool, tree []*gops.Process) error {
	for _, p := range tree {
		if !current(p) {
			continue
		}
		if err := signalPID(int(p.Pid), graceful); err != nil {
			h.log.Debug("signal to descendant failed", logger.Fields("descendant", p.Pid, logger.FieldError, err.Error()))
		}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == StateExited && h.scope != ScopeGroup {
		return nil
	}
	return h.proc.signal(graceful, h.scope)
}
