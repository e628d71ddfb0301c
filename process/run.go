package process

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/iconoclast/childprocess/environ"
	"github.com/iconoclast/childprocess/errors"
	"github.com/iconoclast/childprocess/observability"
)

// Run executes a subprocess and waits for it to complete, capturing its
// output. If ctx is done first the child is stopped through Stop with
// cmd.GracePeriod, and Run returns a TIMEOUT error wrapping ctx.Err().
// A non-zero exit returns the Result together with an EXIT_STATUS error.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, errors.MissingField("binary")
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanProcessRun)
	defer span.End()

	spec, err := cmd.spec()
	if err != nil {
		return nil, err
	}
	h, err := spec.Start(ctx)
	if err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	var wg sync.WaitGroup
	collect := func(r io.Reader, buf *bytes.Buffer) {
		defer wg.Done()
		_, _ = io.Copy(buf, r)
	}
	wg.Add(2)
	go collect(h.Stdout(), &stdout)
	go collect(h.Stderr(), &stderr)
	if cmd.Stdin != nil {
		go func() {
			w := h.Stdin()
			_, _ = io.Copy(w, cmd.Stdin)
			_ = w.Close()
		}()
	}

	start := time.Now()
	result := &Result{}
	_, waitErr := h.WaitContext(ctx)
	if waitErr != nil {
		escalated, stopErr := h.stop(cmd.GracePeriod)
		result.Escalated = escalated
		if stopErr != nil {
			return result, stopErr
		}
	}
	result.Duration = time.Since(start)

	// Grandchildren may hold the pipes open after the child exits.
	h.DrainOutput(&wg, h.cfg.KillTimeout)
	result.Stdout = stdout.Bytes()
	result.Stderr = stderr.Bytes()
	result.ExitCode, _ = h.ExitCode()
	observability.SetSpanAttribute(ctx, observability.AttrExitCode, result.ExitCode)

	if waitErr != nil {
		if ctx.Err() == nil {
			return result, waitErr
		}
		return result, errors.Timeout("run", result.Duration).WithCause(ctx.Err())
	}
	if result.ExitCode != 0 {
		return result, errors.ExitStatus(cmd.Binary, result.ExitCode)
	}
	return result, nil
}

func (cmd Command) spec() (*Spec, error) {
	spec := NewSpec(append([]string{cmd.Binary}, cmd.Args...)...)
	if err := spec.SetDir(cmd.Dir); err != nil {
		return nil, err
	}
	env, err := environ.Parse(cmd.Env, cmd.Unset)
	if err != nil {
		return nil, err
	}
	if err := spec.MergeEnv(env); err != nil {
		return nil, err
	}
	if err := spec.SetStdout(Pipe()); err != nil {
		return nil, err
	}
	if err := spec.SetStderr(Pipe()); err != nil {
		return nil, err
	}
	if err := spec.SetDuplex(cmd.Stdin != nil); err != nil {
		return nil, err
	}
	if err := spec.SetLeader(cmd.Leader); err != nil {
		return nil, err
	}
	if err := spec.SetStopScope(cmd.Scope); err != nil {
		return nil, err
	}
	return spec, nil
}

// DrainOutput waits for wg, the goroutines copying h's output pipes, then
// closes the pipes. If wg is not done after delay the pipes are closed
// early, so a descendant holding their write ends cannot block the caller
// forever. Streams that are not pipes are left alone.
func (h *Handle) DrainOutput(wg *sync.WaitGroup, delay time.Duration) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(delay):
		h.closeOutput()
		<-done
	}
	h.closeOutput()
}

func (h *Handle) closeOutput() {
	for _, r := range []io.ReadCloser{h.Stdout(), h.Stderr()} {
		if r != nil {
			_ = r.Close()
		}
	}
}
