package main

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/iconoclast/childprocess/environ"
	"github.com/iconoclast/childprocess/logger"
	"github.com/iconoclast/childprocess/process"
)

type runOptions struct {
	env         []string
	unset       []string
	dir         string
	timeout     time.Duration
	stopTimeout time.Duration
	leader      bool
	detach      bool
	scope       string
}

func newRunCmd(a *app) *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run [flags] -- program [args...]",
		Short: "Run a program and exit with its exit code",
		Long: `Run starts program with the given arguments, never through a shell.
The program's standard streams are connected to ours. When --timeout
elapses, or childproc is interrupted, the program is asked to terminate,
then killed if it does not exit within --stop-timeout.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, args)
		},
	}
	cmd.Flags().SetInterspersed(false)

	f := cmd.Flags()
	f.StringArrayVarP(&opts.env, "env", "e", nil, "Set an environment variable (KEY=VALUE, repeatable)")
	f.StringArrayVarP(&opts.unset, "unset", "u", nil, "Remove an environment variable (repeatable)")
	f.StringVarP(&opts.dir, "dir", "C", "", "Working directory for the program")
	f.DurationVarP(&opts.timeout, "timeout", "t", 0, "Stop the program after this long (0 waits forever)")
	f.DurationVar(&opts.stopTimeout, "stop-timeout", 0, "Grace period before forceful termination (default from config)")
	f.BoolVar(&opts.leader, "leader", false, "Start the program as leader of a new process group")
	f.BoolVar(&opts.detach, "detach", false, "Start the program in a new session, detached from our terminal")
	f.StringVar(&opts.scope, "scope", process.ScopeProcess.String(), "What Stop reaches: process, group or tree")
	return cmd
}

func (o *runOptions) spec(args []string) (*process.Spec, error) {
	spec := process.NewSpec(args...)
	env, err := environ.Parse(o.env, o.unset)
	if err != nil {
		return nil, err
	}
	scope, err := process.ParseStopScope(o.scope)
	if err != nil {
		return nil, err
	}
	for _, set := range []func() error{
		func() error { return spec.MergeEnv(env) },
		func() error { return spec.SetDir(o.dir) },
		func() error { return spec.SetLeader(o.leader) },
		func() error { return spec.SetDetach(o.detach) },
		func() error { return spec.SetStopScope(scope) },
	} {
		if err := set(); err != nil {
			return nil, err
		}
	}
	return spec, nil
}

func (o *runOptions) run(cmd *cobra.Command, args []string) error {
	spec, err := o.spec(args)
	if err != nil {
		return err
	}
	streams, err := attach(spec, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	h, err := spec.Start(ctx)
	if err != nil {
		return err
	}
	streams.copy(h)

	log := logger.Get(appName)
	code, err := h.WaitContext(ctx)
	if err != nil {
		log.Warn("stopping program", logger.Fields(
			logger.FieldPID, h.Pid(),
			logger.FieldScope, h.Scope().String(),
			"reason", err.Error(),
		))
		if err := h.Stop(o.stopTimeout); err != nil {
			return err
		}
		code, _ = h.ExitCode()
	}
	h.DrainOutput(&streams.wg, process.CurrentConfig().KillTimeout)

	if code != 0 {
		return &exitError{code: code}
	}
	return nil
}

// streams connects the program to the command's streams. Files are handed
// to the child directly; other readers and writers go through pipes.
type streams struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	wg     sync.WaitGroup
}

func attach(spec *process.Spec, in io.Reader, out, errOut io.Writer) (*streams, error) {
	s := &streams{}
	if f, ok := in.(*os.File); ok {
		if err := spec.SetStdin(process.Sink(f)); err != nil {
			return nil, err
		}
	} else if in != nil {
		s.stdin = in
		if err := spec.SetDuplex(true); err != nil {
			return nil, err
		}
	}

	if f, ok := out.(*os.File); ok {
		if err := spec.SetStdout(process.Sink(f)); err != nil {
			return nil, err
		}
	} else {
		s.stdout = out
		if err := spec.SetStdout(process.Pipe()); err != nil {
			return nil, err
		}
	}

	if f, ok := errOut.(*os.File); ok {
		if err := spec.SetStderr(process.Sink(f)); err != nil {
			return nil, err
		}
	} else {
		s.stderr = errOut
		if err := spec.SetStderr(process.Pipe()); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *streams) copy(h *process.Handle) {
	if s.stdin != nil {
		go func() {
			w := h.Stdin()
			_, _ = io.Copy(w, s.stdin)
			_ = w.Close()
		}()
	}
	for _, p := range []struct {
		dst io.Writer
		src io.Reader
	}{{s.stdout, h.Stdout()}, {s.stderr, h.Stderr()}} {
		if p.dst == nil {
			continue
		}
		s.wg.Add(1)
		go func(dst io.Writer, src io.Reader) {
			defer s.wg.Done()
			_, _ = io.Copy(dst, src)
		}(p.dst, p.src)
	}
}
