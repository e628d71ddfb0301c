package process

import (
	"context"
	"fmt"
	"sync"

	"github.com/iconoclast/childprocess/environ"
	"github.com/iconoclast/childprocess/errors"
	"github.com/iconoclast/childprocess/logger"
	"github.com/iconoclast/childprocess/observability"
	"github.com/iconoclast/childprocess/validation"
)

// Spec describes a child process. Setters may be called until Start
// succeeds; after that every setter returns an INVALID_STATE error.
type Spec struct {
	mu       sync.Mutex
	args     []string
	env      *environ.Overlay
	dir      string
	duplex   bool
	streams  [3]Stream
	stdinSet bool
	leader   bool
	detach   bool
	scope    StopScope
	started  bool
}

// NewSpec creates a Spec for args. args[0] is the executable, either a
// path or a name searched on the parent's PATH. A PATH set with SetEnv
// reaches the child but is not used for this search; pass a path to run
// a program found only there.
func NewSpec(args ...string) *Spec {
	return &Spec{
		args: append([]string(nil), args...),
		env:  environ.New(),
	}
}

// Args returns a copy of the argument vector.
func (s *Spec) Args() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.args...)
}

// Started reports whether Start has succeeded.
func (s *Spec) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// SetEnv overrides name in the child's environment. An empty value keeps
// the variable with an empty value.
func (s *Spec) SetEnv(name, value string) error {
	return s.edit("set environment", func() error { return s.env.Set(name, value) })
}

// UnsetEnv removes name from the child's environment.
func (s *Spec) UnsetEnv(name string) error {
	return s.edit("unset environment", func() error { return s.env.Unset(name) })
}

// MergeEnv records every edit of ov on top of the edits made so far; an
// edit in ov replaces an earlier one for the same name.
func (s *Spec) MergeEnv(ov *environ.Overlay) error {
	return s.edit("merge environment", func() error {
		for _, name := range ov.Names() {
			value, unset, _ := ov.Lookup(name)
			var err error
			if unset {
				err = s.env.Unset(name)
			} else {
				err = s.env.Set(name, value)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Env returns a copy of the environment edits recorded so far.
func (s *Spec) Env() *environ.Overlay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.env.Clone()
}

// SetDir sets the child's working directory. Empty means the parent's.
func (s *Spec) SetDir(dir string) error {
	return s.edit("set working directory", func() error {
		s.dir = dir
		return nil
	})
}

// SetDuplex gives the child a writable stdin pipe, exposed as Handle.Stdin,
// unless stdin was explicitly set to Inherit or a Sink.
func (s *Spec) SetDuplex(on bool) error {
	return s.edit("set duplex", func() error {
		s.duplex = on
		return nil
	})
}

// SetStdin sets the child's standard input.
func (s *Spec) SetStdin(st Stream) error {
	return s.setStream(roleStdin, st)
}

// SetStdout sets the child's standard output.
func (s *Spec) SetStdout(st Stream) error {
	return s.setStream(roleStdout, st)
}

// SetStderr sets the child's standard error.
func (s *Spec) SetStderr(st Stream) error {
	return s.setStream(roleStderr, st)
}

// InheritAll shares all three of the parent's standard streams.
func (s *Spec) InheritAll() error {
	return s.edit("inherit streams", func() error {
		s.streams = [3]Stream{Inherit(), Inherit(), Inherit()}
		s.stdinSet = true
		return nil
	})
}

// SetLeader places the child in a new process group (POSIX) or job object
// (Windows) so ScopeGroup can reach everything it spawns.
func (s *Spec) SetLeader(on bool) error {
	return s.edit("set leader", func() error {
		s.leader = on
		return nil
	})
}

// SetDetach starts the child in a new session (POSIX) or without a console
// (Windows), so it survives the parent's terminal going away.
func (s *Spec) SetDetach(on bool) error {
	return s.edit("set detach", func() error {
		s.detach = on
		return nil
	})
}

// SetStopScope selects which processes Stop signals.
func (s *Spec) SetStopScope(scope StopScope) error {
	return s.edit("set stop scope", func() error {
		if _, ok := scopeNames[scope]; !ok {
			return errors.InvalidInput("scope", fmt.Sprintf("unknown stop scope %d", int(scope)))
		}
		s.scope = scope
		return nil
	})
}

func (s *Spec) setStream(role int, st Stream) error {
	return s.edit("set "+roleNames[role], func() error {
		if st.kind == kindSink && st.file == nil {
			return errors.InvalidInput(roleNames[role], "sink file is nil")
		}
		s.streams[role] = st
		if role == roleStdin {
			s.stdinSet = true
		}
		return nil
	})
}

func (s *Spec) edit(op string, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.InvalidState(op, "started")
	}
	return fn()
}

// plan returns the stream plan with duplex applied.
func (s *Spec) plan() [3]Stream {
	plan := s.streams
	if s.duplex {
		explicit := s.stdinSet && (plan[roleStdin].kind == kindInherit || plan[roleStdin].kind == kindSink)
		if !explicit {
			plan[roleStdin] = Pipe()
		}
	}
	return plan
}

// Start creates the child process. A Spec starts at most once.
//
// An invalid Spec or a native creation failure is LAUNCH_FAILED;
// stream setup failures are IO_ERROR. In both cases no process exists and
// every descriptor opened for the attempt is closed. ctx is used for trace
// and log correlation only; an in-flight launch is not cancellable.
func (s *Spec) Start(ctx context.Context) (*Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil, errors.InvalidState("start", "started")
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanProcessStart)
	defer span.End()
	log := logger.Get("process").WithContext(ctx)

	exe := ""
	if len(s.args) > 0 {
		exe = s.args[0]
	}
	observability.SetSpanAttribute(ctx, observability.AttrExecutable, exe)

	h, err := s.start(ctx, exe)
	if err != nil {
		observability.SetSpanError(ctx, err)
		code := string(errors.ErrCodeInternal)
		if appErr, ok := errors.AsAppError(err); ok {
			code = string(appErr.Code)
		}
		processMetrics().RecordLaunchFailure(ctx, exe, code)
		log.Warn("launch failed", logger.Fields(logger.FieldExecutable, exe, logger.FieldError, err.Error()))
		return nil, err
	}

	s.started = true
	observability.SetSpanAttribute(ctx, observability.AttrPID, h.pid)
	observability.SetSpanAttribute(ctx, observability.AttrHandleID, h.id)
	processMetrics().RecordLaunch(ctx, exe)
	h.log.Debug("process started", logger.Fields(
		logger.FieldExecutable, h.path,
		"env_edits", s.env.Names(),
		"leader", s.leader,
		"detach", s.detach,
		logger.FieldScope, h.scope.String(),
	))
	return h, nil
}

func (s *Spec) start(ctx context.Context, exe string) (*Handle, error) {
	v := validation.New().NotEmpty("argv", s.args).NoNUL("dir", s.dir)
	for i, arg := range s.args {
		v.NoNUL(fmt.Sprintf("argv[%d]", i), arg)
	}
	if appErr := v.Validate(); appErr != nil {
		return nil, errors.LaunchFailed(exe, appErr)
	}

	path, err := resolveExecutable(exe, s.dir)
	if err != nil {
		return nil, errors.LaunchFailed(exe, err)
	}

	ends, err := openEndpoints(s.plan())
	if err != nil {
		return nil, err
	}

	req := &launchRequest{
		path:   path,
		args:   append([]string(nil), s.args...),
		env:    s.env.Environ(),
		dir:    s.dir,
		files:  ends.child,
		leader: s.leader,
		detach: s.detach,
	}
	proc, err := platform.launch(req)
	ends.closeChild()
	if err != nil {
		ends.closeParent()
		return nil, errors.LaunchFailed(exe, err).WithDetail("path", path)
	}

	return newHandle(ctx, proc, path, s.effectiveScope(proc), ends), nil
}

// effectiveScope downgrades ScopeGroup when the child shares our group.
func (s *Spec) effectiveScope(proc native) StopScope {
	if s.scope == ScopeGroup && !proc.grouped() {
		return ScopeProcess
	}
	return s.scope
}
