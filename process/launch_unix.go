//go:build unix

package process

import (
	"runtime"
	"syscall"

	"golang.org/x/sys/unix"
)

const pathSeparators = "/"

type posixLauncher struct{}

func newLauncher() launcher { return posixLauncher{} }

// launch forks and execs req.path. Only the three standard descriptors are
// placed in the child; every other descriptor the Go runtime opens carries
// close-on-exec, so only ones a caller cleared on purpose leak.
func (posixLauncher) launch(req *launchRequest) (native, error) {
	sys := &syscall.SysProcAttr{}
	switch {
	case req.detach:
		sys.Setsid = true
	case req.leader:
		sys.Setpgid = true
	}
	attr := &syscall.ProcAttr{
		Dir:   req.dir,
		Env:   req.env,
		Files: []uintptr{req.files[0].Fd(), req.files[1].Fd(), req.files[2].Fd()},
		Sys:   sys,
	}
	pid, err := syscall.ForkExec(req.path, req.args, attr)
	runtime.KeepAlive(req.files)
	if err != nil {
		return nil, err
	}
	return &posixProcess{id: pid, group: req.leader || req.detach}, nil
}

type posixProcess struct {
	id    int
	group bool
}

func (p *posixProcess) pid() int      { return p.id }
func (p *posixProcess) grouped() bool { return p.group }
func (p *posixProcess) release()      {}

// groupAlive sends signal 0 to the group. The group id stays reserved
// while any member exists, even after the leader has been reaped.
func (p *posixProcess) groupAlive() bool {
	if !p.group {
		return false
	}
	return unix.Kill(-p.id, 0) != unix.ESRCH
}

func (p *posixProcess) probe() (exitStatus, bool, error) {
	var ws unix.WaitStatus
	for {
		wpid, err := unix.Wait4(p.id, &ws, unix.WNOHANG, nil)
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.ECHILD:
			// Reaped elsewhere, e.g. SIGCHLD set to SIG_IGN; the status is lost.
			return exitStatus{code: -1}, true, nil
		case err != nil:
			return exitStatus{}, false, err
		case wpid == 0:
			return exitStatus{}, false, nil
		}
		if ws.Signaled() {
			return exitStatus{code: int(ws.Signal()), sig: ws.Signal()}, true, nil
		}
		if ws.Exited() {
			return exitStatus{code: ws.ExitStatus()}, true, nil
		}
		// Stopped or continued; only reported with WUNTRACED/WCONTINUED.
		return exitStatus{}, false, nil
	}
}

// signal targets -pid for ScopeGroup, which still reaches the members
// after the leader itself has been reaped.
func (p *posixProcess) signal(graceful bool, scope StopScope) error {
	target := p.id
	if scope == ScopeGroup && p.group {
		target = -p.id
	}
	return kill(target, graceful)
}

func signalPID(pid int, graceful bool) error {
	return kill(pid, graceful)
}

func kill(target int, graceful bool) error {
	sig := unix.SIGKILL
	if graceful {
		sig = unix.SIGTERM
	}
	if err := unix.Kill(target, sig); err != nil && err != unix.ESRCH {
		return err
	}
	return nil
}
