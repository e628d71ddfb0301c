package process

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
)

// launcher creates a native process. One implementation per platform is
// selected at init.
type launcher interface {
	launch(req *launchRequest) (native, error)
}

type launchRequest struct {
	path   string
	args   []string
	env    []string
	dir    string
	files  [3]*os.File
	leader bool
	detach bool
}

// native is a created process as seen by the platform.
type native interface {
	pid() int
	// probe reports whether the process has exited without blocking. The
	// first probe that observes the exit also reaps it.
	probe() (exitStatus, bool, error)
	// signal delivers a graceful or forceful termination request.
	signal(graceful bool, scope StopScope) error
	// grouped reports whether the process leads its own group or job.
	grouped() bool
	// groupAlive reports whether any member of the group or job is still
	// running. It is false for a process that is not grouped.
	groupAlive() bool
	// release frees platform resources once the exit has been observed.
	release()
}

type exitStatus struct {
	code int
	sig  syscall.Signal
}

var platform launcher = newLauncher()

// resolveExecutable finds name the way the child would be started: names
// with a path separator are taken relative to dir (or the parent's cwd),
// bare names are searched on the parent's PATH. The result is absolute so
// a changed working directory cannot redirect it.
func resolveExecutable(name, dir string) (string, error) {
	if strings.ContainsAny(name, pathSeparators) && !filepath.IsAbs(name) && dir != "" {
		name = filepath.Join(dir, name)
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", err
	}
	return filepath.Abs(path)
}
