package process

import "github.com/iconoclast/childprocess/errors"

// Fder is anything backed by an operating-system descriptor or handle,
// such as *os.File.
type Fder interface {
	Fd() uintptr
}

// SetCloseOnExec marks f so that processes spawned afterwards do not
// inherit it (on) or do inherit it (off). The parent's own use of f is
// unaffected. The flag is process-wide state of the descriptor; callers
// toggling it concurrently with launches elsewhere must order the calls
// themselves.
func SetCloseOnExec(f Fder, on bool) error {
	if err := setCloseOnExec(f.Fd(), on); err != nil {
		return errors.IOFailure("descriptor", err).WithDetail("close_on_exec", on)
	}
	return nil
}

// CloseOnExec keeps f out of every process spawned afterwards.
func CloseOnExec(f Fder) error {
	return SetCloseOnExec(f, true)
}

// IsCloseOnExec reports whether f is kept out of spawned processes.
func IsCloseOnExec(f Fder) (bool, error) {
	on, err := closeOnExec(f.Fd())
	if err != nil {
		return false, errors.IOFailure("descriptor", err)
	}
	return on, nil
}
