//go:build unix

package process

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// setCloseOnExec holds the fork lock so the flag cannot change while
// another goroutine is between fork and exec.
func setCloseOnExec(fd uintptr, on bool) error {
	syscall.ForkLock.RLock()
	defer syscall.ForkLock.RUnlock()

	flags, err := unix.FcntlInt(fd, unix.F_GETFD, 0)
	if err != nil {
		return err
	}
	if on {
		flags |= unix.FD_CLOEXEC
	} else {
		flags &^= unix.FD_CLOEXEC
	}
	_, err = unix.FcntlInt(fd, unix.F_SETFD, flags)
	return err
}

func closeOnExec(fd uintptr) (bool, error) {
	flags, err := unix.FcntlInt(fd, unix.F_GETFD, 0)
	if err != nil {
		return false, err
	}
	return flags&unix.FD_CLOEXEC != 0, nil
}
