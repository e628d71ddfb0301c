//go:build windows

package process

import "golang.org/x/sys/windows"

func setCloseOnExec(fd uintptr, on bool) error {
	var flags uint32
	if !on {
		flags = windows.HANDLE_FLAG_INHERIT
	}
	return windows.SetHandleInformation(windows.Handle(fd), windows.HANDLE_FLAG_INHERIT, flags)
}

func closeOnExec(fd uintptr) (bool, error) {
	var flags uint32
	if err := windows.GetHandleInformation(windows.Handle(fd), &flags); err != nil {
		return false, err
	}
	return flags&windows.HANDLE_FLAG_INHERIT == 0, nil
}
