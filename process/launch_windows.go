//go:build windows

package process

import (
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/iconoclast/childprocess/cmdline"
	"github.com/iconoclast/childprocess/environ"
)

const pathSeparators = `/\:`

type windowsLauncher struct{}

func newLauncher() launcher { return windowsLauncher{} }

// launch calls CreateProcess with an explicit environment block and a
// handle list naming exactly the three standard handles, so nothing else
// the parent holds is inherited regardless of its inherit flag.
func (windowsLauncher) launch(req *launchRequest) (native, error) {
	line, err := cmdline.Join(req.args)
	if err != nil {
		return nil, err
	}
	appName, err := windows.UTF16PtrFromString(req.path)
	if err != nil {
		return nil, err
	}
	cmdLine, err := windows.UTF16PtrFromString(line)
	if err != nil {
		return nil, err
	}
	var dir *uint16
	if req.dir != "" {
		if dir, err = windows.UTF16PtrFromString(req.dir); err != nil {
			return nil, err
		}
	}
	env, err := envBlock(environ.SortFold(req.env))
	if err != nil {
		return nil, err
	}

	std, err := inheritableStd(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, h := range std {
			_ = windows.CloseHandle(h)
		}
	}()

	attrs, err := windows.NewProcThreadAttributeList(1)
	if err != nil {
		return nil, err
	}
	defer attrs.Delete()
	if err := attrs.Update(windows.PROC_THREAD_ATTRIBUTE_HANDLE_LIST,
		unsafe.Pointer(&std[0]), uintptr(len(std))*unsafe.Sizeof(std[0])); err != nil {
		return nil, err
	}

	si := new(windows.StartupInfoEx)
	si.Cb = uint32(unsafe.Sizeof(*si))
	si.Flags = windows.STARTF_USESTDHANDLES
	si.StdInput, si.StdOutput, si.StdErr = std[0], std[1], std[2]
	si.ProcThreadAttributeList = attrs.List()

	flags := uint32(windows.CREATE_UNICODE_ENVIRONMENT | windows.EXTENDED_STARTUPINFO_PRESENT | windows.CREATE_NEW_PROCESS_GROUP)
	if req.detach {
		flags |= windows.DETACHED_PROCESS
	}
	if req.leader {
		flags |= windows.CREATE_SUSPENDED
	}

	var pi windows.ProcessInformation
	err = windows.CreateProcess(appName, cmdLine, nil, nil, true, flags, env, dir, &si.StartupInfo, &pi)
	if err != nil {
		return nil, err
	}
	defer windows.CloseHandle(pi.Thread)

	p := &windowsProcess{id: int(pi.ProcessId), handle: pi.Process}
	if req.leader {
		if err := p.joinJob(pi.Thread); err != nil {
			_ = windows.TerminateProcess(pi.Process, 1)
			p.release()
			p.closeJob()
			return nil, err
		}
		runtime.SetFinalizer(p, (*windowsProcess).closeJob)
	}
	return p, nil
}

// inheritableStd duplicates the three standard handles as inheritable.
// The duplicates are unique even when roles share one file, which the
// handle list requires.
func inheritableStd(req *launchRequest) ([3]windows.Handle, error) {
	var std [3]windows.Handle
	self := windows.CurrentProcess()
	for i, f := range req.files {
		err := windows.DuplicateHandle(self, windows.Handle(f.Fd()), self, &std[i], 0, true, windows.DUPLICATE_SAME_ACCESS)
		if err != nil {
			for _, h := range std[:i] {
				_ = windows.CloseHandle(h)
			}
			return std, err
		}
	}
	return std, nil
}

// envBlock encodes env as NUL-separated UTF-16 entries ending in an extra NUL.
func envBlock(env []string) (*uint16, error) {
	var block []uint16
	for _, kv := range env {
		u, err := windows.UTF16FromString(kv)
		if err != nil {
			return nil, err
		}
		block = append(block, u...)
	}
	if len(block) == 0 {
		block = append(block, 0)
	}
	block = append(block, 0)
	return &block[0], nil
}

type windowsProcess struct {
	id     int
	handle windows.Handle
	job    windows.Handle
}

// joinJob puts the suspended process into a fresh job object and resumes it,
// so every process it spawns starts inside the job.
func (p *windowsProcess) joinJob(thread windows.Handle) error {
	job, err := windows.CreateJobObject(nil, nil)
	if err != nil {
		return err
	}
	p.job = job
	if err := windows.AssignProcessToJobObject(job, p.handle); err != nil {
		return err
	}
	_, err = windows.ResumeThread(thread)
	return err
}

func (p *windowsProcess) pid() int      { return p.id }
func (p *windowsProcess) grouped() bool { return p.job != 0 }

// jobAccounting mirrors JOBOBJECT_BASIC_ACCOUNTING_INFORMATION.
type jobAccounting struct {
	TotalUserTime             int64
	TotalKernelTime           int64
	ThisPeriodTotalUserTime   int64
	ThisPeriodTotalKernelTime int64
	TotalPageFaultCount       uint32
	TotalProcesses            uint32
	ActiveProcesses           uint32
	TotalTerminatedProcesses  uint32
}

// groupAlive reports whether the job still holds running processes. The
// job outlives the leader, so this keeps working after the leader exits.
func (p *windowsProcess) groupAlive() bool {
	if p.job == 0 {
		return false
	}
	var info jobAccounting
	err := windows.QueryInformationJobObject(p.job, windows.JobObjectBasicAccountingInformation,
		uintptr(unsafe.Pointer(&info)), uint32(unsafe.Sizeof(info)), nil)
	if err != nil {
		return false
	}
	return info.ActiveProcesses > 0
}

func (p *windowsProcess) probe() (exitStatus, bool, error) {
	event, err := windows.WaitForSingleObject(p.handle, 0)
	if err != nil {
		return exitStatus{}, false, err
	}
	if event != windows.WAIT_OBJECT_0 {
		return exitStatus{}, false, nil
	}
	var code uint32
	if err := windows.GetExitCodeProcess(p.handle, &code); err != nil {
		return exitStatus{}, false, err
	}
	return exitStatus{code: int(code)}, true, nil
}

// signal sends CTRL_BREAK to the child's console process group for a
// graceful stop. That only reaches children sharing our console, so a
// detached child gets no graceful request and is terminated after the wait.
func (p *windowsProcess) signal(graceful bool, scope StopScope) error {
	if graceful {
		return windows.GenerateConsoleCtrlEvent(windows.CTRL_BREAK_EVENT, uint32(p.id))
	}
	if scope == ScopeGroup && p.job != 0 {
		return windows.TerminateJobObject(p.job, 1)
	}
	if p.handle == 0 {
		return nil
	}
	return windows.TerminateProcess(p.handle, 1)
}

// release closes the process handle. The job handle stays open so the
// rest of the job can still be stopped; closeJob frees it.
func (p *windowsProcess) release() {
	if p.handle != 0 {
		_ = windows.CloseHandle(p.handle)
		p.handle = 0
	}
}

func (p *windowsProcess) closeJob() {
	if p.job != 0 {
		_ = windows.CloseHandle(p.job)
		p.job = 0
	}
}

// signalPID terminates a descendant found by ScopeTree. Windows has no
// graceful request for an arbitrary process, so graceful is a no-op.
func signalPID(pid int, graceful bool) error {
	if graceful {
		return nil
	}
	h, err := windows.OpenProcess(windows.PROCESS_TERMINATE, false, uint32(pid))
	if err != nil {
		return err
	}
	defer windows.CloseHandle(h)
	return windows.TerminateProcess(h, 1)
}
