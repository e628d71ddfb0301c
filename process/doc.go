// Package process spawns, observes and terminates child processes with one
// API on POSIX systems and Windows.
//
// A Spec describes the child: its argument vector, environment edits,
// working directory, standard stream plan and process-group placement.
// Start creates the process and returns a Handle, after which the Spec is
// read-only.
//
//	spec := process.NewSpec("sleep", "10")
//	_ = spec.SetStdout(process.Inherit())
//	h, err := spec.Start(ctx)
//	if err != nil {
//	    return err
//	}
//	if _, err := h.Wait(time.Second); errors.Is(err, process.ErrTimeout) {
//	    err = h.Stop(3 * time.Second)
//	}
//
// The argument vector is never passed through a shell. On Windows it is
// encoded into a single command line with package cmdline.
//
// A Handle is polled, never signalled asynchronously: IsAlive probes once,
// Wait polls at Config.PollInterval until the child exits or the timeout
// elapses, and Stop escalates from a graceful request to forceful
// termination. Every error is an *errors.AppError; compare against
// ErrLaunch, ErrTimeout, ErrIO, ErrInvalidState and ErrEscalation with
// errors.Is.
package process
