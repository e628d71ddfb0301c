package process

import "time"

// Result holds the output and status of a completed subprocess.
type Result struct {
	// Stdout is the captured standard output.
	Stdout []byte
	// Stderr is the captured standard error.
	Stderr []byte
	// ExitCode is the process exit code. A child killed by a signal on POSIX
	// reports the signal number.
	ExitCode int
	// Duration is how long the process ran.
	Duration time.Duration
	// Escalated is true when the child had to be killed after ctx was done.
	Escalated bool
}
