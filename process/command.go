package process

import (
	"io"
	"time"
)

// Command configures a subprocess for Run.
type Command struct {
	// Binary is the executable path or name (resolved via PATH).
	Binary string
	// Args are the command-line arguments.
	Args []string
	// Dir is the working directory. If empty, uses the current directory.
	Dir string
	// Env holds KEY=VALUE overrides applied on top of the parent environment.
	Env []string
	// Unset names variables removed from the child's environment.
	Unset []string
	// Stdin provides input to the process. May be nil.
	Stdin io.Reader
	// GracePeriod is how long Stop waits after the graceful request before
	// killing when ctx is done. Defaults to Config.StopTimeout if zero.
	GracePeriod time.Duration
	// Leader runs the child in its own process group or job object.
	Leader bool
	// Scope selects what a context-triggered stop signals.
	Scope StopScope
}
