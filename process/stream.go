package process

import (
	"fmt"
	"os"
)

type streamKind int

const (
	kindDiscard streamKind = iota
	kindInherit
	kindSink
	kindPipe
)

// Stream says where one of the child's standard streams goes. The zero
// value is Discard.
type Stream struct {
	kind streamKind
	file *os.File
}

// Inherit shares the parent's own stream with the child.
func Inherit() Stream { return Stream{kind: kindInherit} }

// Sink hands f to the child as the stream. The parent keeps ownership of f
// but must not use it for the same role while the child runs.
func Sink(f *os.File) Stream { return Stream{kind: kindSink, file: f} }

// Pipe creates a pipe whose parent end is exposed on the Handle.
func Pipe() Stream { return Stream{kind: kindPipe} }

// Discard connects the stream to the null device.
func Discard() Stream { return Stream{kind: kindDiscard} }

// String implements fmt.Stringer.
func (s Stream) String() string {
	switch s.kind {
	case kindInherit:
		return "inherit"
	case kindSink:
		if s.file != nil {
			return fmt.Sprintf("sink(%s)", s.file.Name())
		}
		return "sink(nil)"
	case kindPipe:
		return "pipe"
	default:
		return "discard"
	}
}

// Stream roles, in descriptor order.
const (
	roleStdin = iota
	roleStdout
	roleStderr
)

var roleNames = [3]string{"stdin", "stdout", "stderr"}
