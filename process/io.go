package process

import (
	"io"
	"os"

	"github.com/iconoclast/childprocess/errors"
)

// endpoints are the resolved standard streams of one launch.
type endpoints struct {
	// child holds the files handed to the child, indexed by role.
	child [3]*os.File
	// parent holds the parent ends of pipes, indexed by role.
	parent [3]*os.File
	// owned lists files opened here for the child only; they are closed in
	// the parent once the child exists.
	owned []*os.File
}

// openEndpoints resolves plan into native endpoints. On failure nothing it
// opened is left open.
func openEndpoints(plan [3]Stream) (*endpoints, error) {
	e := &endpoints{}
	for role, st := range plan {
		if err := e.open(role, st); err != nil {
			e.closeChild()
			e.closeParent()
			return nil, errors.IOFailure(roleNames[role], err)
		}
	}
	return e, nil
}

func (e *endpoints) open(role int, st Stream) error {
	switch st.kind {
	case kindInherit:
		e.child[role] = [3]*os.File{os.Stdin, os.Stdout, os.Stderr}[role]
	case kindSink:
		if st.file == nil {
			return os.ErrInvalid
		}
		if err := usable(st.file); err != nil {
			return err
		}
		e.child[role] = st.file
	case kindPipe:
		r, w, err := os.Pipe()
		if err != nil {
			return err
		}
		if role == roleStdin {
			e.child[role], e.parent[role] = r, w
		} else {
			e.child[role], e.parent[role] = w, r
		}
		e.owned = append(e.owned, e.child[role])
	default:
		flag := os.O_WRONLY
		if role == roleStdin {
			flag = os.O_RDONLY
		}
		f, err := os.OpenFile(os.DevNull, flag, 0)
		if err != nil {
			return err
		}
		e.child[role] = f
		e.owned = append(e.owned, f)
	}
	return nil
}

// usable rejects a sink whose descriptor is closed. A closed *os.File
// reports ^uintptr(0), which the POSIX launcher would read as "close this
// slot in the child".
func usable(f *os.File) error {
	fd := f.Fd()
	if fd == ^uintptr(0) {
		return os.ErrClosed
	}
	if _, err := closeOnExec(fd); err != nil {
		return &os.PathError{Op: "check", Path: f.Name(), Err: err}
	}
	return nil
}

// closeChild closes the child-only files in the parent.
func (e *endpoints) closeChild() {
	for _, f := range e.owned {
		_ = f.Close()
	}
	e.owned = nil
}

// closeParent closes the parent pipe ends.
func (e *endpoints) closeParent() {
	for i, f := range e.parent {
		if f != nil {
			_ = f.Close()
			e.parent[i] = nil
		}
	}
}

func (e *endpoints) stdin() io.WriteCloser {
	if e.parent[roleStdin] == nil {
		return nil
	}
	return e.parent[roleStdin]
}

func (e *endpoints) output(role int) io.ReadCloser {
	if e.parent[role] == nil {
		return nil
	}
	return e.parent[role]
}
