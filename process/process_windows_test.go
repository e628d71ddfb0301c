//go:build windows

package process_test

import (
	"io"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/iconoclast/childprocess/process"
)

func TestCloseOnExecFlag(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	if err := process.SetCloseOnExec(w, false); err != nil {
		t.Fatalf("SetCloseOnExec(false): %v", err)
	}
	if on, err := process.IsCloseOnExec(w); err != nil || on {
		t.Fatalf("expected handle to be inheritable, got %v, %v", on, err)
	}
	if err := process.CloseOnExec(w); err != nil {
		t.Fatalf("CloseOnExec: %v", err)
	}
	if on, err := process.IsCloseOnExec(w); err != nil || !on {
		t.Fatalf("expected handle to be non-inheritable, got %v, %v", on, err)
	}
	if _, err := w.Write([]byte("still ours")); err != nil {
		t.Fatalf("parent lost its handle: %v", err)
	}
}

func TestJobStopReachesGrandchild(t *testing.T) {
	spec := helperSpec(t, "spawn-sleep", "60s")
	if err := spec.SetLeader(true); err != nil {
		t.Fatal(err)
	}
	if err := spec.SetStopScope(process.ScopeGroup); err != nil {
		t.Fatal(err)
	}
	if err := spec.SetStdout(process.Pipe()); err != nil {
		t.Fatal(err)
	}
	h := startHelper(t, spec)
	if _, err := strconv.Atoi(strings.TrimSpace(readLine(t, h.Stdout()))); err != nil {
		t.Fatalf("reading grandchild pid: %v", err)
	}

	if err := h.Stop(200 * time.Millisecond); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	// The grandchild holds the pipe open until the job is terminated.
	eof := make(chan struct{})
	go func() {
		_, _ = io.Copy(io.Discard, h.Stdout())
		close(eof)
	}()
	select {
	case <-eof:
	case <-time.After(10 * time.Second):
		t.Fatal("grandchild survived Stop")
	}
}
