//go:build windows

package cmdline

import (
	"reflect"
	"testing"

	"golang.org/x/sys/windows"
)

func TestJoinMatchesCommandLineToArgv(t *testing.T) {
	args := []string{
		`C:\Program Files\tool.exe`,
		"plain",
		"foo bar",
		`foo\bar`,
		`'i-am-quoted'`,
		`"i am double quoted"`,
		"",
		`trailing\ `,
		`end\`,
		`a\\"b`,
	}
	line, err := Join(args)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	got, err := windows.DecomposeCommandLine(line)
	if err != nil {
		t.Fatalf("DecomposeCommandLine: %v", err)
	}
	if !reflect.DeepEqual(got, args) {
		t.Errorf("DecomposeCommandLine(%q) = %q, want %q", line, got, args)
	}
}
