// Command childproc runs a program under the childprocess library: it
// overlays the environment, waits with an optional deadline, escalates
// termination when the deadline passes, and exits with the program's code.
//
//	childproc run --timeout 30s --scope tree -- make test
//	childproc quote -- prog "two words" 'say "hi"'
package main

import "os"

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}
