// Package environ computes a child process environment from the parent's
// current environment plus per-process overrides.
//
// An Overlay records two kinds of edits: Set replaces (or adds) a variable
// and Unset removes it. Setting a variable to the empty string is distinct
// from unsetting it. Applying an overlay is a pure function over an
// environment snapshot; the process-wide environment is never touched.
//
//	ov := environ.New()
//	ov.Set("CHILD_ONLY", "1")
//	ov.Unset("HTTP_PROXY")
//	env := ov.Environ() // os.Environ() with the edits applied
//
// Variable names compare case-insensitively on Windows and exactly
// everywhere else.
package environ
