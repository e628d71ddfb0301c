// Package cmdline converts between an argument vector and the single
// command-line string that Windows process creation accepts.
//
// Join encodes a vector so that the receiving program's standard argument
// splitting (CommandLineToArgvW, and the C and Go runtimes that follow the
// same rules) reconstructs it exactly. Split implements that splitting
// algorithm, which lets the encoding be checked on any operating system.
//
// On POSIX systems the vector is handed to the kernel as-is and this
// package is not involved.
package cmdline
