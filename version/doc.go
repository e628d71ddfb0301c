// Package version reports build information for childprocess binaries.
//
// Version, commit and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/iconoclast/childprocess/version.Version=1.0.0" ./cmd/childproc
//
// When they are not set, the values recorded by the Go toolchain in the
// binary's build info are used.
package version
