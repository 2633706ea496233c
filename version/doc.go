// Package version provides version information and build metadata for npk.
//
// Version, Commit and Date are set at build time with -ldflags:
//
//	-ldflags "-X github.com/meigma/npk/version.Version=v1.0.0 -X github.com/meigma/npk/version.Commit=abc123"
//
// When they are left at their defaults the values are read from the module
// build info, so `go install` builds still report something useful.
package version
