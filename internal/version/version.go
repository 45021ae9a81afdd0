// Package version exposes the build version string.
package version

// Version is the semantic version of the gradedesk binary.
// Overridden at build time via -ldflags for release builds.
var Version = "0.1.0-dev"
