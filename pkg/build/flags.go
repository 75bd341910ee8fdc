// SPDX-License-Identifier: MIT
//
// Package build carries the application metadata (name, version, commit,
// build time) embedded at compile time via -ldflags. Development builds
// without ldflags fall back to "dev" defaults.
package build

type ldFlags struct {
	Name    string
	Time    string
	Commit  string
	Version string
}

// Package-level variables populated by -ldflags during compilation.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
)

var buildFlags = &ldFlags{
	Name:    "glow",
	Time:    "unknown",
	Commit:  "unknown",
	Version: "dev",
}

// Initialize copies any build information provided via ldflags into the
// buildFlags struct. Unset flags keep their development defaults, so
// this never fails for a plain `go build`.
func Initialize() {
	if buildName != "" {
		buildFlags.Name = buildName
	}
	if buildTime != "" {
		buildFlags.Time = buildTime
	}
	if buildCommit != "" {
		buildFlags.Commit = buildCommit
	}
	if buildVersion != "" {
		buildFlags.Version = buildVersion
	}
}

// GetBuildFlags returns the current build information. Initialize should
// be called first; without it the development defaults are returned.
func GetBuildFlags() *ldFlags {
	return buildFlags
}
