// SPDX-License-Identifier: MIT
//
// Package build carries build metadata injected at link time. The
// application name, build timestamp, Git commit and semantic version are
// set via -ldflags and surfaced through the CLI version output, for
// example:
//
//	go build -ldflags "-X crossover/pkg/build.buildName=xover \
//	    -X crossover/pkg/build.buildVersion=1.0.0"
package build

import "fmt"

type ldFlags struct {
	Name        string
	Description string
	Time        string
	Commit      string
	Version     string
}

// Package-level variables populated by -ldflags during compilation.
// Development builds fall back to "dev" defaults.
var (
	buildName        string
	buildDescription string
	buildTime        string
	buildCommit      string
	buildVersion     string
	buildFlags       = &ldFlags{
		Name:        "xover",
		Description: "real-time audio crossover controller",
		Time:        "unknown",
		Commit:      "unknown",
		Version:     "dev",
	}
)

// Initialize copies build information from the ldflags variables into
// the buildFlags struct. Call it early in program startup. Returns an
// error if the version is set without a matching commit hash, which
// indicates a broken release build.
func Initialize() error {
	if buildName != "" {
		buildFlags.Name = buildName
	}
	if buildDescription != "" {
		buildFlags.Description = buildDescription
	}
	if buildTime != "" {
		buildFlags.Time = buildTime
	}
	if buildVersion != "" {
		if buildCommit == "" {
			return fmt.Errorf("build version %q set without a commit hash", buildVersion)
		}
		buildFlags.Version = buildVersion
		buildFlags.Commit = buildCommit
	}
	return nil
}

// GetBuildFlags returns the current build information. Initialize should
// be called first; otherwise the development defaults are returned.
func GetBuildFlags() *ldFlags {
	return buildFlags
}
