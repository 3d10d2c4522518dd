// Package version reports the version of the harness binary.
package version

import "runtime"

var (
	// GitCommit is the current HEAD set using ldflags.
	GitCommit string

	// Version is the built softwares version.
	Version = HarnessSemVer
)

func init() {
	if GitCommit != "" {
		Version += "-" + GitCommit
	}
}

// HarnessSemVer is the semantic version of the harness.
// Must be a string because release scripts read this file.
const HarnessSemVer = "0.1.0"

// Info describes the running binary.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	GitCommit string `json:"git_commit,omitempty" yaml:"git_commit,omitempty"`
	GoVersion string `json:"go_version" yaml:"go_version"`
}

// Get returns the version of the running binary.
func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
	}
}
