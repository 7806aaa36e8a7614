// Package version provides version information for the transfigure CLI.
package version

import (
	"fmt"
	"runtime"

	"github.com/transfigure/cli/internal/apiversion"
)

// Build-time variables set via ldflags.
var (
	// Version is the CLI version (set via ldflags).
	Version = "v0.0.0-dev"

	// GitCommit is the git commit hash.
	GitCommit = "unknown"

	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)

// CUESDKVersion is the version of the CUE SDK validating specifications.
const CUESDKVersion = "v0.15.4"

// Info contains version information.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`

	// CUESDKVersion is the CUE SDK version (embedded at build time).
	CUESDKVersion string `json:"cueSDKVersion"`

	// DefaultPlatform is the platform version targeted without --apiVersion.
	DefaultPlatform string `json:"defaultPlatform"`
}

// Get returns the current version information.
func Get() Info {
	return Info{
		Version:         Version,
		GitCommit:       GitCommit,
		BuildDate:       BuildDate,
		GoVersion:       runtime.Version(),
		CUESDKVersion:   CUESDKVersion,
		DefaultPlatform: apiversion.DefaultPlatform,
	}
}

// String returns a human-readable version string.
func (i Info) String() string {
	return fmt.Sprintf("transfigure:\n  Version:  %s\n  Build ID: %s/%s\n  Go:       %s\n\nPlatform:\n  Default API Version: %s\n\nCUE:\n  SDK Version: %s",
		i.Version, i.BuildDate, i.GitCommit, i.GoVersion, i.DefaultPlatform, i.CUESDKVersion)
}

// FullVersionString returns complete version information including the git
// binary used for repository sources.
func FullVersionString(info Info, git GitBinaryInfo) string {
	return fmt.Sprintf("%s\n\nGit:\n%s", info.String(), git.String())
}
