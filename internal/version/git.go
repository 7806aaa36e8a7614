package version

import (
	"bytes"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// MinGitVersion is the oldest git release repository sources are fetched
// with.
const MinGitVersion = "2.0.0"

// gitVersionRegex matches git version output like "git version 2.43.0"
// or "git version 2.39.3 (Apple Git-146)".
var gitVersionRegex = regexp.MustCompile(`\d+\.\d+(?:\.\d+)?`)

// GitBinaryInfo contains git binary version information.
type GitBinaryInfo struct {
	Version   string `json:"version"`
	Path      string `json:"path"`
	Supported bool   `json:"supported"`
	Found     bool   `json:"found"`
	Message   string `json:"message,omitempty"`
}

// DetectGitBinary finds and checks the git installation.
func DetectGitBinary() GitBinaryInfo {
	path, err := exec.LookPath("git")
	if err != nil {
		return GitBinaryInfo{Message: "git binary not found in PATH"}
	}

	cmd := exec.Command(path, "version")
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return GitBinaryInfo{Path: path, Found: true, Message: "failed to get git version: " + err.Error()}
	}

	v, err := extractVersion(out.String())
	if err != nil {
		return GitBinaryInfo{Path: path, Found: true, Message: err.Error()}
	}
	supported, message := GitVersionSupported(v)
	return GitBinaryInfo{Version: v, Path: path, Found: true, Supported: supported, Message: message}
}

// GitVersionSupported reports whether version satisfies MinGitVersion.
func GitVersionSupported(version string) (bool, string) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false, "unsupported - invalid version format"
	}
	c, err := semver.NewConstraint(">= " + MinGitVersion)
	if err != nil {
		return false, err.Error()
	}
	if !c.Check(v) {
		return false, fmt.Sprintf("unsupported - git %s or newer required", MinGitVersion)
	}
	return true, "supported"
}

// extractVersion extracts the version number from git version output.
func extractVersion(output string) (string, error) {
	line, _, _ := strings.Cut(output, "\n")
	match := gitVersionRegex.FindString(line)
	if match == "" {
		return "", &versionParseError{output: output}
	}
	return match, nil
}

// versionParseError indicates failure to parse git version output.
type versionParseError struct {
	output string
}

func (e *versionParseError) Error() string {
	return "failed to parse git version from output: " + e.output
}

// String returns a human-readable git binary info string.
func (g GitBinaryInfo) String() string {
	if !g.Found {
		return "  Binary Version: not found\n  Binary Path:    -"
	}
	status := g.Message
	if g.Supported {
		status = "supported"
	}
	return fmt.Sprintf("  Binary Version: %s (%s)\n  Binary Path:    %s", g.Version, status, g.Path)
}
