// Package source materializes a specification source as a local directory.
//
// A source is one of:
//   - a local directory,
//   - a tarball (.tgz, .tar.gz or .tar), extracted next to the archive,
//   - a git repository URL (https://, git:// or git@), cloned into or
//     pulled under the git base path as <owner>/<repo>. A trailing
//     :<tag> selects the branch to check out.
package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	oerrors "github.com/transfigure/cli/internal/errors"
	"github.com/transfigure/cli/internal/output"
)

// GitBasePathEnv names the environment variable holding the default git
// base path.
const GitBasePathEnv = "GIT_BASE_PATH"

// DefaultGitDir is the git base path, relative to the working directory,
// used when none is configured.
const DefaultGitDir = "git"

var (
	gitURLRegex    = regexp.MustCompile(`(?i)(https[:][/]{2}|git[:][/]{2}|git[@])([^/]+)(([/]|[:])([^/]+))([/]([^/:]+))([:]([a-z0-9_.-]+))?`)
	gitPrefixRegex = regexp.MustCompile(`^(git[:@]|https?[:])`)
)

// Options configures Fetch.
type Options struct {
	// GitBasePath is the directory repositories are cloned under.
	GitBasePath string
	// Branch is checked out when the URL carries no tag.
	Branch string
	// Git runs git commands. Nil uses the git binary on PATH.
	Git *Git
}

// GitURL is a parsed repository location.
type GitURL struct {
	Protocol string
	Server   string
	Owner    string
	Repo     string
	Tag      string
	// Clone is the URL handed to git, without the tag suffix.
	Clone string
}

// IsGitURL reports whether location names a git repository.
func IsGitURL(location string) bool {
	return gitPrefixRegex.MatchString(location)
}

// IsArchive reports whether location names a tarball.
func IsArchive(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasSuffix(lower, ".tgz") || strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tar")
}

// ParseGitURL splits a repository URL into its parts.
func ParseGitURL(location string) (GitURL, error) {
	m := gitURLRegex.FindStringSubmatch(location)
	if m == nil {
		return GitURL{}, fmt.Errorf("%q is not a git repository URL", location)
	}
	return GitURL{
		Protocol: m[1],
		Server:   m[2],
		Owner:    m[5],
		Repo:     m[7],
		Tag:      m[9],
		Clone:    strings.TrimSuffix(location, m[8]),
	}, nil
}

// Dir returns where the repository is kept under base.
func (u GitURL) Dir(base string) string {
	return filepath.Join(base, u.Owner, strings.TrimSuffix(u.Repo, ".git"))
}

// Fetch returns the local directory holding the specification tree named
// by location.
func Fetch(ctx context.Context, location string, opts Options) (string, error) {
	var (
		dir string
		err error
	)
	switch {
	case IsArchive(location):
		dir, err = fetchArchive(ctx, location)
	case IsGitURL(location):
		dir, err = fetchRepository(ctx, location, opts)
	default:
		dir, err = localDir(location)
	}
	if err != nil {
		return "", &oerrors.SourceFetchError{Source: location, Cause: err}
	}
	output.Debug("fetched source", "location", location, "dir", dir)
	return dir, nil
}

func localDir(location string) (string, error) {
	abs, err := filepath.Abs(location)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", oerrors.NewNotFoundError("specification directory does not exist", abs,
			"pass a directory, a tarball or a git repository URL")
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}

func fetchArchive(ctx context.Context, location string) (string, error) {
	abs, err := filepath.Abs(location)
	if err != nil {
		return "", err
	}
	dest := filepath.Dir(abs)
	if err := Extract(ctx, abs, dest); err != nil {
		return "", fmt.Errorf("could not extract the tarball at %s: %w", abs, err)
	}
	return dest, nil
}

// GitBasePath resolves the git base path: configured, then the
// GIT_BASE_PATH environment variable, then ./git.
func GitBasePath(configured string) (string, error) {
	base := configured
	if base == "" {
		base = os.Getenv(GitBasePathEnv)
	}
	if base == "" {
		base = DefaultGitDir
	}
	return filepath.Abs(base)
}

func fetchRepository(ctx context.Context, location string, opts Options) (string, error) {
	u, err := ParseGitURL(location)
	if err != nil {
		return "", err
	}
	base, err := GitBasePath(opts.GitBasePath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", fmt.Errorf("creating git base path: %w", err)
	}

	branch := u.Tag
	if branch == "" {
		branch = opts.Branch
	}
	git := opts.Git
	if git == nil {
		git = &Git{}
	}

	dir := u.Dir(base)
	if _, err := os.Stat(dir); err == nil {
		output.Debug("updating repository", "url", u.Clone, "dir", dir, "branch", branch)
		if err := git.Pull(ctx, dir, branch); err != nil {
			return "", fmt.Errorf("could not pull latest from git repository %s: %w", u.Clone, err)
		}
		return dir, nil
	}

	output.Debug("cloning repository", "url", u.Clone, "dir", dir, "branch", branch)
	if err := git.Clone(ctx, u.Clone, dir, branch); err != nil {
		return "", fmt.Errorf("could not clone git repository %s: %w", u.Clone, err)
	}
	return dir, nil
}
