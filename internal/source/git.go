package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Git runs the git binary.
type Git struct {
	// Path is the git binary. Empty means "git" on PATH.
	Path string
}

// Clone clones url into dir and checks out branch when one is given.
func (g *Git) Clone(ctx context.Context, url, dir, branch string) error {
	if _, err := g.run(ctx, "", "clone", url, dir); err != nil {
		return err
	}
	if branch == "" {
		return nil
	}
	_, err := g.run(ctx, dir, "checkout", branch)
	return err
}

// Pull updates the clone in dir. With a branch, the branch is pulled from
// origin and checked out; otherwise the tracked branch is pulled.
func (g *Git) Pull(ctx context.Context, dir, branch string) error {
	if branch == "" {
		_, err := g.run(ctx, dir, "pull")
		return err
	}
	if _, err := g.run(ctx, dir, "fetch", "origin", branch); err != nil {
		return err
	}
	if _, err := g.run(ctx, dir, "checkout", branch); err != nil {
		return err
	}
	_, err := g.run(ctx, dir, "pull", "origin", branch)
	return err
}

// run executes git in dir and captures its output.
func (g *Git) run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, g.path(), args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("git %s failed with exit code %d: %s",
				strings.Join(args, " "), exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return stdout.Bytes(), nil
}

func (g *Git) path() string {
	if g.Path != "" {
		return g.Path
	}
	return "git"
}
