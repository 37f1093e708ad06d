// Package gitx provides the git operations the release pipeline needs:
// repository discovery, worktree and branch checks, and tag lifecycle
// (create, delete, push).
package gitx

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Git provides an abstraction for git operations.
type Git interface {
	// Discover finds the git repository root starting from cwd.
	Discover(cwd string) (root string, err error)

	// CurrentBranch returns the name of the checked-out branch.
	CurrentBranch(root string) (string, error)

	// IsClean reports whether the worktree has no uncommitted changes.
	IsClean(root string) (bool, error)

	// TagExists reports whether the tag exists locally.
	TagExists(root, tag string) (bool, error)

	// RemoteTagExists reports whether the tag exists on the remote.
	RemoteTagExists(ctx context.Context, root, remote, tag string) (bool, error)

	// CreateTag creates an annotated tag at HEAD.
	CreateTag(root, tag, message string) error

	// DeleteTag deletes a local tag.
	DeleteTag(root, tag string) error

	// PushTag pushes the tag to the remote.
	PushTag(ctx context.Context, root, remote, tag string) error

	// RemoteURL returns the URL of the given remote.
	RemoteURL(root, remote string) (string, error)
}

// RealGit implements Git using the git binary.
type RealGit struct{}

// NewRealGit creates a new RealGit.
func NewRealGit() *RealGit {
	return &RealGit{}
}

// runGit executes a git command in the given directory.
func (g *RealGit) runGit(ctx context.Context, dir string, args ...string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s failed: %w\nstderr: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}

	return strings.TrimSpace(stdout.String()), nil
}

// Discover finds the git repository root by walking up from cwd looking for
// a .git entry.
func (g *RealGit) Discover(cwd string) (string, error) {
	absPath, err := filepath.Abs(cwd)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	current := absPath
	for {
		gitDir := filepath.Join(current, ".git")
		if info, err := os.Stat(gitDir); err == nil {
			// .git can be a directory or a file (worktrees/submodules).
			if info.IsDir() || info.Mode().IsRegular() {
				return current, nil
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("not in a git repository")
		}
		current = parent
	}
}

// CurrentBranch returns the checked-out branch name.
func (g *RealGit) CurrentBranch(root string) (string, error) {
	branch, err := g.runGit(nil, root, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}
	return branch, nil
}

// IsClean reports whether the worktree has no uncommitted changes.
func (g *RealGit) IsClean(root string) (bool, error) {
	out, err := g.runGit(nil, root, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("failed to get worktree status: %w", err)
	}
	return out == "", nil
}

// TagExists reports whether the tag exists locally.
func (g *RealGit) TagExists(root, tag string) (bool, error) {
	_, err := g.runGit(nil, root, "rev-parse", "--verify", "--quiet", "refs/tags/"+tag)
	if err != nil {
		// rev-parse --verify exits non-zero for unknown refs.
		return false, nil
	}
	return true, nil
}

// RemoteTagExists reports whether the tag exists on the remote.
func (g *RealGit) RemoteTagExists(ctx context.Context, root, remote, tag string) (bool, error) {
	out, err := g.runGit(ctx, root, "ls-remote", "--tags", remote, "refs/tags/"+tag)
	if err != nil {
		return false, fmt.Errorf("failed to list remote tags: %w", err)
	}
	return out != "", nil
}

// CreateTag creates an annotated tag at HEAD.
func (g *RealGit) CreateTag(root, tag, message string) error {
	if _, err := g.runGit(nil, root, "tag", "-a", tag, "-m", message); err != nil {
		return fmt.Errorf("failed to create tag %s: %w", tag, err)
	}
	return nil
}

// DeleteTag deletes a local tag.
func (g *RealGit) DeleteTag(root, tag string) error {
	if _, err := g.runGit(nil, root, "tag", "-d", tag); err != nil {
		return fmt.Errorf("failed to delete tag %s: %w", tag, err)
	}
	return nil
}

// PushTag pushes the tag to the remote.
func (g *RealGit) PushTag(ctx context.Context, root, remote, tag string) error {
	if _, err := g.runGit(ctx, root, "push", remote, "refs/tags/"+tag); err != nil {
		return fmt.Errorf("failed to push tag %s to %s: %w", tag, remote, err)
	}
	return nil
}

// RemoteURL returns the URL of the given remote.
func (g *RealGit) RemoteURL(root, remote string) (string, error) {
	url, err := g.runGit(nil, root, "remote", "get-url", remote)
	if err != nil {
		return "", fmt.Errorf("failed to get remote URL: %w", err)
	}
	return url, nil
}
