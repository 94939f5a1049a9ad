package git

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Client is the narrow git surface the engine depends on. All operations
// are scoped to one working tree path and safe to call concurrently across
// different paths; mutating operations must not run concurrently against
// the same tree.
type Client interface {
	// IsRepository reports whether path is inside a git working tree.
	// Fails closed (false) on any git invocation error.
	IsRepository(ctx context.Context, path string) bool

	// CurrentBranch returns the checked-out branch name, or "" for a
	// detached HEAD or any error.
	CurrentBranch(ctx context.Context, path string) string

	// LocalBranches lists local branch names, excluding remote-tracking refs.
	LocalBranches(ctx context.Context, path string) ([]string, error)

	// BranchExists reports whether a local branch exists.
	BranchExists(ctx context.Context, path, name string) bool

	// RemoteBranchExists reports whether origin has the branch.
	RemoteBranchExists(ctx context.Context, path, name string) bool

	// IsDirty reports whether the working tree has uncommitted changes
	// or untracked files.
	IsDirty(ctx context.Context, path string) bool

	// OriginURL returns the origin remote URL, or an error if no origin
	// remote is configured.
	OriginURL(ctx context.Context, path string) (string, error)

	// DefaultBranch returns the default branch name (main/master).
	DefaultBranch(ctx context.Context, path string) string

	// CheckoutOrCreate checks out the branch if it exists locally, creates
	// a tracking branch if it exists only on origin, and otherwise creates
	// it from base (default branch HEAD when base is empty). Refuses with
	// ErrDirtyWorkingTree rather than discarding uncommitted changes.
	CheckoutOrCreate(ctx context.Context, path, name, base string) error
}

// CLI runs git operations by shelling out to the installed git binary.
type CLI struct {
	// Timeout bounds each subprocess call. Zero means DefaultTimeout.
	Timeout time.Duration
}

// NewCLI returns a Client backed by the git binary.
func NewCLI(timeout time.Duration) *CLI {
	return &CLI{Timeout: timeout}
}

// IsRepository reports whether path is inside a git working tree.
func (c *CLI) IsRepository(ctx context.Context, path string) bool {
	return c.runGit(ctx, path, "rev-parse", "--is-inside-work-tree") == nil
}

// CurrentBranch returns the current branch name.
// Returns "" for detached HEAD state or any error.
func (c *CLI) CurrentBranch(ctx context.Context, path string) string {
	output, err := c.outputGit(ctx, path, "branch", "--show-current")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(output))
}

// LocalBranches returns all local branch names.
// Uses for-each-ref over refs/heads so remote-tracking refs never appear.
func (c *CLI) LocalBranches(ctx context.Context, path string) ([]string, error) {
	output, err := c.outputGit(ctx, path, "for-each-ref", "--format=%(refname:short)", "refs/heads/")
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}

	var branches []string
	for _, line := range strings.Split(string(output), "\n") {
		if b := strings.TrimSpace(line); b != "" {
			branches = append(branches, b)
		}
	}
	return branches, nil
}

// BranchExists checks if a local branch exists.
func (c *CLI) BranchExists(ctx context.Context, path, name string) bool {
	return c.runGit(ctx, path, "rev-parse", "--verify", "--quiet", "refs/heads/"+name) == nil
}

// RemoteBranchExists checks if the branch exists on the origin remote.
func (c *CLI) RemoteBranchExists(ctx context.Context, path, name string) bool {
	return c.runGit(ctx, path, "rev-parse", "--verify", "--quiet", "refs/remotes/origin/"+name) == nil
}

// IsDirty returns true if the working tree has uncommitted changes or
// untracked files.
func (c *CLI) IsDirty(ctx context.Context, path string) bool {
	output, err := c.outputGit(ctx, path, "status", "--porcelain")
	if err != nil {
		return false // treat error as clean, checkout will surface real failures
	}
	return strings.TrimSpace(string(output)) != ""
}

// OriginURL gets the origin remote URL for a repository.
func (c *CLI) OriginURL(ctx context.Context, path string) (string, error) {
	output, err := c.outputGit(ctx, path, "remote", "get-url", "origin")
	if err != nil {
		return "", fmt.Errorf("no origin remote: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// DefaultBranch returns the default branch name for the repository
// (e.g. "main" or "master").
func (c *CLI) DefaultBranch(ctx context.Context, path string) string {
	// Try the remote HEAD first
	output, err := c.outputGit(ctx, path, "symbolic-ref", "refs/remotes/origin/HEAD")
	if err == nil {
		ref := strings.TrimSpace(string(output))
		if parts := strings.Split(ref, "/"); len(parts) > 0 {
			return parts[len(parts)-1]
		}
	}

	if c.BranchExists(ctx, path, "main") {
		return "main"
	}
	if c.BranchExists(ctx, path, "master") {
		return "master"
	}

	return "main"
}

// CheckoutOrCreate checks out name, creating it when needed.
func (c *CLI) CheckoutOrCreate(ctx context.Context, path, name, base string) error {
	if !c.IsRepository(ctx, path) {
		return fmt.Errorf("%w: %s", ErrNotARepository, path)
	}
	if c.IsDirty(ctx, path) {
		return fmt.Errorf("%w: commit or stash before switching branches", ErrDirtyWorkingTree)
	}

	switch {
	case c.BranchExists(ctx, path, name):
		if err := c.runGit(ctx, path, "checkout", name); err != nil {
			return fmt.Errorf("checkout %s: %w", name, err)
		}
	case c.RemoteBranchExists(ctx, path, name):
		// Create a local tracking branch for the remote ref
		if err := c.runGit(ctx, path, "checkout", "-b", name, "--track", "origin/"+name); err != nil {
			return fmt.Errorf("checkout tracking branch %s: %w", name, err)
		}
	default:
		baseRef := base
		if baseRef == "" {
			baseRef = c.DefaultBranch(ctx, path)
		}
		if !c.BranchExists(ctx, path, baseRef) {
			return fmt.Errorf("%w: base branch %q", ErrBranchNotFound, baseRef)
		}
		if err := c.runGit(ctx, path, "checkout", "-b", name, baseRef); err != nil {
			return fmt.Errorf("create branch %s from %s: %w", name, baseRef, err)
		}
	}

	return nil
}
