package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Error taxonomy for git operations. Callers match with errors.Is.
var (
	// ErrUnavailable indicates git is not installed or a call timed out.
	ErrUnavailable = errors.New("git unavailable")

	// ErrNotARepository indicates the path has no git working tree.
	ErrNotARepository = errors.New("not a git repository")

	// ErrBranchNotFound indicates the referenced branch is absent and
	// not creatable.
	ErrBranchNotFound = errors.New("branch not found")

	// ErrDirtyWorkingTree indicates a checkout would discard uncommitted
	// changes.
	ErrDirtyWorkingTree = errors.New("working tree has uncommitted changes")
)

// CheckGit verifies that git is available in PATH.
func CheckGit() error {
	if _, err := exec.LookPath("git"); err != nil {
		return fmt.Errorf("%w: please install git (https://git-scm.com)", ErrUnavailable)
	}
	return nil
}

// classify maps low-level execution failures onto the taxonomy.
// A timeout is reported as ErrUnavailable, not surfaced as a raw
// context error.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: command timed out", ErrUnavailable)
	}
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
