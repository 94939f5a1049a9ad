//go:build integration

package main

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lfrick/tix/internal/config"
	"github.com/lfrick/tix/internal/resolve"
	"github.com/lfrick/tix/internal/storage"
)

// resolvePath resolves symlinks in a path.
// This is needed on macOS where /var is a symlink to /private/var.
func resolvePath(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		t.Fatalf("failed to resolve path %s: %v", path, err)
	}
	return resolved
}

// setupTestRepo creates a git repo with initial commit in dir/name.
// Returns the absolute path to the created repo (with symlinks resolved).
func setupTestRepo(t *testing.T, dir, name string) string {
	t.Helper()

	dir = resolvePath(t, dir)

	repoPath := filepath.Join(dir, name)
	if err := os.MkdirAll(repoPath, 0755); err != nil {
		t.Fatalf("failed to create repo dir: %v", err)
	}

	cmds := [][]string{
		{"git", "init", "-b", "main"},
		{"git", "config", "user.email", "test@test.com"},
		{"git", "config", "user.name", "Test User"},
		{"git", "config", "commit.gpgsign", "false"},
	}
	for _, args := range cmds {
		runGitCommand(t, repoPath, args...)
	}

	readmePath := filepath.Join(repoPath, "README.md")
	if err := os.WriteFile(readmePath, []byte("# "+name+"\n"), 0644); err != nil {
		t.Fatalf("failed to write README: %v", err)
	}
	runGitCommand(t, repoPath, "git", "add", "README.md")
	runGitCommand(t, repoPath, "git", "commit", "-m", "Initial commit")

	// Set up a fake origin for repository identity derivation
	runGitCommand(t, repoPath, "git", "remote", "add", "origin", "https://github.com/test/"+name+".git")

	return repoPath
}

// newTestEngine builds an orchestrator rooted at repoPath with isolated
// on-disk state.
func newTestEngine(t *testing.T, repoPath string) *resolve.Orchestrator {
	t.Helper()

	t.Setenv(storage.EnvDataDir, t.TempDir())

	testCfg := config.Default()
	cfg = &testCfg
	workDir = repoPath

	o, err := newEngine(context.Background())
	if err != nil {
		t.Fatalf("failed to build engine: %v", err)
	}
	return o
}

// newTestEngineSameState rebuilds the orchestrator against the on-disk
// state newTestEngine created, simulating a second CLI invocation.
func newTestEngineSameState(t *testing.T, repoPath string) *resolve.Orchestrator {
	t.Helper()

	workDir = repoPath
	o, err := newEngine(context.Background())
	if err != nil {
		t.Fatalf("failed to rebuild engine: %v", err)
	}
	return o
}

// createBranch creates a branch (without checking it out)
func createBranch(t *testing.T, repoPath, branch string) {
	t.Helper()
	runGitCommand(t, repoPath, "git", "branch", branch)
}

// currentBranch returns the checked out branch.
func currentBranch(t *testing.T, repoPath string) string {
	t.Helper()
	out := runGitCommand(t, repoPath, "git", "rev-parse", "--abbrev-ref", "HEAD")
	return strings.TrimSpace(out)
}

// makeDirty creates uncommitted changes in the repo.
func makeDirty(t *testing.T, repoPath string) {
	t.Helper()
	readmePath := filepath.Join(repoPath, "README.md")
	if err := os.WriteFile(readmePath, []byte("uncommitted changes\n"), 0644); err != nil {
		t.Fatalf("failed to dirty repo: %v", err)
	}
}

// runGitCommand runs a git command and returns output
func runGitCommand(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("failed to run %v: %v\n%s", args, err, out)
	}
	return string(out)
}
