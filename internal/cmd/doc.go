// Package cmd provides helpers for executing external commands with proper
// error handling.
//
// This package wraps [os/exec.Cmd] to capture stderr and include it in error
// messages, making command failures more informative for users.
//
// # Design Notes
//
// tix shells out to the installed git binary rather than using a Go git
// library. This approach is simpler, more reliable, and ensures compatibility
// with user configurations (SSH keys, credential helpers, worktrees, etc.).
// Every invocation carries a context so callers can bound execution time;
// a subprocess that hangs is killed when the context deadline fires.
package cmd
