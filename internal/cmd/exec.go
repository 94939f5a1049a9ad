package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/lfrick/tix/internal/log"
)

// RunContext executes a command in dir (cwd if empty) and returns stderr in
// the error message if it fails. The command is logged in verbose mode and
// killed when the context is cancelled or its deadline expires.
func RunContext(ctx context.Context, dir, name string, args ...string) error {
	log.FromContext(ctx).Command(name, args...)

	c := exec.CommandContext(ctx, name, args...)
	c.Dir = dir

	var stderr bytes.Buffer
	c.Stderr = &stderr
	if err := c.Run(); err != nil {
		return commandError(ctx, err, &stderr)
	}
	return nil
}

// OutputContext executes a command in dir (cwd if empty) and returns stdout,
// with stderr in the error message if it fails.
func OutputContext(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	log.FromContext(ctx).Command(name, args...)

	c := exec.CommandContext(ctx, name, args...)
	c.Dir = dir

	var stderr bytes.Buffer
	c.Stderr = &stderr
	output, err := c.Output()
	if err != nil {
		return nil, commandError(ctx, err, &stderr)
	}
	return output, nil
}

// commandError classifies a subprocess failure. Context errors win so callers
// can distinguish timeouts from ordinary non-zero exits.
func commandError(ctx context.Context, err error, stderr *bytes.Buffer) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		return fmt.Errorf("%s", msg)
	}
	return err
}
