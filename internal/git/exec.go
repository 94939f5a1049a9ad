package git

import (
	"context"
	"time"

	"github.com/lfrick/tix/internal/cmd"
)

// DefaultTimeout bounds every git subprocess call. A hung git process
// (e.g. a credential helper waiting for input) is killed rather than
// blocking the caller.
const DefaultTimeout = 5 * time.Second

// gitArgs prepends -C <dir> to args if dir is non-empty.
func gitArgs(dir string, args []string) []string {
	if dir == "" {
		return args
	}
	return append([]string{"-C", dir}, args...)
}

// runGit executes a git command with a bounded timeout and verbose logging.
func (c *CLI) runGit(ctx context.Context, dir string, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()
	return classify(cmd.RunContext(ctx, "", "git", gitArgs(dir, args)...))
}

// outputGit executes a git command with a bounded timeout and verbose
// logging, returning stdout.
func (c *CLI) outputGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()
	out, err := cmd.OutputContext(ctx, "", "git", gitArgs(dir, args)...)
	return out, classify(err)
}

func (c *CLI) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}
