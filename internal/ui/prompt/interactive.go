package prompt

import (
	"os"

	"github.com/mattn/go-isatty"
)

// Interactive reports whether prompts can be shown. Prompts render to
// stderr and read from stdin, so both must be terminals.
func Interactive() bool {
	return isTerminal(os.Stdin.Fd()) && isTerminal(os.Stderr.Fd())
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
