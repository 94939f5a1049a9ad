package main

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/lfrick/tix/internal/log"
	"github.com/lfrick/tix/internal/output"
	"github.com/lfrick/tix/internal/resolve"
)

func newBranchCmd() *cobra.Command {
	var copyToClipboard bool

	cmd := &cobra.Command{
		Use:     "branch <ticket>",
		Short:   "Print the branch associated with a ticket",
		GroupID: GroupQuery,
		Args:    cobra.ExactArgs(1),
		Long: `Resolve a ticket to its associated branch name and print it to
stdout.

The branch name is printed bare so it can be piped into other
commands. When the association points at the current repository the
branch is verified against live git state and a warning is printed to
stderr if it no longer exists.`,
		Example: `  tix branch ENG-123
  git checkout $(tix branch ENG-123)
  tix branch ENG-123 --copy             # Copy to clipboard`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			p := output.FromContext(ctx)

			ticketID := strings.ToUpper(args[0])

			o, err := newEngine(ctx)
			if err != nil {
				return err
			}

			branch := o.BranchForTicket(ticketID)
			if branch == "" {
				return fmt.Errorf("%w for %s", resolve.ErrNoAssociation, ticketID)
			}

			if !o.VerifyBranchExists(ctx, ticketID) {
				l.Warnf("branch %s no longer exists in this repository", branch)
			}

			p.Println(branch)

			if copyToClipboard {
				if err := clipboard.WriteAll(branch); err != nil {
					l.Warnf("failed to copy to clipboard: %v", err)
				} else {
					l.Printf("Copied to clipboard\n")
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&copyToClipboard, "copy", "c", false, "Copy the branch name to the clipboard")

	cmd.ValidArgsFunction = completeTicketIDs

	return cmd
}
