package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/lfrick/tix/internal/log"
)

func newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove <ticket>",
		Short:   "Remove a ticket's association in the current repository",
		Aliases: []string{"rm"},
		GroupID: GroupCore,
		Args:    cobra.ExactArgs(1),
		Long: `Remove the association between a ticket and its branch in the
current repository.

Associations the same ticket holds in other repositories are left
untouched. The branch itself is never deleted.`,
		Example: `  tix remove ENG-123`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)

			ticketID := strings.ToUpper(args[0])

			o, err := newEngine(ctx)
			if err != nil {
				return err
			}

			removed, err := o.Remove(ctx, ticketID)
			if err != nil {
				return err
			}
			if !removed {
				l.Printf("No association for %s in this repository\n", ticketID)
				return nil
			}

			l.Printf("Removed association for %s\n", ticketID)
			return nil
		},
	}

	cmd.ValidArgsFunction = completeTicketIDs

	return cmd
}
