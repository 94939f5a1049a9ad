package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/lfrick/tix/internal/log"
)

func newCheckoutCmd() *cobra.Command {
	var (
		base   string
		create bool
	)

	cmd := &cobra.Command{
		Use:     "checkout <ticket>",
		Short:   "Check out the branch associated with a ticket",
		Aliases: []string{"co"},
		GroupID: GroupCore,
		Args:    cobra.ExactArgs(1),
		Long: `Check out the branch associated with a ticket in the current
repository.

If the branch no longer exists locally it is recreated, tracking the
matching remote branch when one exists, otherwise branching off the
base branch. A dirty working tree aborts the checkout before any
state changes.

With --create, a ticket that has no association yet gets a fresh
branch named after it, and the association is recorded.`,
		Example: `  tix checkout ENG-123
  tix checkout ENG-123 --base develop   # Base for recreating a lost branch
  tix checkout ENG-123 --create         # Start a branch for a new ticket`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)

			ticketID := strings.ToUpper(args[0])

			o, err := newEngine(ctx)
			if err != nil {
				return err
			}

			baseRef := base
			if baseRef == "" {
				baseRef = cfg.BaseBranch
			}

			l.Debug("checkout", "ticket", ticketID, "base", baseRef, "create", create)

			if create {
				branch, err := o.CheckoutCreate(ctx, ticketID, baseRef)
				if err != nil {
					return err
				}
				l.Printf("Switched to %s\n", branch)
				return nil
			}

			if err := o.Checkout(ctx, ticketID, baseRef); err != nil {
				return err
			}

			l.Printf("Switched to %s\n", o.BranchForTicket(ticketID))
			return nil
		},
	}

	cmd.Flags().StringVar(&base, "base", "", "Base branch when the associated branch must be recreated")
	cmd.Flags().BoolVarP(&create, "create", "c", false, "Create a branch for the ticket when no association exists")

	cmd.ValidArgsFunction = completeTicketIDs
	cmd.RegisterFlagCompletionFunc("base", completeBranches)

	return cmd
}
