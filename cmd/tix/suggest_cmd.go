package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lfrick/tix/internal/assoc"
	"github.com/lfrick/tix/internal/log"
	"github.com/lfrick/tix/internal/output"
	"github.com/lfrick/tix/internal/ui/prompt"
)

func newSuggestCmd() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:     "suggest <ticket>",
		Short:   "Suggest branches for a ticket",
		GroupID: GroupQuery,
		Args:    cobra.ExactArgs(1),
		Long: `Suggest branches in the current repository that likely belong to a
ticket, ranked by match quality.

Branches whose names carry the ticket identifier rank first; fuzzy
matches on branches without any recognizable identifier come last.
Branches carrying a different ticket's identifier are never
suggested.

With -i, pick a suggestion interactively to record it as the
ticket's association.`,
		Example: `  tix suggest ENG-123
  tix suggest ENG-123 -i     # Pick one and associate it`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			p := output.FromContext(ctx)

			ticketID := strings.ToUpper(args[0])

			o, err := newEngine(ctx)
			if err != nil {
				return err
			}

			suggestions, err := o.SuggestAssociations(ctx, ticketID)
			if err != nil {
				return err
			}

			if len(suggestions) == 0 {
				l.Printf("No candidate branches for %s\n", ticketID)
				return nil
			}

			if !interactive {
				for _, branch := range suggestions {
					p.Println(branch)
				}
				return nil
			}

			if !prompt.Interactive() {
				return fmt.Errorf("interactive mode requires a terminal")
			}

			result, err := prompt.Select(fmt.Sprintf("Associate %s with:", ticketID), suggestions)
			if err != nil {
				return err
			}
			if result.Cancelled {
				l.Printf("Cancelled\n")
				return nil
			}

			if err := o.Associate(ctx, ticketID, result.Value, assoc.SourceSuggestedAccepted); err != nil {
				return err
			}

			l.Printf("Associated %s with %s\n", ticketID, result.Value)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Pick a suggestion to record as the association")

	cmd.ValidArgsFunction = completeTicketIDs

	return cmd
}
