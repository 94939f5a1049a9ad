package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/lfrick/tix/internal/log"
	"github.com/lfrick/tix/internal/output"
	"github.com/lfrick/tix/internal/ui/styles"
)

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "verify [ticket]",
		Short:   "Verify associations against live git state",
		GroupID: GroupQuery,
		Args:    cobra.MaximumNArgs(1),
		Long: `Check that associated branches still exist in the current
repository.

A branch that no longer exists marks its association stale. Stale
associations are kept; remove them explicitly with tix remove.
Associations held by other repositories cannot be checked from here
and are reported as unverified.`,
		Example: `  tix verify            # Verify every association in this repository
  tix verify ENG-123    # Verify a single ticket`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			p := output.FromContext(ctx)

			var ticketID string
			if len(args) > 0 {
				ticketID = strings.ToUpper(args[0])
			}

			o, err := newEngine(ctx)
			if err != nil {
				return err
			}

			results, err := o.Verify(ctx, ticketID)
			if err != nil {
				return err
			}

			if len(results) == 0 {
				l.Printf("No associations to verify\n")
				return nil
			}

			color := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

			stale := 0
			for _, r := range results {
				var status string
				switch {
				case !r.Checked:
					status = "unverified (other repository)"
					if color {
						status = styles.MutedStyle.Render(status)
					}
				case r.Exists:
					status = styles.CheckMark + " ok"
					if color {
						status = styles.SuccessStyle.Render(status)
					}
				default:
					stale++
					status = styles.CrossMark + " stale, branch missing"
					if color {
						status = styles.ErrorStyle.Render(status)
					}
				}
				p.Printf("%s  %s  %s\n", r.Association.TicketID, r.Association.BranchName, status)
			}

			if stale > 0 {
				return fmt.Errorf("%d stale association(s)", stale)
			}
			return nil
		},
	}

	cmd.ValidArgsFunction = completeTicketIDs

	return cmd
}
