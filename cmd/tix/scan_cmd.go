package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lfrick/tix/internal/log"
	"github.com/lfrick/tix/internal/output"
	"github.com/lfrick/tix/internal/ui/prompt"
)

func newScanCmd() *cobra.Command {
	var (
		dryRun bool
		yes    bool
	)

	cmd := &cobra.Command{
		Use:     "scan",
		Short:   "Detect ticket associations from branch names",
		GroupID: GroupCore,
		Args:    cobra.NoArgs,
		Long: `Scan the current repository's branches for ticket identifiers and
record an association for each detected ticket.

Existing associations are never overwritten; a detected ticket that
already has one is skipped. Use --dry-run to preview detections
without saving anything.`,
		Example: `  tix scan
  tix scan --dry-run
  tix scan --yes        # Skip the confirmation prompt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			p := output.FromContext(ctx)

			o, err := newEngine(ctx)
			if err != nil {
				return err
			}

			// Preview first so the confirmation can show what would change.
			preview, err := o.Scan(ctx, true)
			if err != nil {
				return err
			}

			if len(preview) == 0 {
				l.Printf("No new associations detected\n")
				return nil
			}

			for _, r := range preview {
				p.Printf("%s -> %s\n", r.TicketID, r.BranchName)
			}

			if dryRun {
				l.Printf("Dry run, nothing saved\n")
				return nil
			}

			if !yes && prompt.Interactive() {
				result, err := prompt.Confirm(fmt.Sprintf("Save %d association(s)?", len(preview)))
				if err != nil {
					return err
				}
				if result.Cancelled || !result.Confirmed {
					l.Printf("Cancelled\n")
					return nil
				}
			}

			if _, err := o.Scan(ctx, false); err != nil {
				return err
			}

			l.Printf("Saved %d association(s)\n", len(preview))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show detections without saving")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Save without confirmation")
	cmd.MarkFlagsMutuallyExclusive("dry-run", "yes")

	return cmd
}
