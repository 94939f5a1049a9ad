package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lfrick/tix/internal/assoc"
	"github.com/lfrick/tix/internal/log"
)

func newAssociateCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "associate <ticket> [branch]",
		Short:   "Associate a ticket with a branch",
		Aliases: []string{"add"},
		GroupID: GroupCore,
		Args:    cobra.RangeArgs(1, 2),
		Long: `Record an association between a ticket identifier and a branch in
the current repository.

If no branch is given, the currently checked out branch is used. When
the ticket is already associated with a different branch in this
repository, pass --force to replace the record.`,
		Example: `  tix associate ENG-123                    # Associate with current branch
  tix associate ENG-123 feat/login-fix     # Associate with a named branch
  tix associate ENG-123 other-branch -f    # Replace an existing association`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)

			ticketID := strings.ToUpper(args[0])

			o, err := newEngine(ctx)
			if err != nil {
				return err
			}

			var branch string
			if len(args) > 1 {
				branch = args[1]
			} else {
				branch = o.CurrentBranch(ctx)
				if branch == "" {
					return fmt.Errorf("no branch given and no branch is checked out")
				}
			}

			l.Debug("associate", "ticket", ticketID, "branch", branch)

			if !force && o.IsTicketInCurrentRepo(ticketID) {
				if a := o.Association(ticketID); a != nil && a.BranchName != branch {
					return fmt.Errorf("%s is already associated with %s (use --force to replace)", ticketID, a.BranchName)
				}
			}

			if err := o.Associate(ctx, ticketID, branch, assoc.SourceManual); err != nil {
				return err
			}

			l.Printf("Associated %s with %s\n", ticketID, branch)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Replace an existing association for the ticket")

	cmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 1 {
			return completeBranches(cmd, args, toComplete)
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	return cmd
}
