package main

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/lfrick/tix/internal/assoc"
	"github.com/lfrick/tix/internal/log"
	"github.com/lfrick/tix/internal/output"
	"github.com/lfrick/tix/internal/ui"
)

func newListCmd() *cobra.Command {
	var (
		repoPath string
		all      bool
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List ticket associations",
		Aliases: []string{"ls"},
		GroupID: GroupQuery,
		Args:    cobra.NoArgs,
		Long: `List ticket associations for the current repository.

Use --repo to list another repository's associations, or --all for
every association across repositories.`,
		Example: `  tix list
  tix list --all
  tix list --repo ~/code/backend
  tix list --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			p := output.FromContext(ctx)

			o, err := newEngine(ctx)
			if err != nil {
				return err
			}

			var assocs []assoc.Association
			switch {
			case all:
				assocs = o.AllAssociations()
			case repoPath != "":
				assocs = o.AssociationsForRepository(ctx, repoPath)
			default:
				assocs = o.AssociationsForRepository(ctx, workDir)
			}

			if asJSON {
				if assocs == nil {
					assocs = []assoc.Association{}
				}
				return p.JSON(assocs)
			}

			if len(assocs) == 0 {
				l.Printf("No associations\n")
				return nil
			}

			color := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
			p.Print(ui.FormatAssociationsTable(assocs, color))
			return nil
		},
	}

	cmd.Flags().StringVarP(&repoPath, "repo", "r", "", "List associations for a repository path")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "List associations across all repositories")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.MarkFlagsMutuallyExclusive("repo", "all")

	return cmd
}
