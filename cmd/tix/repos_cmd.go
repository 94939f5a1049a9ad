package main

import (
	"github.com/spf13/cobra"

	"github.com/lfrick/tix/internal/log"
	"github.com/lfrick/tix/internal/output"
	"github.com/lfrick/tix/internal/registry"
)

func newReposCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "repos",
		Short:   "List known repositories",
		GroupID: GroupQuery,
		Args:    cobra.NoArgs,
		Long: `List repositories tix has seen, most recently seen first.

Repositories are registered automatically whenever a tix command runs
inside one; there is no explicit registration step.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			p := output.FromContext(ctx)

			o, err := newEngine(ctx)
			if err != nil {
				return err
			}

			repos := o.KnownRepositories()

			if asJSON {
				if repos == nil {
					repos = []registry.Descriptor{}
				}
				return p.JSON(repos)
			}

			if len(repos) == 0 {
				l.Printf("No repositories known yet\n")
				return nil
			}

			for _, r := range repos {
				seen := r.LastSeenAt.Format("2006-01-02 15:04")
				if r.RemoteURL != "" {
					p.Printf("%s  %s  %s  (%s)\n", r.ID, seen, r.Path, r.RemoteURL)
				} else {
					p.Printf("%s  %s  %s\n", r.ID, seen, r.Path)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}
