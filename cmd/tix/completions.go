package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

// completeTicketIDs provides ticket identifier completion from the
// association store. Completion runs without the command context so
// load warnings don't leak into shell completion output.
func completeTicketIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	o, err := newEngine(context.Background())
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	prefix := strings.ToUpper(toComplete)
	seen := make(map[string]bool)
	var matches []string
	for _, a := range o.AllAssociations() {
		if seen[a.TicketID] {
			continue
		}
		seen[a.TicketID] = true
		if strings.HasPrefix(a.TicketID, prefix) {
			matches = append(matches, a.TicketID)
		}
	}

	return matches, cobra.ShellCompDirectiveNoFileComp
}

// completeBranches provides local branch name completion for the
// current repository.
func completeBranches(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	ctx := context.Background()

	o, err := newEngine(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	branches, err := o.LocalBranches(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var matches []string
	for _, b := range branches {
		if strings.HasPrefix(b, toComplete) {
			matches = append(matches, b)
		}
	}

	return matches, cobra.ShellCompDirectiveNoFileComp
}
