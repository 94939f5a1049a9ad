package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/lfrick/tix/internal/assoc"
	"github.com/lfrick/tix/internal/git"
	"github.com/lfrick/tix/internal/log"
)

// Orchestrator performs the mutating operations on associations by
// composing the Resolver with git. All methods persist the store (and
// registry sightings) before returning success.
type Orchestrator struct {
	*Resolver
}

// NewOrchestrator wraps a Resolver with mutating operations.
func NewOrchestrator(r *Resolver) *Orchestrator {
	return &Orchestrator{Resolver: r}
}

// Associate links a ticket to a local branch in the current repository.
// The branch must exist locally. Any prior association for the same
// (ticket, repository) pair is overwritten: last write wins, no merge.
func (o *Orchestrator) Associate(ctx context.Context, ticketID, branch string, source assoc.Source) error {
	if !o.hasCurrent {
		return ErrNoCurrentRepo
	}
	if !o.git.BranchExists(ctx, o.current.Path, branch) {
		return fmt.Errorf("%w: %q is not a local branch", git.ErrBranchNotFound, branch)
	}

	o.store.Put(o.newAssociation(ticketID, branch, source))
	return o.save()
}

// Remove deletes the ticket's association for the current repository only.
// Associations the ticket holds in other repositories are untouched.
// Returns false when the current repository holds no association for the
// ticket.
func (o *Orchestrator) Remove(ctx context.Context, ticketID string) (bool, error) {
	if !o.hasCurrent {
		return false, ErrNoCurrentRepo
	}
	if !o.store.Remove(ticketID, o.current.ID) {
		return false, nil
	}
	return true, o.save()
}

// Checkout resolves the ticket's association and, only when it points at
// the current repository, delegates to git checkout-or-create. When the
// association resolves to a different repository the call fails with
// ErrWrongRepository so the caller can route to the open-in-other-repo
// path instead. base overrides the branch to create from when the branch
// no longer exists locally.
func (o *Orchestrator) Checkout(ctx context.Context, ticketID, base string) error {
	a := o.Association(ticketID)
	if a == nil {
		return fmt.Errorf("%w: %s", ErrNoAssociation, ticketID)
	}
	if !o.hasCurrent {
		return ErrNoCurrentRepo
	}
	if a.RepositoryID != o.current.ID {
		return fmt.Errorf("%w: %s lives in %s", ErrWrongRepository, a.BranchName, a.RepositoryPath)
	}

	if err := o.git.CheckoutOrCreate(ctx, o.current.Path, a.BranchName, base); err != nil {
		return err
	}

	// The branch demonstrably exists now; record the verification.
	o.store.MarkVerified(ticketID, a.RepositoryID, true)
	return o.save()
}

// CheckoutCreate is Checkout for tickets that may have no association
// yet: when none exists it derives a branch name from the ticket,
// creates the branch, records the association, and checks it out. An
// existing association falls through to the regular checkout path.
// Returns the branch checked out.
func (o *Orchestrator) CheckoutCreate(ctx context.Context, ticketID, base string) (string, error) {
	if a := o.Association(ticketID); a != nil {
		return a.BranchName, o.Checkout(ctx, ticketID, base)
	}
	if !o.hasCurrent {
		return "", ErrNoCurrentRepo
	}

	branch := strings.ToLower(ticketID)
	if err := o.git.CheckoutOrCreate(ctx, o.current.Path, branch, base); err != nil {
		return "", err
	}

	o.store.Put(o.newAssociation(ticketID, branch, assoc.SourceManual))
	return branch, o.save()
}

// ScanResult is one association created by Scan.
type ScanResult struct {
	TicketID   string
	BranchName string
}

// Scan extracts ticket identifiers from unassociated local branches and
// persists them with source auto_detected. Branches whose ticket already
// has an association in this repository are skipped; Scan never
// overwrites. With dryRun the results are reported but nothing is
// persisted.
func (o *Orchestrator) Scan(ctx context.Context, dryRun bool) ([]ScanResult, error) {
	if !o.hasCurrent {
		return nil, ErrNoCurrentRepo
	}

	l := log.FromContext(ctx)

	branches, err := o.git.LocalBranches(ctx, o.current.Path)
	if err != nil {
		return nil, err
	}

	associated := make(map[string]bool) // branch names already linked
	taken := make(map[string]bool)      // tickets already linked here
	for _, a := range o.store.GetAllForRepository(o.current.ID) {
		associated[a.BranchName] = true
		taken[a.TicketID] = true
	}

	var results []ScanResult
	for _, branch := range branches {
		if associated[branch] {
			continue
		}
		for _, ticketID := range o.suggest.Extract(branch) {
			if taken[ticketID] {
				l.Debug("scan: ticket already associated", "ticket", ticketID, "branch", branch)
				continue
			}
			taken[ticketID] = true
			results = append(results, ScanResult{TicketID: ticketID, BranchName: branch})
			if !dryRun {
				o.store.Put(o.newAssociation(ticketID, branch, assoc.SourceAutoDetected))
			}
		}
	}

	if dryRun || len(results) == 0 {
		return results, nil
	}
	return results, o.save()
}

// VerifyResult is one association checked by Verify.
type VerifyResult struct {
	Association assoc.Association
	Exists      bool
	Checked     bool
}

// Verify checks the current repository's associations against live git
// state and persists the outcomes. Associations held by other
// repositories cannot be checked from here and are reported with
// Checked false. With ticketID set only that ticket is verified.
func (o *Orchestrator) Verify(ctx context.Context, ticketID string) ([]VerifyResult, error) {
	var candidates []assoc.Association
	if ticketID != "" {
		a := o.Association(ticketID)
		if a == nil {
			return nil, fmt.Errorf("%w: %s", ErrNoAssociation, ticketID)
		}
		candidates = []assoc.Association{*a}
	} else {
		if !o.hasCurrent {
			return nil, ErrNoCurrentRepo
		}
		candidates = o.store.GetAllForRepository(o.current.ID)
	}

	var results []VerifyResult
	changed := false
	for _, a := range candidates {
		r := VerifyResult{Association: a, Exists: true}
		if o.hasCurrent && a.RepositoryID == o.current.ID {
			r.Checked = true
			r.Exists = o.git.BranchExists(ctx, o.current.Path, a.BranchName)
			o.store.MarkVerified(a.TicketID, a.RepositoryID, r.Exists)
			changed = true
		}
		results = append(results, r)
	}

	if !changed {
		return results, nil
	}
	return results, o.save()
}

// save persists the store and the registry sightings.
func (o *Orchestrator) save() error {
	if err := o.store.Save(); err != nil {
		return err
	}
	return o.registry.Save()
}
