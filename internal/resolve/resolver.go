package resolve

import (
	"context"
	"errors"
	"time"

	"github.com/lfrick/tix/internal/assoc"
	"github.com/lfrick/tix/internal/git"
	"github.com/lfrick/tix/internal/registry"
	"github.com/lfrick/tix/internal/suggest"
)

// Errors surfaced by the engine. The CLI converts them to warnings and
// exit codes; they never escape as panics.
var (
	// ErrNoAssociation indicates the ticket has no associated branch.
	ErrNoAssociation = errors.New("no branch associated with ticket")

	// ErrWrongRepository indicates the ticket's branch lives in a
	// different repository than the current one. The caller should use
	// the open-in-other-repository path instead.
	ErrWrongRepository = errors.New("ticket is associated with a different repository")

	// ErrNoCurrentRepo indicates the workspace is not inside a git
	// repository.
	ErrNoCurrentRepo = errors.New("current workspace is not a git repository")
)

// Resolver answers read-only questions about ticket-branch associations.
type Resolver struct {
	store    *assoc.Store
	registry *registry.Registry
	git      git.Client
	suggest  *suggest.Engine

	workspace  string
	current    registry.Descriptor
	hasCurrent bool
}

// New creates a Resolver rooted at workspacePath. If the workspace is
// inside a git repository, its identity is resolved and a sighting is
// recorded; otherwise lookups still work but current-repo operations
// report ErrNoCurrentRepo.
func New(ctx context.Context, store *assoc.Store, reg *registry.Registry, gitClient git.Client, engine *suggest.Engine, workspacePath string) *Resolver {
	r := &Resolver{
		store:     store,
		registry:  reg,
		git:       gitClient,
		suggest:   engine,
		workspace: workspacePath,
	}

	if desc, err := reg.Identify(ctx, workspacePath); err == nil {
		r.current = desc
		r.hasCurrent = true
		reg.RegisterSighting(desc)
	}

	return r
}

// CurrentRepository returns the descriptor of the workspace repository.
func (r *Resolver) CurrentRepository() (registry.Descriptor, bool) {
	return r.current, r.hasCurrent
}

// BranchForTicket returns the branch associated with a ticket, checking
// the workspace-local scope first, then the global scope across all known
// repositories. Returns "" when no association exists. The branch may live
// in a repository other than the current one; use IsTicketInCurrentRepo to
// tell.
func (r *Resolver) BranchForTicket(ticketID string) string {
	if a := r.store.Get(ticketID, assoc.ScopeLocal); a != nil {
		return a.BranchName
	}
	if a := r.store.Get(ticketID, assoc.ScopeGlobal); a != nil {
		return a.BranchName
	}
	return ""
}

// Association returns the association record for a ticket, preferring the
// current repository's record when one exists.
func (r *Resolver) Association(ticketID string) *assoc.Association {
	if r.hasCurrent {
		if a := r.store.GetByRepository(ticketID, r.current.ID); a != nil {
			return a
		}
	}
	if a := r.store.Get(ticketID, assoc.ScopeLocal); a != nil {
		return a
	}
	return r.store.Get(ticketID, assoc.ScopeGlobal)
}

// IsTicketInCurrentRepo reports whether the ticket's association points at
// the currently open repository.
func (r *Resolver) IsTicketInCurrentRepo(ticketID string) bool {
	if !r.hasCurrent {
		return false
	}
	return r.store.GetByRepository(ticketID, r.current.ID) != nil
}

// VerifyBranchExists confirms a persisted association still matches live
// git state.
//
// The policy is asymmetric on purpose: when the association's repository
// is the current one, git is asked and the true answer is returned
// (correctness over optimism); when it is a different, not-currently-open
// repository, verification is skipped and the persisted record is trusted.
// This avoids false "branch missing" reports for branches that simply live
// elsewhere. The outcome is recorded on the association (Stale flag) for
// current-repo checks.
func (r *Resolver) VerifyBranchExists(ctx context.Context, ticketID string) bool {
	a := r.Association(ticketID)
	if a == nil {
		return false
	}

	if !r.hasCurrent || a.RepositoryID != r.current.ID {
		// Different repo: no access to that working tree, trust the record.
		return true
	}

	exists := r.git.BranchExists(ctx, r.current.Path, a.BranchName)
	r.store.MarkVerified(ticketID, a.RepositoryID, exists)
	return exists
}

// SuggestAssociations returns candidate branches for a ticket from the
// current repository's unassociated local branches, ranked by identifier
// match confidence.
func (r *Resolver) SuggestAssociations(ctx context.Context, ticketID string) ([]string, error) {
	if !r.hasCurrent {
		return nil, ErrNoCurrentRepo
	}

	branches, err := r.git.LocalBranches(ctx, r.current.Path)
	if err != nil {
		return nil, err
	}

	associated := make(map[string]bool)
	for _, a := range r.store.GetAllForRepository(r.current.ID) {
		associated[a.BranchName] = true
	}

	var candidates []string
	for _, b := range branches {
		if !associated[b] {
			candidates = append(candidates, b)
		}
	}

	return r.suggest.Rank(ticketID, candidates), nil
}

// AssociationsForRepository returns the global associations recorded for
// the repository at path. The path does not need to be the current
// workspace; it is resolved through the registry (and, if unknown there,
// identified directly on disk).
func (r *Resolver) AssociationsForRepository(ctx context.Context, path string) []assoc.Association {
	if desc, ok := r.registry.FindByPath(path); ok {
		return r.store.GetAllForRepository(desc.ID)
	}
	if desc, err := r.registry.Identify(ctx, path); err == nil {
		return r.store.GetAllForRepository(desc.ID)
	}
	return nil
}

// AllAssociations returns every association across all repositories,
// used to discover "what tickets am I touching across all my repos".
func (r *Resolver) AllAssociations() []assoc.Association {
	return r.store.GetAll()
}

// KnownRepositories returns every repository the registry has seen,
// most recently seen first.
func (r *Resolver) KnownRepositories() []registry.Descriptor {
	return r.registry.All()
}

// LocalBranches lists the current repository's local branches.
func (r *Resolver) LocalBranches(ctx context.Context) ([]string, error) {
	if !r.hasCurrent {
		return nil, ErrNoCurrentRepo
	}
	return r.git.LocalBranches(ctx, r.current.Path)
}

// CurrentBranch returns the current repository's checked-out branch, or ""
// for detached HEAD or outside a repository.
func (r *Resolver) CurrentBranch(ctx context.Context) string {
	if !r.hasCurrent {
		return ""
	}
	return r.git.CurrentBranch(ctx, r.current.Path)
}

// newAssociation builds a record bound to the current repository.
func (r *Resolver) newAssociation(ticketID, branch string, source assoc.Source) assoc.Association {
	now := time.Now()
	return assoc.Association{
		TicketID:       ticketID,
		BranchName:     branch,
		RepositoryID:   r.current.ID,
		RepositoryPath: r.current.Path,
		Source:         source,
		CreatedAt:      now,
		LastVerifiedAt: now,
	}
}
