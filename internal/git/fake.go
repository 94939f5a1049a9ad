package git

import (
	"context"
	"fmt"
	"slices"
)

// FakeRepo is the in-memory state of one working tree.
type FakeRepo struct {
	Branches       []string
	RemoteBranches []string
	Current        string
	Origin         string
	Dirty          bool
}

// Fake is an in-memory Client for tests. Paths not present in Repos are
// treated as non-repositories.
type Fake struct {
	Repos map[string]*FakeRepo
}

// NewFake returns an empty Fake.
func NewFake() *Fake {
	return &Fake{Repos: make(map[string]*FakeRepo)}
}

// AddRepo registers a fake working tree at path.
func (f *Fake) AddRepo(path string, repo *FakeRepo) {
	f.Repos[path] = repo
}

func (f *Fake) IsRepository(_ context.Context, path string) bool {
	_, ok := f.Repos[path]
	return ok
}

func (f *Fake) CurrentBranch(_ context.Context, path string) string {
	if r, ok := f.Repos[path]; ok {
		return r.Current
	}
	return ""
}

func (f *Fake) LocalBranches(_ context.Context, path string) ([]string, error) {
	r, ok := f.Repos[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotARepository, path)
	}
	return slices.Clone(r.Branches), nil
}

func (f *Fake) BranchExists(_ context.Context, path, name string) bool {
	r, ok := f.Repos[path]
	return ok && slices.Contains(r.Branches, name)
}

func (f *Fake) RemoteBranchExists(_ context.Context, path, name string) bool {
	r, ok := f.Repos[path]
	return ok && slices.Contains(r.RemoteBranches, name)
}

func (f *Fake) IsDirty(_ context.Context, path string) bool {
	r, ok := f.Repos[path]
	return ok && r.Dirty
}

func (f *Fake) OriginURL(_ context.Context, path string) (string, error) {
	r, ok := f.Repos[path]
	if !ok || r.Origin == "" {
		return "", fmt.Errorf("no origin remote")
	}
	return r.Origin, nil
}

func (f *Fake) DefaultBranch(_ context.Context, path string) string {
	if r, ok := f.Repos[path]; ok && slices.Contains(r.Branches, "master") && !slices.Contains(r.Branches, "main") {
		return "master"
	}
	return "main"
}

func (f *Fake) CheckoutOrCreate(_ context.Context, path, name, base string) error {
	r, ok := f.Repos[path]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotARepository, path)
	}
	if r.Dirty {
		return fmt.Errorf("%w: commit or stash before switching branches", ErrDirtyWorkingTree)
	}

	switch {
	case slices.Contains(r.Branches, name):
		// existing local branch
	case slices.Contains(r.RemoteBranches, name):
		r.Branches = append(r.Branches, name)
	default:
		baseRef := base
		if baseRef == "" {
			baseRef = "main"
		}
		if !slices.Contains(r.Branches, baseRef) {
			return fmt.Errorf("%w: base branch %q", ErrBranchNotFound, baseRef)
		}
		r.Branches = append(r.Branches, name)
	}

	r.Current = name
	return nil
}
