// Package registry canonicalizes working-tree paths into stable repository
// identities and records sightings of repositories across sessions in
// ~/.tix/repos.json.
//
// Identity is derived from the normalized origin URL when one exists, so a
// repository keeps its id across path renames and even across machines.
// Local-only repos fall back to a path-derived id, which is not stable
// across moves. That limitation is inherent to path identity and is
// surfaced in the descriptor rather than papered over with heuristics.
package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/lfrick/tix/internal/git"
	"github.com/lfrick/tix/internal/storage"
)

// Descriptor identifies one repository seen by tix.
type Descriptor struct {
	ID         string    `json:"id"`                   // derived, not user-assigned
	Path       string    `json:"path"`                 // last-known canonical path
	RemoteURL  string    `json:"remote_url,omitempty"` // normalized origin URL, empty for local-only repos
	LastSeenAt time.Time `json:"last_seen_at"`
}

// PathDerived reports whether the id falls back to path identity because
// the repository has no origin remote.
func (d *Descriptor) PathDerived() bool {
	return d.RemoteURL == ""
}

// Registry holds all repositories ever seen. Entries are append-only:
// a repository that disappears is aged out via LastSeenAt, never deleted,
// since repos routinely reappear after being offline.
type Registry struct {
	Repos []Descriptor `json:"repos"`

	git git.Client
}

// New returns an empty in-memory registry backed by the given git client.
func New(gitClient git.Client) *Registry {
	return &Registry{git: gitClient}
}

// registryPath returns the path to repos.json in the data directory.
func registryPath() (string, error) {
	dir, err := storage.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "repos.json"), nil
}

// Load reads the registry from disk. Returns an empty registry if the file
// doesn't exist. An unreadable file is backed up and replaced with an empty
// registry rather than failing startup; the backup path is returned so the
// caller can warn the user.
func Load(gitClient git.Client) (reg *Registry, backupPath string, err error) {
	path, err := registryPath()
	if err != nil {
		return nil, "", err
	}

	reg = &Registry{git: gitClient}
	if err := storage.LoadJSON(path, reg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return reg, "", nil
		}
		backup, backupErr := storage.BackupCorrupt(path)
		if backupErr != nil {
			return nil, "", fmt.Errorf("registry unreadable and backup failed: %w", backupErr)
		}
		return &Registry{git: gitClient}, backup, nil
	}
	return reg, "", nil
}

// Save writes the registry to disk atomically.
func (r *Registry) Save() error {
	path, err := registryPath()
	if err != nil {
		return err
	}
	if err := storage.SaveJSON(path, r); err != nil {
		return fmt.Errorf("save registry: %w", err)
	}
	return nil
}

// Identify canonicalizes a working-tree path into a Descriptor. The id is
// derived from the normalized origin URL when available, else from the
// canonical path.
func (r *Registry) Identify(ctx context.Context, path string) (Descriptor, error) {
	canonical, err := CanonicalPath(path)
	if err != nil {
		return Descriptor{}, err
	}
	if !r.git.IsRepository(ctx, canonical) {
		return Descriptor{}, fmt.Errorf("%w: %s", git.ErrNotARepository, canonical)
	}

	desc := Descriptor{Path: canonical, LastSeenAt: time.Now()}

	if url, err := r.git.OriginURL(ctx, canonical); err == nil {
		desc.RemoteURL = NormalizeRemoteURL(url)
		desc.ID = DeriveID(desc.RemoteURL)
	} else {
		// Local-only repo: path-derived identity, not stable across moves.
		desc.ID = DeriveID(canonical)
	}

	return desc, nil
}

// RegisterSighting upserts a descriptor, refreshing LastSeenAt and the
// last-known path. Lets stale paths (deleted or moved repos) be told apart
// from "just haven't opened it this session".
func (r *Registry) RegisterSighting(desc Descriptor) {
	for i := range r.Repos {
		if r.Repos[i].ID == desc.ID {
			r.Repos[i].Path = desc.Path
			r.Repos[i].RemoteURL = desc.RemoteURL
			r.Repos[i].LastSeenAt = desc.LastSeenAt
			return
		}
	}
	r.Repos = append(r.Repos, desc)
}

// FindByID looks up a descriptor by repository id.
func (r *Registry) FindByID(id string) (*Descriptor, bool) {
	for i := range r.Repos {
		if r.Repos[i].ID == id {
			return &r.Repos[i], true
		}
	}
	return nil, false
}

// FindByPath looks up a descriptor by canonical path.
func (r *Registry) FindByPath(path string) (*Descriptor, bool) {
	canonical, err := CanonicalPath(path)
	if err != nil {
		return nil, false
	}
	for i := range r.Repos {
		if r.Repos[i].Path == canonical {
			return &r.Repos[i], true
		}
	}
	return nil, false
}

// All returns descriptors sorted by most recently seen.
func (r *Registry) All() []Descriptor {
	repos := slices.Clone(r.Repos)
	slices.SortFunc(repos, func(a, b Descriptor) int {
		return b.LastSeenAt.Compare(a.LastSeenAt)
	})
	return repos
}
