package assoc

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/lfrick/tix/internal/storage"
)

// Scope selects which namespace an operation targets.
type Scope string

const (
	// ScopeLocal is the workspace-bound namespace (fast path for the
	// currently open workspace).
	ScopeLocal Scope = "local"

	// ScopeGlobal spans all repositories ever seen.
	ScopeGlobal Scope = "global"
)

// Store owns association records for one workspace session. Writes are
// serialized by an in-process mutex; the engine runs in a single process,
// so no cross-process locking is needed. Reads during an in-flight write
// observe the last committed snapshot because saves go through a temp file
// and atomic rename.
type Store struct {
	mu sync.Mutex

	globalPath string
	localPath  string

	global []Association
	local  []Association
}

// Open loads the global store and the local store for the given workspace
// path. Corrupt or schema-incompatible files are backed up and replaced
// with empty stores; each recovery produces a warning for the UI rather
// than an error, so startup never blocks on bad state.
func Open(workspacePath string) (*Store, []string, error) {
	dir, err := storage.Dir()
	if err != nil {
		return nil, nil, err
	}

	s := &Store{
		globalPath: filepath.Join(dir, "associations.json"),
		localPath:  filepath.Join(dir, "workspaces", workspaceKey(workspacePath)+".json"),
	}

	var warnings []string
	if s.global, err = loadDocument(s.globalPath, &warnings); err != nil {
		return nil, nil, err
	}
	if s.local, err = loadDocument(s.localPath, &warnings); err != nil {
		return nil, nil, err
	}

	return s, warnings, nil
}

// workspaceKey hashes a workspace path into a stable file name.
func workspaceKey(workspacePath string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(workspacePath)))
	return "ws_" + hex.EncodeToString(sum[:])[:12]
}

// loadDocument reads one store file, migrating older formats and recovering
// from corruption by backing the file up and starting empty.
func loadDocument(path string, warnings *[]string) ([]Association, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read store: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err == nil && doc.SchemaVersion == schemaVersion {
		return dedupe(doc.Associations, warnings), nil
	}

	// Version 0: a bare map of ticketId -> branchName from before the
	// store was versioned. Forward-migrate what we can.
	var legacy map[string]string
	if err := json.Unmarshal(data, &legacy); err == nil && len(legacy) > 0 {
		migrated := make([]Association, 0, len(legacy))
		for ticket, branch := range legacy {
			migrated = append(migrated, Association{
				TicketID:   ticket,
				BranchName: branch,
				Source:     SourceManual,
				CreatedAt:  time.Now(),
			})
		}
		slices.SortFunc(migrated, func(a, b Association) int {
			return compareStrings(a.TicketID, b.TicketID)
		})
		*warnings = append(*warnings, fmt.Sprintf("migrated %s from legacy format", filepath.Base(path)))
		return migrated, nil
	}

	// Unreadable or from a future schema: back it up and start empty.
	backup, backupErr := storage.BackupCorrupt(path)
	if backupErr != nil {
		return nil, fmt.Errorf("store unreadable and backup failed: %w", backupErr)
	}
	*warnings = append(*warnings, fmt.Sprintf("store file was unreadable, backed up to %s", backup))
	return nil, nil
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// dedupe enforces the one-association-per-(ticket, repository) invariant,
// keeping the newest record when the file violates it.
func dedupe(assocs []Association, warnings *[]string) []Association {
	seen := make(map[string]int)
	var out []Association
	for _, a := range assocs {
		key := a.TicketID + "\x00" + a.RepositoryID
		if i, ok := seen[key]; ok {
			*warnings = append(*warnings, fmt.Sprintf("%v: ticket %s, keeping newest record", ErrDuplicateAssociation, a.TicketID))
			if a.CreatedAt.After(out[i].CreatedAt) {
				out[i] = a
			}
			continue
		}
		seen[key] = len(out)
		out = append(out, a)
	}
	return out
}

// Get returns the association for a ticket in the given scope, or nil.
// In the global scope the first match across repositories is returned;
// use GetByRepository for an exact (ticket, repository) lookup.
func (s *Store) Get(ticketID string, scope Scope) *Association {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.local
	if scope == ScopeGlobal {
		records = s.global
	}
	for i := range records {
		if records[i].TicketID == ticketID {
			a := records[i]
			return &a
		}
	}
	return nil
}

// GetByRepository returns the association for (ticket, repository) in the
// global scope, or nil.
func (s *Store) GetByRepository(ticketID, repositoryID string) *Association {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.global {
		if s.global[i].TicketID == ticketID && s.global[i].RepositoryID == repositoryID {
			a := s.global[i]
			return &a
		}
	}
	return nil
}

// GetAllForRepository returns all global associations for one repository.
func (s *Store) GetAllForRepository(repositoryID string) []Association {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Association
	for _, a := range s.global {
		if a.RepositoryID == repositoryID {
			out = append(out, a)
		}
	}
	return out
}

// GetAll returns every global association.
func (s *Store) GetAll() []Association {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.global)
}

// Put upserts an association in both scopes. Any prior record for the same
// (ticket, repository) pair is overwritten: last write wins, no merge.
func (s *Store) Put(a Association) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.local = upsert(s.local, a, func(old Association) bool {
		return old.TicketID == a.TicketID
	})
	s.global = upsert(s.global, a, func(old Association) bool {
		return old.TicketID == a.TicketID && old.RepositoryID == a.RepositoryID
	})
}

func upsert(records []Association, a Association, match func(Association) bool) []Association {
	for i := range records {
		if match(records[i]) {
			records[i] = a
			return records
		}
	}
	return append(records, a)
}

// Remove deletes the association for (ticket, repository) from both scopes.
// Associations held by other repositories are untouched. Records migrated
// from the unversioned format carry no repository id; they match any
// repository so they stay deletable. Returns true if a record was removed.
func (s *Store) Remove(ticketID, repositoryID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := false
	s.global = slices.DeleteFunc(s.global, func(a Association) bool {
		if a.TicketID == ticketID && (a.RepositoryID == repositoryID || a.RepositoryID == "") {
			removed = true
			return true
		}
		return false
	})
	s.local = slices.DeleteFunc(s.local, func(a Association) bool {
		return a.TicketID == ticketID && (a.RepositoryID == repositoryID || a.RepositoryID == "")
	})
	return removed
}

// MarkVerified records a verification outcome for (ticket, repository).
// A failed verification flags the record as stale; it is never deleted
// here, deletion is always explicit via Remove.
func (s *Store) MarkVerified(ticketID, repositoryID string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, records := range [][]Association{s.global, s.local} {
		for i := range records {
			if records[i].TicketID == ticketID && records[i].RepositoryID == repositoryID {
				records[i].LastVerifiedAt = now
				records[i].Stale = !ok
			}
		}
	}
}

// Save writes both scopes to disk atomically.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := storage.SaveJSON(s.globalPath, document{SchemaVersion: schemaVersion, Associations: s.global}); err != nil {
		return fmt.Errorf("save global store: %w", err)
	}
	if err := storage.SaveJSON(s.localPath, document{SchemaVersion: schemaVersion, Associations: s.local}); err != nil {
		return fmt.Errorf("save workspace store: %w", err)
	}
	return nil
}
