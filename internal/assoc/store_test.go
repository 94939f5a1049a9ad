package assoc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lfrick/tix/internal/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	t.Setenv(storage.EnvDataDir, t.TempDir())

	s, warnings, err := Open("/workspaces/backend")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings on fresh store: %v", warnings)
	}
	return s
}

func testAssociation(ticket, branch, repoID string) Association {
	return Association{
		TicketID:       ticket,
		BranchName:     branch,
		RepositoryID:   repoID,
		RepositoryPath: "/repos/backend",
		Source:         SourceManual,
		CreatedAt:      time.Now(),
	}
}

func TestPutGet_RoundTrip(t *testing.T) {
	s := openTestStore(t)

	s.Put(testAssociation("ENG-123", "feat/eng-123-auth", "r_ab12cd3344"))

	for _, scope := range []Scope{ScopeLocal, ScopeGlobal} {
		got := s.Get("ENG-123", scope)
		if got == nil {
			t.Fatalf("Get(ENG-123, %s) = nil, want association", scope)
		}
		if got.BranchName != "feat/eng-123-auth" {
			t.Errorf("BranchName = %q, want %q", got.BranchName, "feat/eng-123-auth")
		}
	}

	if got := s.Get("ENG-999", ScopeGlobal); got != nil {
		t.Errorf("Get(unknown ticket) = %+v, want nil", got)
	}
}

func TestPut_Idempotent(t *testing.T) {
	s := openTestStore(t)

	a := testAssociation("ENG-123", "feat/eng-123-auth", "r_ab12cd3344")
	s.Put(a)
	s.Put(a)

	if n := len(s.GetAll()); n != 1 {
		t.Errorf("two identical Puts produced %d associations, want 1", n)
	}
}

func TestPut_OverwritesSamePair(t *testing.T) {
	s := openTestStore(t)

	s.Put(testAssociation("ENG-123", "old-branch", "r_ab12cd3344"))
	s.Put(testAssociation("ENG-123", "new-branch", "r_ab12cd3344"))

	got := s.GetByRepository("ENG-123", "r_ab12cd3344")
	if got == nil || got.BranchName != "new-branch" {
		t.Errorf("GetByRepository = %+v, want new-branch (last write wins)", got)
	}
	if n := len(s.GetAll()); n != 1 {
		t.Errorf("re-association produced %d records, want 1", n)
	}
}

func TestPut_SameTicketDifferentRepos(t *testing.T) {
	s := openTestStore(t)

	// A ticket can be worked in two repos simultaneously (frontend + backend)
	s.Put(testAssociation("ENG-123", "feat/eng-123-api", "r_backend001"))
	s.Put(testAssociation("ENG-123", "feat/eng-123-ui", "r_frontend01"))

	if n := len(s.GetAll()); n != 2 {
		t.Fatalf("expected 2 associations across repos, got %d", n)
	}
	if got := s.GetByRepository("ENG-123", "r_frontend01"); got == nil || got.BranchName != "feat/eng-123-ui" {
		t.Errorf("frontend association = %+v, want feat/eng-123-ui", got)
	}
}

func TestRemove_CurrentRepoOnly(t *testing.T) {
	s := openTestStore(t)

	s.Put(testAssociation("ENG-123", "feat/eng-123-api", "r_backend001"))
	s.Put(testAssociation("ENG-123", "feat/eng-123-ui", "r_frontend01"))

	if !s.Remove("ENG-123", "r_backend001") {
		t.Fatal("Remove returned false, want true")
	}

	if got := s.GetByRepository("ENG-123", "r_backend001"); got != nil {
		t.Errorf("removed association still present: %+v", got)
	}
	// The other repo's association survives
	if got := s.GetByRepository("ENG-123", "r_frontend01"); got == nil {
		t.Error("Remove deleted an association in another repository")
	}

	if s.Remove("ENG-999", "r_backend001") {
		t.Error("Remove of unknown ticket returned true, want false")
	}
}

func TestSaveLoad_Persistence(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv(storage.EnvDataDir, dataDir)

	s, _, err := Open("/workspaces/backend")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	s.Put(testAssociation("ENG-123", "feat/eng-123-auth", "r_ab12cd3344"))
	if err := s.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded, warnings, err := Open("/workspaces/backend")
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	got := reloaded.Get("ENG-123", ScopeLocal)
	if got == nil || got.BranchName != "feat/eng-123-auth" {
		t.Errorf("after reload Get = %+v, want persisted association", got)
	}
}

func TestScopeIsolation_AcrossWorkspaces(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv(storage.EnvDataDir, dataDir)

	// Associate while workspace A is open
	a, _, err := Open("/workspaces/repo-a")
	if err != nil {
		t.Fatalf("Open A failed: %v", err)
	}
	a.Put(testAssociation("ENG-123", "feat/eng-123-auth", "r_repo_a_001"))
	if err := a.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Workspace B does not see it locally, but it stays discoverable globally
	b, _, err := Open("/workspaces/repo-b")
	if err != nil {
		t.Fatalf("Open B failed: %v", err)
	}
	if got := b.Get("ENG-123", ScopeLocal); got != nil {
		t.Errorf("workspace B local scope leaked association: %+v", got)
	}
	if got := b.Get("ENG-123", ScopeGlobal); got == nil {
		t.Error("global scope lost association across workspaces")
	}
	if got := b.GetAllForRepository("r_repo_a_001"); len(got) != 1 {
		t.Errorf("GetAllForRepository = %d records, want 1", len(got))
	}
}

func TestOpen_CorruptFileRecovers(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv(storage.EnvDataDir, dataDir)

	path := filepath.Join(dataDir, "associations.json")
	if err := os.WriteFile(path, []byte("{definitely not json"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	s, warnings, err := Open("/workspaces/backend")
	if err != nil {
		t.Fatalf("Open failed on corrupt store: %v", err)
	}
	if len(warnings) == 0 {
		t.Error("expected a warning about the corrupt store")
	}
	if n := len(s.GetAll()); n != 0 {
		t.Errorf("corrupt store loaded %d associations, want 0", n)
	}

	// The unreadable file was backed up, not discarded
	matches, err := filepath.Glob(path + ".corrupt-*")
	if err != nil || len(matches) == 0 {
		t.Errorf("no backup of the corrupt file found: %v", err)
	}
}

func TestOpen_MigratesLegacyMap(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv(storage.EnvDataDir, dataDir)

	legacy := `{"ENG-1": "feat/eng-1", "ENG-2": "fix/eng-2-crash"}`
	if err := os.WriteFile(filepath.Join(dataDir, "associations.json"), []byte(legacy), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	s, warnings, err := Open("/workspaces/backend")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	found := false
	for _, w := range warnings {
		if strings.Contains(w, "migrated") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected migration warning, got %v", warnings)
	}

	got := s.Get("ENG-2", ScopeGlobal)
	if got == nil || got.BranchName != "fix/eng-2-crash" {
		t.Errorf("migrated association = %+v, want fix/eng-2-crash", got)
	}

	// Migrated records carry no repository id but must still be
	// removable from whichever repository asks.
	if !s.Remove("ENG-2", "r_ab12cd3344") {
		t.Error("Remove = false, want true for migrated record")
	}
	if got := s.Get("ENG-2", ScopeGlobal); got != nil {
		t.Errorf("migrated association survived removal: %+v", got)
	}
}

func TestOpen_RepairsDuplicates(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv(storage.EnvDataDir, dataDir)

	older := testAssociation("ENG-123", "old", "r_ab12cd3344")
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := testAssociation("ENG-123", "new", "r_ab12cd3344")

	doc := document{SchemaVersion: schemaVersion, Associations: []Association{older, newer}}
	if err := storage.SaveJSON(filepath.Join(dataDir, "associations.json"), doc); err != nil {
		t.Fatalf("SaveJSON failed: %v", err)
	}

	s, warnings, err := Open("/workspaces/backend")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if len(warnings) == 0 {
		t.Error("expected a warning about the duplicate records")
	}

	all := s.GetAll()
	if len(all) != 1 {
		t.Fatalf("expected duplicates collapsed to 1 record, got %d", len(all))
	}
	if all[0].BranchName != "new" {
		t.Errorf("kept %q, want the newest record", all[0].BranchName)
	}
}

func TestMarkVerified(t *testing.T) {
	s := openTestStore(t)

	s.Put(testAssociation("ENG-123", "feat/eng-123-auth", "r_ab12cd3344"))

	s.MarkVerified("ENG-123", "r_ab12cd3344", false)
	got := s.GetByRepository("ENG-123", "r_ab12cd3344")
	if got == nil || !got.Stale {
		t.Errorf("after failed verification Stale = %+v, want true", got)
	}
	if got.LastVerifiedAt.IsZero() {
		t.Error("LastVerifiedAt was not updated")
	}

	s.MarkVerified("ENG-123", "r_ab12cd3344", true)
	got = s.GetByRepository("ENG-123", "r_ab12cd3344")
	if got == nil || got.Stale {
		t.Error("successful verification did not clear Stale")
	}
}
