package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/lfrick/tix/internal/assoc"
	"github.com/lfrick/tix/internal/git"
	"github.com/lfrick/tix/internal/registry"
	"github.com/lfrick/tix/internal/storage"
	"github.com/lfrick/tix/internal/suggest"
)

// newTestEngine builds an Orchestrator over a fake git client with two
// repositories: a backend repo (the current workspace) and a frontend repo
// that is known but not open.
func newTestEngine(t *testing.T, fake *git.Fake, workspace string) *Orchestrator {
	t.Helper()
	t.Setenv(storage.EnvDataDir, t.TempDir())

	store, warnings, err := assoc.Open(workspace)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	eng, err := suggest.New("", "")
	if err != nil {
		t.Fatalf("suggest engine: %v", err)
	}

	reg := registry.New(fake)
	r := New(context.Background(), store, reg, fake, eng, workspace)
	return NewOrchestrator(r)
}

func twoRepoFake() *git.Fake {
	fake := git.NewFake()
	fake.AddRepo("/repos/backend", &git.FakeRepo{
		Branches: []string{"main", "feat/eng-123-auth"},
		Current:  "main",
		Origin:   "git@github.com:acme/backend.git",
	})
	fake.AddRepo("/repos/frontend", &git.FakeRepo{
		Branches: []string{"main", "feat/eng-123-ui"},
		Current:  "main",
		Origin:   "git@github.com:acme/frontend.git",
	})
	return fake
}

func TestAssociate_RoundTrip(t *testing.T) {
	ctx := context.Background()
	o := newTestEngine(t, twoRepoFake(), "/repos/backend")

	if err := o.Associate(ctx, "ENG-123", "feat/eng-123-auth", assoc.SourceManual); err != nil {
		t.Fatalf("Associate failed: %v", err)
	}

	if got := o.BranchForTicket("ENG-123"); got != "feat/eng-123-auth" {
		t.Errorf("BranchForTicket = %q, want %q", got, "feat/eng-123-auth")
	}
	if !o.IsTicketInCurrentRepo("ENG-123") {
		t.Error("IsTicketInCurrentRepo = false, want true")
	}

	removed, err := o.Remove(ctx, "ENG-123")
	if err != nil || !removed {
		t.Fatalf("Remove = (%v, %v), want (true, nil)", removed, err)
	}
	if got := o.BranchForTicket("ENG-123"); got != "" {
		t.Errorf("BranchForTicket after remove = %q, want empty", got)
	}
}

func TestAssociate_RejectsMissingBranch(t *testing.T) {
	ctx := context.Background()
	o := newTestEngine(t, twoRepoFake(), "/repos/backend")

	err := o.Associate(ctx, "ENG-123", "no-such-branch", assoc.SourceManual)
	if !errors.Is(err, git.ErrBranchNotFound) {
		t.Errorf("Associate = %v, want ErrBranchNotFound", err)
	}
}

func TestAssociate_Idempotent(t *testing.T) {
	ctx := context.Background()
	o := newTestEngine(t, twoRepoFake(), "/repos/backend")

	for range 2 {
		if err := o.Associate(ctx, "ENG-123", "feat/eng-123-auth", assoc.SourceManual); err != nil {
			t.Fatalf("Associate failed: %v", err)
		}
	}

	if n := len(o.AllAssociations()); n != 1 {
		t.Errorf("two identical Associates produced %d records, want 1", n)
	}
}

func TestAssociate_OutsideRepository(t *testing.T) {
	ctx := context.Background()
	o := newTestEngine(t, twoRepoFake(), "/not/a/repo")

	err := o.Associate(ctx, "ENG-123", "main", assoc.SourceManual)
	if !errors.Is(err, ErrNoCurrentRepo) {
		t.Errorf("Associate outside repo = %v, want ErrNoCurrentRepo", err)
	}
}

func TestCheckout_WrongRepository(t *testing.T) {
	ctx := context.Background()
	fake := twoRepoFake()

	// Associate in backend, then resolve from frontend
	backend := newTestEngine(t, fake, "/repos/backend")
	if err := backend.Associate(ctx, "ENG-123", "feat/eng-123-auth", assoc.SourceManual); err != nil {
		t.Fatalf("Associate failed: %v", err)
	}

	frontend := NewOrchestrator(New(ctx, backend.store, backend.registry, fake, backend.suggest, "/repos/frontend"))

	if frontend.IsTicketInCurrentRepo("ENG-123") {
		t.Error("IsTicketInCurrentRepo in other repo = true, want false")
	}
	// Discoverable globally even though it belongs to another repo
	if got := frontend.BranchForTicket("ENG-123"); got != "feat/eng-123-auth" {
		t.Errorf("BranchForTicket = %q, want cross-repo discovery", got)
	}

	err := frontend.Checkout(ctx, "ENG-123", "")
	if !errors.Is(err, ErrWrongRepository) {
		t.Errorf("Checkout in wrong repo = %v, want ErrWrongRepository", err)
	}
	if got := fake.Repos["/repos/frontend"].Current; got != "main" {
		t.Errorf("wrong-repo checkout moved HEAD to %q", got)
	}
}

func TestCheckout_CurrentRepository(t *testing.T) {
	ctx := context.Background()
	fake := twoRepoFake()
	o := newTestEngine(t, fake, "/repos/backend")

	if err := o.Associate(ctx, "ENG-123", "feat/eng-123-auth", assoc.SourceManual); err != nil {
		t.Fatalf("Associate failed: %v", err)
	}
	if err := o.Checkout(ctx, "ENG-123", ""); err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}
	if got := fake.Repos["/repos/backend"].Current; got != "feat/eng-123-auth" {
		t.Errorf("current branch = %q, want feat/eng-123-auth", got)
	}
}

func TestCheckout_NoAssociation(t *testing.T) {
	ctx := context.Background()
	o := newTestEngine(t, twoRepoFake(), "/repos/backend")

	err := o.Checkout(ctx, "ENG-999", "")
	if !errors.Is(err, ErrNoAssociation) {
		t.Errorf("Checkout = %v, want ErrNoAssociation", err)
	}
}

func TestCheckout_DirtyTree(t *testing.T) {
	ctx := context.Background()
	fake := twoRepoFake()
	o := newTestEngine(t, fake, "/repos/backend")

	if err := o.Associate(ctx, "ENG-123", "feat/eng-123-auth", assoc.SourceManual); err != nil {
		t.Fatalf("Associate failed: %v", err)
	}

	fake.Repos["/repos/backend"].Dirty = true
	err := o.Checkout(ctx, "ENG-123", "")
	if !errors.Is(err, git.ErrDirtyWorkingTree) {
		t.Errorf("Checkout on dirty tree = %v, want ErrDirtyWorkingTree", err)
	}
}

func TestVerifyBranchExists_Asymmetry(t *testing.T) {
	ctx := context.Background()
	fake := twoRepoFake()
	o := newTestEngine(t, fake, "/repos/backend")

	if err := o.Associate(ctx, "ENG-123", "feat/eng-123-auth", assoc.SourceManual); err != nil {
		t.Fatalf("Associate failed: %v", err)
	}

	// Current repo, branch present: verified true
	if !o.VerifyBranchExists(ctx, "ENG-123") {
		t.Error("VerifyBranchExists = false, want true for existing branch")
	}

	// Branch deleted out from under us via git directly: verified false
	fake.Repos["/repos/backend"].Branches = []string{"main"}
	if o.VerifyBranchExists(ctx, "ENG-123") {
		t.Error("VerifyBranchExists = true, want false after branch deletion")
	}
	if a := o.Association("ENG-123"); a == nil || !a.Stale {
		t.Errorf("association not marked stale: %+v", a)
	}

	// Same ticket seen from the frontend workspace: the association lives
	// in an unopened repo, so verification is optimistic regardless of
	// actual state.
	frontend := New(ctx, o.store, o.registry, fake, o.suggest, "/repos/frontend")
	if !frontend.VerifyBranchExists(ctx, "ENG-123") {
		t.Error("VerifyBranchExists for other repo = false, want optimistic true")
	}
}

func TestVerifyBranchExists_NoAssociation(t *testing.T) {
	ctx := context.Background()
	o := newTestEngine(t, twoRepoFake(), "/repos/backend")

	if o.VerifyBranchExists(ctx, "ENG-999") {
		t.Error("VerifyBranchExists for unknown ticket = true, want false")
	}
}

func TestSuggestAssociations(t *testing.T) {
	ctx := context.Background()
	fake := git.NewFake()
	fake.AddRepo("/repos/backend", &git.FakeRepo{
		Branches: []string{"main", "feat/eng-123-auth", "feat/eng-10-cache", "ENG-123-hotfix"},
		Current:  "main",
		Origin:   "git@github.com:acme/backend.git",
	})
	o := newTestEngine(t, fake, "/repos/backend")

	got, err := o.SuggestAssociations(ctx, "ENG-123")
	if err != nil {
		t.Fatalf("SuggestAssociations failed: %v", err)
	}
	want := []string{"ENG-123-hotfix", "feat/eng-123-auth"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("SuggestAssociations = %v, want %v", got, want)
	}

	// Once associated, the branch stops being suggested
	if err := o.Associate(ctx, "ENG-123", "feat/eng-123-auth", assoc.SourceManual); err != nil {
		t.Fatalf("Associate failed: %v", err)
	}
	got, err = o.SuggestAssociations(ctx, "ENG-123")
	if err != nil {
		t.Fatalf("SuggestAssociations failed: %v", err)
	}
	for _, b := range got {
		if b == "feat/eng-123-auth" {
			t.Error("associated branch still suggested")
		}
	}
}

func TestSuggestAssociations_TokenBoundary(t *testing.T) {
	ctx := context.Background()
	fake := git.NewFake()
	fake.AddRepo("/repos/backend", &git.FakeRepo{
		Branches: []string{"main", "feat/eng-10-cache"},
		Current:  "main",
	})
	o := newTestEngine(t, fake, "/repos/backend")

	got, err := o.SuggestAssociations(ctx, "ENG-1")
	if err != nil {
		t.Fatalf("SuggestAssociations failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("SuggestAssociations(ENG-1) = %v, want none (ENG-10 is a different ticket)", got)
	}
}

func TestScan_AutoDetect(t *testing.T) {
	ctx := context.Background()
	fake := git.NewFake()
	fake.AddRepo("/repos/backend", &git.FakeRepo{
		Branches: []string{"main", "feat/eng-123-auth", "fix/abc-7-crash"},
		Current:  "main",
		Origin:   "git@github.com:acme/backend.git",
	})
	o := newTestEngine(t, fake, "/repos/backend")

	results, err := o.Scan(ctx, false)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Scan = %v, want 2 detections", results)
	}

	a := o.Association("ENG-123")
	if a == nil || a.Source != assoc.SourceAutoDetected {
		t.Errorf("scanned association = %+v, want source auto_detected", a)
	}

	// Scan never overwrites an existing association
	results, err = o.Scan(ctx, false)
	if err != nil {
		t.Fatalf("rescan failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("rescan = %v, want nothing new", results)
	}
}

func TestScan_DryRun(t *testing.T) {
	ctx := context.Background()
	fake := git.NewFake()
	fake.AddRepo("/repos/backend", &git.FakeRepo{
		Branches: []string{"main", "feat/eng-123-auth"},
		Current:  "main",
	})
	o := newTestEngine(t, fake, "/repos/backend")

	results, err := o.Scan(ctx, true)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Scan dry-run = %v, want 1 detection", results)
	}
	if a := o.Association("ENG-123"); a != nil {
		t.Errorf("dry-run persisted an association: %+v", a)
	}
}

func TestAssociationsForRepository(t *testing.T) {
	ctx := context.Background()
	fake := twoRepoFake()
	o := newTestEngine(t, fake, "/repos/backend")

	if err := o.Associate(ctx, "ENG-123", "feat/eng-123-auth", assoc.SourceManual); err != nil {
		t.Fatalf("Associate failed: %v", err)
	}

	got := o.AssociationsForRepository(ctx, "/repos/backend")
	if len(got) != 1 || got[0].TicketID != "ENG-123" {
		t.Errorf("AssociationsForRepository = %+v, want the backend association", got)
	}

	if got := o.AssociationsForRepository(ctx, "/repos/frontend"); len(got) != 0 {
		t.Errorf("frontend associations = %+v, want none", got)
	}
}

func TestCheckoutCreate_NewTicket(t *testing.T) {
	ctx := context.Background()
	fake := twoRepoFake()
	o := newTestEngine(t, fake, "/repos/backend")

	branch, err := o.CheckoutCreate(ctx, "ENG-999", "")
	if err != nil {
		t.Fatalf("CheckoutCreate failed: %v", err)
	}
	if branch != "eng-999" {
		t.Errorf("branch = %q, want %q", branch, "eng-999")
	}
	if got := fake.Repos["/repos/backend"].Current; got != "eng-999" {
		t.Errorf("HEAD = %q, want %q", got, "eng-999")
	}

	a := o.Association("ENG-999")
	if a == nil {
		t.Fatal("association should be recorded")
	}
	if a.Source != assoc.SourceManual {
		t.Errorf("Source = %q, want %q", a.Source, assoc.SourceManual)
	}
}

func TestCheckoutCreate_ExistingAssociation(t *testing.T) {
	ctx := context.Background()
	fake := twoRepoFake()
	o := newTestEngine(t, fake, "/repos/backend")

	if err := o.Associate(ctx, "ENG-123", "feat/eng-123-auth", assoc.SourceManual); err != nil {
		t.Fatalf("Associate failed: %v", err)
	}

	branch, err := o.CheckoutCreate(ctx, "ENG-123", "")
	if err != nil {
		t.Fatalf("CheckoutCreate failed: %v", err)
	}
	if branch != "feat/eng-123-auth" {
		t.Errorf("branch = %q, want the existing association's branch", branch)
	}
	if got := fake.Repos["/repos/backend"].Current; got != "feat/eng-123-auth" {
		t.Errorf("HEAD = %q, want %q", got, "feat/eng-123-auth")
	}
}

func TestVerify_MarksStaleInCurrentRepo(t *testing.T) {
	ctx := context.Background()
	fake := twoRepoFake()
	o := newTestEngine(t, fake, "/repos/backend")

	if err := o.Associate(ctx, "ENG-123", "feat/eng-123-auth", assoc.SourceManual); err != nil {
		t.Fatalf("Associate failed: %v", err)
	}

	fake.Repos["/repos/backend"].Branches = []string{"main"}

	results, err := o.Verify(ctx, "")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if !results[0].Checked || results[0].Exists {
		t.Errorf("result = %+v, want checked and missing", results[0])
	}

	a := o.Association("ENG-123")
	if a == nil {
		t.Fatal("association must survive failed verification")
	}
	if !a.Stale {
		t.Error("Stale = false, want true after failed verification")
	}
}

func TestVerify_UnknownTicket(t *testing.T) {
	ctx := context.Background()
	o := newTestEngine(t, twoRepoFake(), "/repos/backend")

	_, err := o.Verify(ctx, "ENG-404")
	if !errors.Is(err, ErrNoAssociation) {
		t.Errorf("err = %v, want ErrNoAssociation", err)
	}
}
