package list_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docwatch/docwatch-backend/internal/adapter/postgres/list"
	"github.com/docwatch/docwatch-backend/internal/adapter/postgres/testhelper"
	"github.com/docwatch/docwatch-backend/internal/domain"
)

// newRepo sets up a test DB and returns a ready Repo + pool.
func newRepo(t *testing.T) (*list.Repo, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	return list.New(pool), pool
}

func buildPersonList(personID uuid.UUID) *domain.CommunityList {
	return &domain.CommunityList{
		ID:       uuid.New(),
		PersonID: &personID,
	}
}

func assertIsDomainError(t *testing.T, err error, target error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error wrapping %v, got nil", target)
	}
	if !errors.Is(err, target) {
		t.Fatalf("expected error wrapping %v, got: %v", target, err)
	}
}

// ---------------------------------------------------------------------------
// Create / lookups
// ---------------------------------------------------------------------------

func TestRepo_Create_AppliesDefaults(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	personID := testhelper.SeedPerson(t, pool, "List Owner", "")

	got, err := repo.Create(ctx, buildPersonList(personID))
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	if got.PersonID == nil || *got.PersonID != personID {
		t.Errorf("PersonID mismatch: got %v, want %s", got.PersonID, personID)
	}
	if got.GroupID != nil {
		t.Errorf("expected GroupID to be nil, got %v", got.GroupID)
	}
	if got.SortMethod != domain.SortByName {
		t.Errorf("SortMethod default mismatch: got %s, want name", got.SortMethod)
	}
	wantFields := []domain.DisplayField{domain.DisplayFieldName, domain.DisplayFieldTitle, domain.DisplayFieldState}
	if len(got.DisplayFields) != len(wantFields) {
		t.Fatalf("DisplayFields default mismatch: got %v", got.DisplayFields)
	}
	for i, f := range wantFields {
		if got.DisplayFields[i] != f {
			t.Errorf("DisplayFields[%d] = %s, want %s", i, got.DisplayFields[i], f)
		}
	}
	if !got.Dirty {
		t.Error("expected freshly created list to be dirty")
	}
}

func TestRepo_Create_SecondListForSameOwnerConflicts(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	personID := testhelper.SeedPerson(t, pool, "Single Owner", "")
	if _, err := repo.Create(ctx, buildPersonList(personID)); err != nil {
		t.Fatalf("Create first: %v", err)
	}

	_, err := repo.Create(ctx, buildPersonList(personID))
	assertIsDomainError(t, err, domain.ErrAlreadyExists)
}

func TestRepo_Create_GroupOwnedList(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	groupID := testhelper.SeedGroup(t, pool, "wg-"+uuid.New().String()[:8], "Some WG", uuid.Nil)
	l := &domain.CommunityList{ID: uuid.New(), GroupID: &groupID}

	created, err := repo.Create(ctx, l)
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	got, err := repo.GetByGroup(ctx, groupID)
	if err != nil {
		t.Fatalf("GetByGroup: unexpected error: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("ID mismatch: got %s, want %s", got.ID, created.ID)
	}
}

func TestRepo_GetByPerson_HappyPath(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	personID := testhelper.SeedPerson(t, pool, "Lookup Owner", "")
	created, err := repo.Create(ctx, buildPersonList(personID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByPerson(ctx, personID)
	if err != nil {
		t.Fatalf("GetByPerson: unexpected error: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("ID mismatch: got %s, want %s", got.ID, created.ID)
	}
}

func TestRepo_GetByPerson_NotFound(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)

	_, err := repo.GetByPerson(context.Background(), uuid.New())
	assertIsDomainError(t, err, domain.ErrNotFound)
}

func TestRepo_GetByID_NotFound(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)

	_, err := repo.GetByID(context.Background(), uuid.New())
	assertIsDomainError(t, err, domain.ErrNotFound)
}

// ---------------------------------------------------------------------------
// UpdateConfig
// ---------------------------------------------------------------------------

func TestRepo_UpdateConfig_PartialUpdate(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	personID := testhelper.SeedPerson(t, pool, "Config Owner", "")
	created, err := repo.Create(ctx, buildPersonList(personID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	sortMethod := domain.SortByRevDate
	updated, err := repo.UpdateConfig(ctx, created.ID, domain.ListUpdateParams{SortMethod: &sortMethod})
	if err != nil {
		t.Fatalf("UpdateConfig: unexpected error: %v", err)
	}

	if updated.SortMethod != domain.SortByRevDate {
		t.Errorf("SortMethod mismatch: got %s, want rev_date", updated.SortMethod)
	}
	// nil DisplayFields means "leave unchanged".
	if len(updated.DisplayFields) != 3 {
		t.Errorf("expected default display fields to survive, got %v", updated.DisplayFields)
	}
}

func TestRepo_UpdateConfig_DisplayFieldsRoundTrip(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	personID := testhelper.SeedPerson(t, pool, "Fields Owner", "")
	created, err := repo.Create(ctx, buildPersonList(personID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	fields := []domain.DisplayField{
		domain.DisplayFieldName, domain.DisplayFieldGroup,
		domain.DisplayFieldAuthors, domain.DisplayFieldShepherd,
	}
	updated, err := repo.UpdateConfig(ctx, created.ID, domain.ListUpdateParams{DisplayFields: fields})
	if err != nil {
		t.Fatalf("UpdateConfig: unexpected error: %v", err)
	}

	if len(updated.DisplayFields) != len(fields) {
		t.Fatalf("DisplayFields length mismatch: got %v", updated.DisplayFields)
	}
	for i, f := range fields {
		if updated.DisplayFields[i] != f {
			t.Errorf("DisplayFields[%d] = %s, want %s", i, updated.DisplayFields[i], f)
		}
	}
}

func TestRepo_UpdateConfig_NotFound(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)

	sortMethod := domain.SortByTitle
	_, err := repo.UpdateConfig(context.Background(), uuid.New(), domain.ListUpdateParams{SortMethod: &sortMethod})
	assertIsDomainError(t, err, domain.ErrNotFound)
}

// ---------------------------------------------------------------------------
// Dirty flag
// ---------------------------------------------------------------------------

func TestRepo_SetCleanAndMarkDirty_RoundTrip(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	personID := testhelper.SeedPerson(t, pool, "Dirty Owner", "")
	created, err := repo.Create(ctx, buildPersonList(personID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.SetClean(ctx, created.ID); err != nil {
		t.Fatalf("SetClean: %v", err)
	}
	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Dirty {
		t.Error("expected list to be clean after SetClean")
	}

	if err := repo.MarkDirty(ctx, created.ID); err != nil {
		t.Fatalf("MarkDirty: %v", err)
	}
	got, err = repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.Dirty {
		t.Error("expected list to be dirty after MarkDirty")
	}
}

// ---------------------------------------------------------------------------
// Pins
// ---------------------------------------------------------------------------

func TestRepo_AddPin_Idempotent(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	personID := testhelper.SeedPerson(t, pool, "Pin Owner", "")
	created, err := repo.Create(ctx, buildPersonList(personID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	docID := testhelper.SeedDocument(t, pool, "draft-pin-"+uuid.New().String()[:8], testhelper.SeedDocumentParams{})

	if err := repo.AddPin(ctx, created.ID, docID); err != nil {
		t.Fatalf("AddPin first: %v", err)
	}
	if err := repo.AddPin(ctx, created.ID, docID); err != nil {
		t.Fatalf("AddPin second: %v", err)
	}

	pins, err := repo.PinnedDocs(ctx, created.ID)
	if err != nil {
		t.Fatalf("PinnedDocs: %v", err)
	}
	if len(pins) != 1 || pins[0] != docID {
		t.Errorf("expected exactly one pin %s, got %v", docID, pins)
	}
}

func TestRepo_RemovePin_MissingPinIsNoError(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	personID := testhelper.SeedPerson(t, pool, "Unpin Owner", "")
	created, err := repo.Create(ctx, buildPersonList(personID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	docID := testhelper.SeedDocument(t, pool, "draft-unpin-"+uuid.New().String()[:8], testhelper.SeedDocumentParams{})

	if err := repo.AddPin(ctx, created.ID, docID); err != nil {
		t.Fatalf("AddPin: %v", err)
	}
	if err := repo.RemovePin(ctx, created.ID, docID); err != nil {
		t.Fatalf("RemovePin: %v", err)
	}
	if err := repo.RemovePin(ctx, created.ID, docID); err != nil {
		t.Fatalf("RemovePin again: unexpected error: %v", err)
	}

	pins, err := repo.PinnedDocs(ctx, created.ID)
	if err != nil {
		t.Fatalf("PinnedDocs: %v", err)
	}
	if len(pins) != 0 {
		t.Errorf("expected no pins, got %v", pins)
	}
}

// ---------------------------------------------------------------------------
// Materialized aggregate
// ---------------------------------------------------------------------------

func TestRepo_ReplaceCache_ReplacesWholesale(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	personID := testhelper.SeedPerson(t, pool, "Cache Owner", "")
	created, err := repo.Create(ctx, buildPersonList(personID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	docA := testhelper.SeedDocument(t, pool, "draft-ca-"+uuid.New().String()[:8], testhelper.SeedDocumentParams{})
	docB := testhelper.SeedDocument(t, pool, "draft-cb-"+uuid.New().String()[:8], testhelper.SeedDocumentParams{})

	if err := repo.ReplaceCache(ctx, created.ID, []uuid.UUID{docA, docB}); err != nil {
		t.Fatalf("ReplaceCache first: %v", err)
	}
	if err := repo.ReplaceCache(ctx, created.ID, []uuid.UUID{docA}); err != nil {
		t.Fatalf("ReplaceCache second: %v", err)
	}

	got, err := repo.CachedDocs(ctx, created.ID)
	if err != nil {
		t.Fatalf("CachedDocs: %v", err)
	}
	if len(got) != 1 || got[0] != docA {
		t.Errorf("expected cache to hold only %s, got %v", docA, got)
	}
}

func TestRepo_TrackingDocument_UnionsPinsAndCache(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	docID := testhelper.SeedDocument(t, pool, "draft-track-"+uuid.New().String()[:8], testhelper.SeedDocumentParams{})

	pinningOwner := testhelper.SeedPerson(t, pool, "Pinning Owner", "")
	pinningList, err := repo.Create(ctx, buildPersonList(pinningOwner))
	if err != nil {
		t.Fatalf("Create pinning list: %v", err)
	}
	if err := repo.AddPin(ctx, pinningList.ID, docID); err != nil {
		t.Fatalf("AddPin: %v", err)
	}

	cachingOwner := testhelper.SeedPerson(t, pool, "Caching Owner", "")
	cachingList, err := repo.Create(ctx, buildPersonList(cachingOwner))
	if err != nil {
		t.Fatalf("Create caching list: %v", err)
	}
	if err := repo.ReplaceCache(ctx, cachingList.ID, []uuid.UUID{docID}); err != nil {
		t.Fatalf("ReplaceCache: %v", err)
	}

	// A list both pinning and caching the doc must show up once.
	bothOwner := testhelper.SeedPerson(t, pool, "Both Owner", "")
	bothList, err := repo.Create(ctx, buildPersonList(bothOwner))
	if err != nil {
		t.Fatalf("Create both list: %v", err)
	}
	if err := repo.AddPin(ctx, bothList.ID, docID); err != nil {
		t.Fatalf("AddPin both: %v", err)
	}
	if err := repo.ReplaceCache(ctx, bothList.ID, []uuid.UUID{docID}); err != nil {
		t.Fatalf("ReplaceCache both: %v", err)
	}

	got, err := repo.TrackingDocument(ctx, docID)
	if err != nil {
		t.Fatalf("TrackingDocument: unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 tracking lists, got %d: %v", len(got), got)
	}
	seen := map[uuid.UUID]bool{}
	for _, id := range got {
		seen[id] = true
	}
	for _, want := range []uuid.UUID{pinningList.ID, cachingList.ID, bothList.ID} {
		if !seen[want] {
			t.Errorf("missing tracking list %s", want)
		}
	}
}

func TestRepo_TrackingDocument_UntrackedIsEmpty(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)

	docID := testhelper.SeedDocument(t, pool, "draft-lone-"+uuid.New().String()[:8], testhelper.SeedDocumentParams{})

	got, err := repo.TrackingDocument(context.Background(), docID)
	if err != nil {
		t.Fatalf("TrackingDocument: %v", err)
	}
	if got == nil {
		t.Fatal("expected non-nil empty slice")
	}
	if len(got) != 0 {
		t.Errorf("expected no tracking lists, got %v", got)
	}
}
