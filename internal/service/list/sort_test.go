package list

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docwatch/docwatch-backend/internal/domain"
)

func docNames(docs []*domain.Document) []string {
	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Name
	}
	return names
}

func TestSortDocuments_ByNameDefault(t *testing.T) {
	t.Parallel()

	svc := newTestService(testDeps{})
	docs := []*domain.Document{
		{ID: uuid.New(), Name: "draft-ietf-tls-esni"},
		{ID: uuid.New(), Name: "draft-ietf-mars-test"},
		{ID: uuid.New(), Name: "draft-ietf-avtcore-rtp"},
	}

	require.NoError(t, svc.sortDocuments(context.Background(), "", docs))
	assert.Equal(t, []string{
		"draft-ietf-avtcore-rtp",
		"draft-ietf-mars-test",
		"draft-ietf-tls-esni",
	}, docNames(docs))
}

func TestSortDocuments_ByTitleWithNameTieBreaker(t *testing.T) {
	t.Parallel()

	svc := newTestService(testDeps{})
	docs := []*domain.Document{
		{ID: uuid.New(), Name: "draft-b", Title: "Same Title"},
		{ID: uuid.New(), Name: "draft-a", Title: "Same Title"},
		{ID: uuid.New(), Name: "draft-c", Title: "Another Title"},
	}

	require.NoError(t, svc.sortDocuments(context.Background(), domain.SortByTitle, docs))
	assert.Equal(t, []string{"draft-c", "draft-a", "draft-b"}, docNames(docs))
}

func TestSortDocuments_ByGroupAcronym(t *testing.T) {
	t.Parallel()

	tlsGroup := uuid.New()
	marsGroup := uuid.New()

	docs := &mockDocumentRepo{
		GroupsByIDsFunc: func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Group, error) {
			return map[uuid.UUID]*domain.Group{
				tlsGroup:  {ID: tlsGroup, Acronym: "tls"},
				marsGroup: {ID: marsGroup, Acronym: "mars"},
			}, nil
		},
	}
	svc := newTestService(testDeps{docs: docs})

	list := []*domain.Document{
		{ID: uuid.New(), Name: "draft-ietf-tls-esni", GroupID: &tlsGroup},
		{ID: uuid.New(), Name: "draft-ietf-mars-test", GroupID: &marsGroup},
		{ID: uuid.New(), Name: "draft-individual"},
	}

	require.NoError(t, svc.sortDocuments(context.Background(), domain.SortByGroup, list))
	// Ungrouped documents have an empty acronym and sort first.
	assert.Equal(t, []string{
		"draft-individual",
		"draft-ietf-mars-test",
		"draft-ietf-tls-esni",
	}, docNames(list))
}

func TestSortDocuments_ByRevDateNewestFirst(t *testing.T) {
	t.Parallel()

	svc := newTestService(testDeps{})
	now := time.Now()
	docs := []*domain.Document{
		{ID: uuid.New(), Name: "draft-old", RevTime: now.Add(-48 * time.Hour)},
		{ID: uuid.New(), Name: "draft-new", RevTime: now},
		{ID: uuid.New(), Name: "draft-mid", RevTime: now.Add(-24 * time.Hour)},
	}

	require.NoError(t, svc.sortDocuments(context.Background(), domain.SortByRevDate, docs))
	assert.Equal(t, []string{"draft-new", "draft-mid", "draft-old"}, docNames(docs))
}

func TestSortDocuments_ByChangedMostRecentFirst(t *testing.T) {
	t.Parallel()

	recent := uuid.New()
	stale := uuid.New()
	never := uuid.New()
	now := time.Now()

	changes := &mockChangeRecordRepo{
		GetByDocIDsFunc: func(ctx context.Context, docIDs []uuid.UUID) (map[uuid.UUID]*domain.ChangeRecord, error) {
			return map[uuid.UUID]*domain.ChangeRecord{
				recent: {DocumentID: recent, LastChangedAt: now},
				stale:  {DocumentID: stale, LastChangedAt: now.Add(-72 * time.Hour)},
			}, nil
		},
	}
	svc := newTestService(testDeps{changes: changes})

	docs := []*domain.Document{
		{ID: never, Name: "draft-a-never-changed"},
		{ID: recent, Name: "draft-b-recent"},
		{ID: stale, Name: "draft-c-stale"},
	}

	require.NoError(t, svc.sortDocuments(context.Background(), domain.SortByChanged, docs))
	assert.Equal(t, []string{
		"draft-b-recent",
		"draft-c-stale",
		"draft-a-never-changed",
	}, docNames(docs), "documents without a change record sort last")
}

func TestSortDocuments_BySignificantIgnoresOrdinaryChanges(t *testing.T) {
	t.Parallel()

	approved := uuid.New()
	edited := uuid.New()
	now := time.Now()

	changes := &mockChangeRecordRepo{
		GetByDocIDsFunc: func(ctx context.Context, docIDs []uuid.UUID) (map[uuid.UUID]*domain.ChangeRecord, error) {
			sig := now.Add(-time.Hour)
			return map[uuid.UUID]*domain.ChangeRecord{
				// Changed most recently, but never significantly.
				edited: {DocumentID: edited, LastChangedAt: now},
				approved: {
					DocumentID:        approved,
					LastChangedAt:     now.Add(-2 * time.Hour),
					LastSignificantAt: &sig,
				},
			}, nil
		},
	}
	svc := newTestService(testDeps{changes: changes})

	docs := []*domain.Document{
		{ID: edited, Name: "draft-a-edited"},
		{ID: approved, Name: "draft-b-approved"},
	}

	require.NoError(t, svc.sortDocuments(context.Background(), domain.SortBySignificant, docs))
	assert.Equal(t, []string{"draft-b-approved", "draft-a-edited"}, docNames(docs))
}

func TestSortDocuments_UnknownMethodRejected(t *testing.T) {
	t.Parallel()

	svc := newTestService(testDeps{})
	err := svc.sortDocuments(context.Background(), domain.SortMethod("random"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
