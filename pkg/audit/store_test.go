package audit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestStore creates a Store backed by an in-memory SQLite DB.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	store := NewStore(db, nil)
	require.NoError(t, store.AutoMigrate())
	return store
}

func TestStore_AppendAndList(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Append(&EventRecord{
		Action:          ActionUpload,
		Actor:           "u1",
		ActorRole:       "investigator",
		EvidenceID:      "ev-1",
		InvestigationID: "inv-1",
		Chain:           "hot",
		Outcome:         OutcomeSuccess,
		TxID:            "tx-1",
	}))

	records, nextToken, total, err := store.List(ListFilter{}, 20, "")
	require.NoError(t, err)
	assert.Empty(t, nextToken)
	assert.Equal(t, 1, total)
	require.Len(t, records, 1)
	assert.Equal(t, ActionUpload, records[0].Action)
	assert.Equal(t, "u1", records[0].Actor)
	assert.Equal(t, "tx-1", records[0].TxID)
	assert.NotEmpty(t, records[0].ID)
	assert.False(t, records[0].CreatedAt.IsZero())
}

func TestStore_Record(t *testing.T) {
	store := newTestStore(t)

	store.Record(context.Background(), Event{
		Action:     ActionRetrieveFile,
		Actor:      "u2",
		EvidenceID: "ev-2",
		Chain:      "cold",
		Outcome:    OutcomeFailure,
		Reason:     "integrity mismatch",
	})

	records, _, _, err := store.List(ListFilter{Outcome: OutcomeFailure}, 20, "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "integrity mismatch", records[0].Reason)
}

func TestStore_ListFilters(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Append(&EventRecord{
			Action:     ActionUpload,
			Actor:      fmt.Sprintf("u%d", i),
			EvidenceID: fmt.Sprintf("ev-%d", i),
			Chain:      "hot",
			Outcome:    OutcomeSuccess,
		}))
	}
	require.NoError(t, store.Append(&EventRecord{
		Action:     ActionRetrieve,
		Actor:      "u0",
		EvidenceID: "ev-0",
		Chain:      "cold",
		Outcome:    OutcomeSuccess,
	}))

	records, _, total, err := store.List(ListFilter{Actor: "u0"}, 20, "")
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, records, 2)

	records, _, total, err = store.List(ListFilter{Action: ActionRetrieve, Chain: "cold"}, 20, "")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, records, 1)
	assert.Equal(t, "ev-0", records[0].EvidenceID)
}

func TestStore_ListPagination(t *testing.T) {
	store := newTestStore(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(&EventRecord{
			Action:     ActionUpload,
			EvidenceID: fmt.Sprintf("ev-%d", i),
			Outcome:    OutcomeSuccess,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}

	page1, token, total, err := store.List(ListFilter{}, 3, "")
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page1, 3)
	require.NotEmpty(t, token)
	// Newest first.
	assert.Equal(t, "ev-4", page1[0].EvidenceID)

	page2, token2, _, err := store.List(ListFilter{}, 3, token)
	require.NoError(t, err)
	assert.Empty(t, token2)
	require.Len(t, page2, 2)
	assert.Equal(t, "ev-1", page2[0].EvidenceID)
	assert.Equal(t, "ev-0", page2[1].EvidenceID)
}

func TestStore_ListPaginationSharedTimestamp(t *testing.T) {
	store := newTestStore(t)

	// Bulk writers can land several events in the same created_at tick. The
	// cursor must not skip or repeat any of them across page boundaries.
	stamp := time.Now().Add(-time.Hour).Truncate(time.Second)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(&EventRecord{
			ID:         fmt.Sprintf("id-%d", i),
			Action:     ActionUpload,
			EvidenceID: fmt.Sprintf("ev-%d", i),
			Outcome:    OutcomeSuccess,
			CreatedAt:  stamp,
		}))
	}

	seen := map[string]bool{}
	token := ""
	for pages := 0; ; pages++ {
		require.Less(t, pages, 5, "pagination did not terminate")
		records, next, total, err := store.List(ListFilter{}, 2, token)
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		for _, r := range records {
			assert.False(t, seen[r.EvidenceID], "event %s returned twice", r.EvidenceID)
			seen[r.EvidenceID] = true
		}
		if next == "" {
			break
		}
		token = next
	}
	assert.Len(t, seen, 5)
}

func TestStore_ListInvalidPageToken(t *testing.T) {
	store := newTestStore(t)

	_, _, _, err := store.List(ListFilter{}, 20, "not-a-token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid page token")
}

func TestStore_DeleteOlderThan(t *testing.T) {
	store := newTestStore(t)

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, store.Append(&EventRecord{Action: ActionUpload, Outcome: OutcomeSuccess, CreatedAt: old}))
	require.NoError(t, store.Append(&EventRecord{Action: ActionUpload, Outcome: OutcomeSuccess}))

	deleted, err := store.DeleteOlderThan(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, _, total, err := store.List(ListFilter{}, 20, "")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}
