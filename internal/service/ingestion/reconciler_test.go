package ingestion

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nosql-catalog/internal/db"
	"nosql-catalog/internal/db/repository"
	"nosql-catalog/internal/domain"
	"nosql-catalog/internal/testutil"
)

var errTest = errors.New("test error")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

func row(ks, table, col, pos string) domain.ImportRow {
	return domain.ImportRow{
		Keyspace: ks, Table: table, Column: col,
		Kind: "regular", Position: pos, Type: "text",
	}
}

func record(ks, table, col string, pos int) domain.ColumnRecord {
	return domain.ColumnRecord{
		ColumnKey: domain.ColumnKey{Keyspace: ks, Table: table, Column: col},
		Kind:      "regular",
		Position:  pos,
		Type:      "text",
		Note:      domain.DefaultColumnNote,
		Tag:       domain.DefaultColumnTag,
		Status:    domain.ColumnStatusActive,
	}
}

func newTestReconciler(store domain.ImportStore) *Reconciler {
	r := NewReconciler(store, discardLogger())
	r.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return r
}

func TestReconciler_Insert(t *testing.T) {
	store := testutil.NewMemoryImportStore()
	r := newTestReconciler(store)

	summary, err := r.Reconcile(context.Background(), "alice", []domain.ImportRow{row("ks", "t", "c", "3")})
	require.NoError(t, err)
	assert.Equal(t, domain.ImportSummary{Total: 1, Inserted: 1}, *summary)

	got := store.Sorted()
	require.Len(t, got, 1)
	assert.Equal(t, record("ks", "t", "c", 3), got[0])

	require.Len(t, store.Audit, 1)
	entry := store.Audit[0]
	assert.Equal(t, domain.AuditActionInsert, entry.Action)
	assert.Equal(t, "alice", entry.Actor)
	assert.Equal(t, domain.ColumnKey{Keyspace: "ks", Table: "t", Column: "c"}, entry.ColumnKey)
	assert.Nil(t, entry.Before)
	require.NotNil(t, entry.After)
	assert.Equal(t, record("ks", "t", "c", 3), *entry.After)
	assert.Equal(t, 2024, entry.CreatedAt.Year())
}

func TestReconciler_InsertForcesActiveStatus(t *testing.T) {
	store := testutil.NewMemoryImportStore()
	r := newTestReconciler(store)

	in := row("ks", "t", "c", "1")
	in.Status = strPtr("deleted")
	_, err := r.Reconcile(context.Background(), "alice", []domain.ImportRow{in})
	require.NoError(t, err)

	assert.Equal(t, domain.ColumnStatusActive, store.Sorted()[0].Status)
	assert.Equal(t, domain.ColumnStatusActive, store.Audit[0].After.Status)
}

func TestReconciler_SoftDeleteByAbsence(t *testing.T) {
	kept := record("ks", "t", "a", 0)
	gone := record("ks", "t", "b", 1)
	gone.Note = "keep me"
	store := testutil.NewMemoryImportStore(kept, gone)
	r := newTestReconciler(store)

	summary, err := r.Reconcile(context.Background(), "bob", []domain.ImportRow{row("ks", "t", "a", "0")})
	require.NoError(t, err)
	assert.Equal(t, domain.ImportSummary{Total: 1, Unchanged: 1, Deleted: 1}, *summary)

	got := store.Sorted()
	require.Len(t, got, 2)
	assert.Equal(t, kept, got[0])

	want := gone
	want.Status = domain.ColumnStatusDeleted
	assert.Equal(t, want, got[1], "only status changes on soft delete")

	require.Len(t, store.Audit, 1)
	entry := store.Audit[0]
	assert.Equal(t, domain.AuditActionSoftDelete, entry.Action)
	require.NotNil(t, entry.Before)
	assert.Equal(t, gone, *entry.Before)
	assert.Nil(t, entry.After)
}

func TestReconciler_Update(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.ImportRow)
	}{
		{name: "type", mutate: func(r *domain.ImportRow) { r.Type = "int" }},
		{name: "position", mutate: func(r *domain.ImportRow) { r.Position = "7" }},
		{name: "note", mutate: func(r *domain.ImportRow) { r.Note = strPtr("changed") }},
		{name: "tag", mutate: func(r *domain.ImportRow) { r.Tag = strPtr("pii") }},
		{name: "kind", mutate: func(r *domain.ImportRow) { r.Kind = "clustering" }},
		{name: "clustering_order", mutate: func(r *domain.ImportRow) { r.ClusteringOrder = "asc" }},
		{name: "column_name_bytes", mutate: func(r *domain.ImportRow) { r.ColumnNameBytes = "0x63" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			old := record("ks", "t", "c", 0)
			store := testutil.NewMemoryImportStore(old)
			r := newTestReconciler(store)

			in := row("ks", "t", "c", "0")
			tt.mutate(&in)
			summary, err := r.Reconcile(context.Background(), "carol", []domain.ImportRow{in})
			require.NoError(t, err)
			assert.Equal(t, 1, summary.Updated)

			require.Len(t, store.Audit, 1)
			entry := store.Audit[0]
			assert.Equal(t, domain.AuditActionUpdate, entry.Action)
			assert.Equal(t, old, *entry.Before)
			assert.Equal(t, store.Sorted()[0], *entry.After)
		})
	}
}

func TestReconciler_UpdateRevivesDeletedRecord(t *testing.T) {
	old := record("ks", "t", "c", 0)
	old.Status = domain.ColumnStatusDeleted
	store := testutil.NewMemoryImportStore(old)
	r := newTestReconciler(store)

	summary, err := r.Reconcile(context.Background(), "carol", []domain.ImportRow{row("ks", "t", "c", "0")})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, domain.ColumnStatusActive, store.Sorted()[0].Status)
	assert.Equal(t, domain.ColumnStatusDeleted, store.Audit[0].Before.Status)
}

func TestReconciler_IdenticalBatchIsIdempotent(t *testing.T) {
	store := testutil.NewMemoryImportStore(record("ks", "t", "old", 0))
	r := newTestReconciler(store)
	batch := []domain.ImportRow{row("ks", "t", "a", "0"), row("ks", "t", "b", "1")}

	_, err := r.Reconcile(context.Background(), "alice", batch)
	require.NoError(t, err)
	first := store.Sorted()
	auditCount := len(store.Audit)
	assert.Equal(t, 3, auditCount)

	summary, err := r.Reconcile(context.Background(), "alice", batch)
	require.NoError(t, err)
	assert.Equal(t, domain.ImportSummary{Total: 2, Unchanged: 2}, *summary)
	assert.False(t, summary.Changed())
	assert.Equal(t, first, store.Sorted())
	assert.Len(t, store.Audit, auditCount, "re-running an identical batch writes no audit entries")
}

func TestReconciler_DeletedStatusRowIsIdempotent(t *testing.T) {
	store := testutil.NewMemoryImportStore()
	r := newTestReconciler(store)
	in := row("ks", "t", "c", "0")
	in.Status = strPtr("deleted")

	_, err := r.Reconcile(context.Background(), "alice", []domain.ImportRow{in})
	require.NoError(t, err)
	require.Len(t, store.Audit, 1)

	summary, err := r.Reconcile(context.Background(), "alice", []domain.ImportRow{in})
	require.NoError(t, err)
	assert.Equal(t, domain.ImportSummary{Total: 1, Unchanged: 1}, *summary)
	assert.Len(t, store.Audit, 1)
	assert.Equal(t, domain.ColumnStatusActive, store.Sorted()[0].Status)
}

func TestReconciler_Normalization(t *testing.T) {
	store := testutil.NewMemoryImportStore()
	r := newTestReconciler(store)

	rows := []domain.ImportRow{
		{Keyspace: " ks ", Table: " t ", Column: " c1 ", Position: "abc", Note: strPtr("  "), Tag: strPtr(" pii ")},
		{Keyspace: "ks", Table: "", Column: "c2", Position: "1"},
		{Keyspace: "ks", Table: "t", Column: "   ", Position: "2"},
	}
	summary, err := r.Reconcile(context.Background(), "alice", rows)
	require.NoError(t, err)
	assert.Equal(t, domain.ImportSummary{Total: 3, Skipped: 2, Inserted: 1}, *summary)

	got := store.Sorted()
	require.Len(t, got, 1)
	assert.Equal(t, domain.ColumnKey{Keyspace: "ks", Table: "t", Column: "c1"}, got[0].ColumnKey)
	assert.Equal(t, 0, got[0].Position)
	assert.Equal(t, domain.DefaultColumnNote, got[0].Note)
	assert.Equal(t, "pii", got[0].Tag)
}

func TestReconciler_DuplicateKeysLastWins(t *testing.T) {
	store := testutil.NewMemoryImportStore()
	r := newTestReconciler(store)

	first := row("ks", "t", "c", "1")
	second := row("ks", "t", "c", "2")
	summary, err := r.Reconcile(context.Background(), "alice", []domain.ImportRow{first, second})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 2, summary.Total)

	got := store.Sorted()
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Position)
	assert.Len(t, store.Audit, 1)
}

func TestReconciler_EmptyBatchDeletesEverything(t *testing.T) {
	store := testutil.NewMemoryImportStore(record("ks", "t", "a", 0), record("ks", "t", "b", 1))
	r := newTestReconciler(store)

	summary, err := r.Reconcile(context.Background(), "alice", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Deleted)
	for _, c := range store.Sorted() {
		assert.Equal(t, domain.ColumnStatusDeleted, c.Status)
	}
	assert.Equal(t, []string{domain.AuditActionSoftDelete, domain.AuditActionSoftDelete}, store.AuditActions())
}

func TestReconciler_RowFailuresAreCounted(t *testing.T) {
	existing := record("ks", "t", "b", 0)
	store := testutil.NewMemoryImportStore(existing)
	store.InsertErr = map[domain.ColumnKey]error{
		{Keyspace: "ks", Table: "t", Column: "bad"}: errTest,
	}
	store.DeleteErr = map[domain.ColumnKey]error{existing.ColumnKey: errTest}
	r := newTestReconciler(store)

	summary, err := r.Reconcile(context.Background(), "alice", []domain.ImportRow{
		row("ks", "t", "bad", "0"),
		row("ks", "t", "good", "1"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ImportSummary{Total: 2, Inserted: 1, Failed: 2}, *summary)
	assert.Equal(t, []string{domain.AuditActionInsert}, store.AuditActions())
	assert.Equal(t, domain.ColumnStatusActive, store.Columns[existing.ColumnKey].Status)
}

func TestReconciler_AuditFailureUndoesRow(t *testing.T) {
	existing := record("ks", "t", "old", 0)
	store := testutil.NewMemoryImportStore(existing)
	store.AuditErr = errTest
	r := newTestReconciler(store)

	summary, err := r.Reconcile(context.Background(), "alice", []domain.ImportRow{row("ks", "t", "new", "1")})
	require.NoError(t, err)
	assert.Equal(t, domain.ImportSummary{Total: 1, Failed: 2}, *summary)
	assert.Equal(t, []domain.ColumnRecord{existing}, store.Sorted())
	assert.Empty(t, store.Audit)
}

func TestReconciler_SnapshotErrorAbortsBatch(t *testing.T) {
	store := testutil.NewMemoryImportStore()
	store.ListErr = errTest
	r := newTestReconciler(store)

	_, err := r.Reconcile(context.Background(), "alice", []domain.ImportRow{row("ks", "t", "c", "0")})
	require.ErrorIs(t, err, errTest)
	assert.Empty(t, store.Columns)
	assert.Empty(t, store.Audit)
}

func TestReconciler_SQLite(t *testing.T) {
	writeDB, readDB := db.OpenTestSQLite(t)
	r := newTestReconciler(repository.NewImportStore(writeDB))
	ctx := context.Background()

	_, err := r.Reconcile(ctx, "alice", []domain.ImportRow{
		row("ks", "users", "id", "0"),
		row("ks", "users", "email", "1"),
	})
	require.NoError(t, err)

	email := row("ks", "users", "email", "1")
	email.Tag = strPtr("pii")
	summary, err := r.Reconcile(ctx, "bob", []domain.ImportRow{email})
	require.NoError(t, err)
	assert.Equal(t, domain.ImportSummary{Total: 1, Updated: 1, Deleted: 1}, *summary)

	cols, err := repository.NewColumnRepo(readDB).ListForTable(ctx, "ks", "users")
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.Equal(t, "id", cols[0].Column)
	assert.Equal(t, domain.ColumnStatusDeleted, cols[0].Status)
	assert.Equal(t, "email", cols[1].Column)
	assert.Equal(t, "pii", cols[1].Tag)

	entries, total, err := repository.NewAuditRepo(readDB).List(ctx, domain.AuditFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, entries, 4)
	assert.Equal(t, "bob", entries[0].Actor)
}
