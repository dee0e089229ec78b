package repository

import (
	"context"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "nosql-catalog/internal/db"
	"nosql-catalog/internal/domain"
)

func setupAuditRepo(t *testing.T) *AuditRepo {
	t.Helper()
	writeDB, _ := internaldb.OpenTestSQLite(t)
	return NewAuditRepo(writeDB)
}

func auditPtrStr(s string) *string { return &s }

func TestAuditRepo_InsertAndList(t *testing.T) {
	repo := setupAuditRepo(t)
	ctx := context.Background()

	after := makeColumn("ks1", "t1", "c1", 3)
	require.NoError(t, repo.Insert(ctx, &domain.AuditEntry{
		ColumnKey: after.ColumnKey,
		Actor:     "admin",
		Action:    domain.AuditActionInsert,
		After:     after,
		CreatedAt: time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
	}))

	before := *after
	require.NoError(t, repo.Insert(ctx, &domain.AuditEntry{
		ColumnKey: after.ColumnKey,
		Actor:     "alice@example.com",
		Action:    domain.AuditActionSoftDelete,
		Before:    &before,
	}))

	entries, total, err := repo.List(ctx, domain.AuditFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, entries, 2)

	// Newest first.
	del := entries[0]
	assert.Equal(t, domain.AuditActionSoftDelete, del.Action)
	require.NotNil(t, del.Before)
	assert.Equal(t, before, *del.Before)
	assert.Nil(t, del.After)
	assert.False(t, del.CreatedAt.IsZero())

	ins := entries[1]
	assert.Equal(t, "admin", ins.Actor)
	assert.Nil(t, ins.Before)
	require.NotNil(t, ins.After)
	assert.Equal(t, 3, ins.After.Position)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC), ins.CreatedAt)
}

func TestAuditRepo_Filter(t *testing.T) {
	repo := setupAuditRepo(t)
	ctx := context.Background()

	for _, e := range []struct{ actor, ks, table string }{
		{"alice", "ks1", "t1"},
		{"alice", "ks1", "t2"},
		{"bob", "ks2", "t1"},
	} {
		c := makeColumn(e.ks, e.table, "c", 0)
		require.NoError(t, repo.Insert(ctx, &domain.AuditEntry{
			ColumnKey: c.ColumnKey, Actor: e.actor, Action: domain.AuditActionInsert, After: c,
		}))
	}

	entries, total, err := repo.List(ctx, domain.AuditFilter{Actor: auditPtrStr("alice")})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, entries, 2)

	entries, total, err = repo.List(ctx, domain.AuditFilter{Keyspace: auditPtrStr("ks1"), Table: auditPtrStr("t2")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
	assert.Equal(t, "t2", entries[0].Table)
}

func TestAuditRepo_Pagination(t *testing.T) {
	repo := setupAuditRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		c := makeColumn("ks", "t", "c", i)
		require.NoError(t, repo.Insert(ctx, &domain.AuditEntry{
			ColumnKey: c.ColumnKey, Actor: "admin", Action: domain.AuditActionUpdate, Before: c, After: c,
		}))
	}

	page1, total, err := repo.List(ctx, domain.AuditFilter{Page: domain.PageRequest{MaxResults: 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, page1, 2)

	page3, _, err := repo.List(ctx, domain.AuditFilter{
		Page: domain.PageRequest{MaxResults: 2, PageToken: domain.EncodePageToken(4)},
	})
	require.NoError(t, err)
	assert.Len(t, page3, 1)
}
