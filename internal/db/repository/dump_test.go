package repository

import (
	"context"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "nosql-catalog/internal/db"
	"nosql-catalog/internal/domain"
)

func TestDumpRepo_Dump(t *testing.T) {
	writeDB, _ := internaldb.OpenTestSQLite(t)
	ctx := context.Background()
	require.NoError(t, NewColumnRepo(writeDB).Insert(ctx, makeColumn("ks1", "t1", "c1", 2)))

	rows, err := NewDumpRepo(writeDB).Dump(ctx, "columns")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ks1", rows[0]["keyspace_name"])
	assert.Equal(t, "c1", rows[0]["column_name"])
	assert.EqualValues(t, 2, rows[0]["position"])
}

func TestDumpRepo_UnknownOrHiddenTable(t *testing.T) {
	writeDB, _ := internaldb.OpenTestSQLite(t)
	repo := NewDumpRepo(writeDB)

	for _, name := range []string{"nope", "users", "goose_db_version", "columns; DROP TABLE columns"} {
		_, err := repo.Dump(context.Background(), name)
		var nf *domain.NotFoundError
		require.ErrorAs(t, err, &nf, name)
	}
}
