package ingestion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nosql-catalog/internal/domain"
)

const fullHeader = "keyspace_name,table_name,column_name,clustering_order,column_name_bytes,kind,position,type,note,tag,status\n"

func TestParseCSV(t *testing.T) {
	t.Run("full_row", func(t *testing.T) {
		rows, err := ParseCSV(strings.NewReader(fullHeader +
			"shop,orders,id,none,0x6964,partition_key,0,uuid,primary id,pk,active\n"))
		require.NoError(t, err)
		require.Len(t, rows, 1)

		r := rows[0]
		assert.Equal(t, "shop", r.Keyspace)
		assert.Equal(t, "orders", r.Table)
		assert.Equal(t, "id", r.Column)
		assert.Equal(t, "none", r.ClusteringOrder)
		assert.Equal(t, "0x6964", r.ColumnNameBytes)
		assert.Equal(t, "partition_key", r.Kind)
		assert.Equal(t, "0", r.Position)
		assert.Equal(t, "uuid", r.Type)
		require.NotNil(t, r.Note)
		assert.Equal(t, "primary id", *r.Note)
		require.NotNil(t, r.Tag)
		assert.Equal(t, "pk", *r.Tag)
		require.NotNil(t, r.Status)
		assert.Equal(t, "active", *r.Status)
	})

	t.Run("bom_and_padded_header", func(t *testing.T) {
		rows, err := ParseCSV(strings.NewReader("\ufeff keyspace_name , table_name ,column_name\nks,t,c\n"))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "ks", rows[0].Keyspace)
		assert.Equal(t, "t", rows[0].Table)
		assert.Equal(t, "c", rows[0].Column)
	})

	t.Run("optional_columns_absent", func(t *testing.T) {
		rows, err := ParseCSV(strings.NewReader("keyspace_name,table_name,column_name,position\nks,t,c,2\n"))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Nil(t, rows[0].Note)
		assert.Nil(t, rows[0].Tag)
		assert.Nil(t, rows[0].Status)
		assert.Equal(t, "2", rows[0].Position)
	})

	t.Run("short_row_padded", func(t *testing.T) {
		rows, err := ParseCSV(strings.NewReader(fullHeader + "ks,t,c\n"))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "", rows[0].Type)
		require.NotNil(t, rows[0].Note)
		assert.Equal(t, "", *rows[0].Note)
	})

	t.Run("quoted_fields", func(t *testing.T) {
		rows, err := ParseCSV(strings.NewReader(fullHeader +
			`ks,t,c,,,regular,1,text,"note, with comma","a ""quoted"" tag",` + "\n"))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "note, with comma", *rows[0].Note)
		assert.Equal(t, `a "quoted" tag`, *rows[0].Tag)
	})

	t.Run("header_only", func(t *testing.T) {
		rows, err := ParseCSV(strings.NewReader(fullHeader))
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("empty_input", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader(""))
		require.Error(t, err)
		var validationErr *domain.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("missing_key_header", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader("keyspace_name,table_name\nks,t\n"))
		require.Error(t, err)
		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Contains(t, err.Error(), "column_name")
	})
}
