package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"nosql-catalog/internal/domain"
)

// dumpableTables lists the store tables that may be returned whole.
// users is excluded because it holds password hashes.
var dumpableTables = map[string]bool{
	"columns":           true,
	"table_description": true,
	"relations":         true,
	"update_logs":       true,
}

// DumpRepo implements domain.TableDumpRepository.
type DumpRepo struct {
	db DBTX
}

// NewDumpRepo creates a DumpRepo.
func NewDumpRepo(db DBTX) *DumpRepo {
	return &DumpRepo{db: db}
}

// Dump returns every row of tableName as column-name keyed maps.
func (r *DumpRepo) Dump(ctx context.Context, tableName string) ([]map[string]interface{}, error) {
	if !dumpableTables[tableName] {
		return nil, domain.ErrNotFound("Table '%s' does not exist", tableName)
	}

	var name string
	err := r.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, tableName).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("Table '%s' does not exist", tableName)
	}
	if err != nil {
		return nil, err
	}

	// name comes from the allow-list above, so quoting it is sufficient.
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM "%s"`, name))
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := []map[string]interface{}{}
	for rows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := make(map[string]interface{}, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				rec[c] = string(b)
				continue
			}
			rec[c] = vals[i]
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

var _ domain.TableDumpRepository = (*DumpRepo)(nil)
