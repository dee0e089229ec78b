package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"nosql-catalog/internal/domain"
)

const columnSelect = `SELECT keyspace_name, table_name, column_name, clustering_order,
	column_name_bytes, kind, position, type, note, tag, status FROM columns`

// ColumnRepo implements domain.ColumnRepository against the columns table.
type ColumnRepo struct {
	db DBTX
}

// NewColumnRepo creates a ColumnRepo.
func NewColumnRepo(db DBTX) *ColumnRepo {
	return &ColumnRepo{db: db}
}

func (r *ColumnRepo) ListKeyspaces(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT keyspace_name FROM columns WHERE keyspace_name IS NOT NULL ORDER BY keyspace_name`)
	if err != nil {
		return nil, err
	}
	return scanStrings(rows)
}

func (r *ColumnRepo) ListTables(ctx context.Context, keyspace string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT table_name FROM columns
		 WHERE keyspace_name = ? AND table_name IS NOT NULL ORDER BY table_name`, keyspace)
	if err != nil {
		return nil, err
	}
	return scanStrings(rows)
}

func (r *ColumnRepo) ListForTable(ctx context.Context, keyspace, table string) ([]domain.ColumnRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		columnSelect+` WHERE keyspace_name = ? AND table_name = ? ORDER BY position, column_name`,
		keyspace, table)
	if err != nil {
		return nil, err
	}
	return scanColumns(rows)
}

// ListAll returns every stored column, deleted ones included.
func (r *ColumnRepo) ListAll(ctx context.Context) ([]domain.ColumnRecord, error) {
	rows, err := r.db.QueryContext(ctx, columnSelect)
	if err != nil {
		return nil, err
	}
	return scanColumns(rows)
}

func (r *ColumnRepo) UpdateAnnotations(ctx context.Context, key domain.ColumnKey, note, tag string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE columns SET tag = ?, note = ?
		 WHERE keyspace_name = ? AND table_name = ? AND column_name = ?`,
		tag, note, key.Keyspace, key.Table, key.Column)
	if err != nil {
		return err
	}
	return requireAffected(res, domain.ErrNotFound(
		"No matching row found for the provided keyspace_name, table_name, and column_name"))
}

// Search matches filter case-insensitively against column_name, note and tag.
// A limit of 0 or less returns every match.
func (r *ColumnRepo) Search(ctx context.Context, filter string, limit int) ([]domain.ColumnRecord, error) {
	var (
		query strings.Builder
		args  []interface{}
	)
	query.WriteString(columnSelect)
	if filter != "" {
		like := "%" + strings.ToLower(filter) + "%"
		query.WriteString(` WHERE LOWER(column_name) LIKE ? OR LOWER(note) LIKE ? OR LOWER(tag) LIKE ?`)
		args = append(args, like, like, like)
	}
	if limit > 0 {
		query.WriteString(` LIMIT ?`)
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search columns: %w", err)
	}
	return scanColumns(rows)
}

// Insert adds a new column record.
func (r *ColumnRepo) Insert(ctx context.Context, c *domain.ColumnRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO columns (keyspace_name, table_name, column_name, clustering_order,
			column_name_bytes, kind, position, type, note, tag, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Keyspace, c.Table, c.Column, c.ClusteringOrder,
		c.ColumnNameBytes, c.Kind, c.Position, c.Type, c.Note, c.Tag, c.Status)
	return mapDBError(err)
}

// Update overwrites every non-key attribute of an existing column record.
func (r *ColumnRepo) Update(ctx context.Context, c *domain.ColumnRecord) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE columns SET clustering_order = ?, column_name_bytes = ?, kind = ?, position = ?,
			type = ?, note = ?, tag = ?, status = ?
		 WHERE keyspace_name = ? AND table_name = ? AND column_name = ?`,
		c.ClusteringOrder, c.ColumnNameBytes, c.Kind, c.Position,
		c.Type, c.Note, c.Tag, c.Status,
		c.Keyspace, c.Table, c.Column)
	if err != nil {
		return err
	}
	return requireAffected(res, domain.ErrNotFound("column %s not found", c.ColumnKey))
}

// SetStatus changes only the status of a column record.
func (r *ColumnRepo) SetStatus(ctx context.Context, key domain.ColumnKey, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE columns SET status = ?
		 WHERE keyspace_name = ? AND table_name = ? AND column_name = ?`,
		status, key.Keyspace, key.Table, key.Column)
	if err != nil {
		return err
	}
	return requireAffected(res, domain.ErrNotFound("column %s not found", key))
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanColumn(s rowScanner, c *domain.ColumnRecord) error {
	return s.Scan(&c.Keyspace, &c.Table, &c.Column, &c.ClusteringOrder,
		&c.ColumnNameBytes, &c.Kind, &c.Position, &c.Type, &c.Note, &c.Tag, &c.Status)
}

func scanColumns(rows *sql.Rows) ([]domain.ColumnRecord, error) {
	defer rows.Close() //nolint:errcheck
	out := []domain.ColumnRecord{}
	for rows.Next() {
		var c domain.ColumnRecord
		if err := scanColumn(rows, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

var _ domain.ColumnRepository = (*ColumnRepo)(nil)
