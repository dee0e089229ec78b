package repository

import (
	"context"
	"database/sql"
	"errors"

	"nosql-catalog/internal/domain"
)

// TableDescriptionRepo implements domain.TableDescriptionRepository.
type TableDescriptionRepo struct {
	db DBTX
}

// NewTableDescriptionRepo creates a TableDescriptionRepo.
func NewTableDescriptionRepo(db DBTX) *TableDescriptionRepo {
	return &TableDescriptionRepo{db: db}
}

func (r *TableDescriptionRepo) Get(ctx context.Context, keyspace, table string) (*domain.TableDescription, error) {
	var d domain.TableDescription
	err := r.db.QueryRowContext(ctx,
		`SELECT keyspace_name, table_name, note, tag FROM table_description
		 WHERE keyspace_name = ? AND table_name = ? LIMIT 1`,
		keyspace, table).Scan(&d.Keyspace, &d.Table, &d.Note, &d.Tag)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("No data found for keyspace '%s' and table '%s'", keyspace, table)
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *TableDescriptionRepo) Update(ctx context.Context, d *domain.TableDescription) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE table_description SET tag = ?, note = ?
		 WHERE keyspace_name = ? AND table_name = ?`,
		d.Tag, d.Note, d.Keyspace, d.Table)
	if err != nil {
		return err
	}
	return requireAffected(res, domain.ErrNotFound(
		"No matching row found for the provided keyspace_name, table_name"))
}

// SeedFromColumns adds a default description for every table present in
// the columns table that has none yet, returning the number of rows added.
func (r *TableDescriptionRepo) SeedFromColumns(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO table_description (keyspace_name, table_name, note, tag)
		 SELECT DISTINCT keyspace_name, table_name, ?, ? FROM columns`,
		domain.DefaultTableNote, domain.DefaultTableTag)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

var _ domain.TableDescriptionRepository = (*TableDescriptionRepo)(nil)
