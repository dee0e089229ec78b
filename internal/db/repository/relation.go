package repository

import (
	"context"

	"nosql-catalog/internal/domain"
)

// RelationRepo implements domain.RelationRepository.
type RelationRepo struct {
	db DBTX
}

// NewRelationRepo creates a RelationRepo.
func NewRelationRepo(db DBTX) *RelationRepo {
	return &RelationRepo{db: db}
}

func (r *RelationRepo) Create(ctx context.Context, rel *domain.Relation) (*domain.Relation, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO relations (from_keyspace, from_table, from_column, to_keyspace, to_table, to_column, is_published)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rel.FromKeyspace, rel.FromTable, rel.FromColumn,
		rel.ToKeyspace, rel.ToTable, rel.ToColumn, boolToInt(rel.IsPublished))
	if err != nil {
		return nil, mapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	out := *rel
	out.ID = id
	return &out, nil
}

func (r *RelationRepo) ListFrom(ctx context.Context, keyspace, table string) ([]domain.Relation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, from_keyspace, from_table, from_column, to_keyspace, to_table, to_column, is_published
		 FROM relations WHERE from_keyspace = ? AND from_table = ? ORDER BY id`,
		keyspace, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := []domain.Relation{}
	for rows.Next() {
		var (
			rel       domain.Relation
			published int64
		)
		if err := rows.Scan(&rel.ID, &rel.FromKeyspace, &rel.FromTable, &rel.FromColumn,
			&rel.ToKeyspace, &rel.ToTable, &rel.ToColumn, &published); err != nil {
			return nil, err
		}
		rel.IsPublished = published != 0
		out = append(out, rel)
	}
	return out, rows.Err()
}

var _ domain.RelationRepository = (*RelationRepo)(nil)
