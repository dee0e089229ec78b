package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"nosql-catalog/internal/domain"
)

// ImportStore implements domain.ImportStore on the write pool.
type ImportStore struct {
	db *sql.DB
}

// NewImportStore creates an ImportStore. db should be the write pool.
func NewImportStore(db *sql.DB) *ImportStore {
	return &ImportStore{db: db}
}

// RunBatch runs fn inside a transaction and commits when fn returns nil.
func (s *ImportStore) RunBatch(ctx context.Context, fn func(domain.ImportBatch) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import batch: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(&importBatch{tx: tx, columns: NewColumnRepo(tx), audit: NewAuditRepo(tx)}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import batch: %w", err)
	}
	return nil
}

type importBatch struct {
	tx      *sql.Tx
	columns *ColumnRepo
	audit   *AuditRepo
}

func (b *importBatch) ListColumns(ctx context.Context) ([]domain.ColumnRecord, error) {
	return b.columns.ListAll(ctx)
}

func (b *importBatch) InsertColumn(ctx context.Context, c *domain.ColumnRecord) error {
	return b.columns.Insert(ctx, c)
}

func (b *importBatch) UpdateColumn(ctx context.Context, c *domain.ColumnRecord) error {
	return b.columns.Update(ctx, c)
}

func (b *importBatch) MarkColumnDeleted(ctx context.Context, key domain.ColumnKey) error {
	return b.columns.SetStatus(ctx, key, domain.ColumnStatusDeleted)
}

func (b *importBatch) AppendAudit(ctx context.Context, e *domain.AuditEntry) error {
	return b.audit.Insert(ctx, e)
}

// Atomic wraps fn in a savepoint of the batch transaction.
func (b *importBatch) Atomic(ctx context.Context, fn func() error) error {
	if _, err := b.tx.ExecContext(ctx, "SAVEPOINT import_row"); err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}
	if err := fn(); err != nil {
		if _, rbErr := b.tx.ExecContext(ctx, "ROLLBACK TO import_row"); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback to savepoint: %w", rbErr))
		}
		_, _ = b.tx.ExecContext(ctx, "RELEASE import_row")
		return err
	}
	if _, err := b.tx.ExecContext(ctx, "RELEASE import_row"); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}

var _ domain.ImportStore = (*ImportStore)(nil)
