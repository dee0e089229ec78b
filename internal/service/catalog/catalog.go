// Package catalog implements the read and annotation services of the
// metadata catalog.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"nosql-catalog/internal/domain"
)

// CatalogService browses keyspaces, tables and columns and maintains their
// manual annotations.
//
//nolint:revive // Name chosen for clarity across package boundaries
type CatalogService struct {
	columns domain.ColumnRepository
	tables  domain.TableDescriptionRepository

	// Lookups use these; they default to the write-side repositories.
	columnReads domain.ColumnRepository
	tableReads  domain.TableDescriptionRepository

	logger *slog.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(
	columns domain.ColumnRepository,
	tables domain.TableDescriptionRepository,
	logger *slog.Logger,
) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{
		columns:     columns,
		tables:      tables,
		columnReads: columns,
		tableReads:  tables,
		logger:      logger,
	}
}

// WithReaders routes lookups to separate repositories, typically backed by
// the read pool, so they do not queue behind a running import.
func (s *CatalogService) WithReaders(columns domain.ColumnRepository, tables domain.TableDescriptionRepository) *CatalogService {
	s.columnReads = columns
	s.tableReads = tables
	return s
}

// ListKeyspaces returns every distinct keyspace name.
func (s *CatalogService) ListKeyspaces(ctx context.Context) ([]string, error) {
	names, err := s.columnReads.ListKeyspaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("list keyspaces: %w", err)
	}
	return names, nil
}

// ListTables returns the distinct table names of a keyspace.
func (s *CatalogService) ListTables(ctx context.Context, keyspace string) ([]string, error) {
	if keyspace == "" {
		return nil, domain.ErrValidation("keyspace_name parameter is required")
	}
	names, err := s.columnReads.ListTables(ctx, keyspace)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return names, nil
}

// ListColumns returns the column records of a table, deleted ones included.
func (s *CatalogService) ListColumns(ctx context.Context, keyspace, table string) ([]domain.ColumnRecord, error) {
	if keyspace == "" || table == "" {
		return nil, domain.ErrValidation("Both keyspace_name and table_name parameters are required")
	}
	cols, err := s.columnReads.ListForTable(ctx, keyspace, table)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	if len(cols) == 0 {
		return nil, domain.ErrNotFound("No data found for keyspace '%s' and table '%s'", keyspace, table)
	}
	return cols, nil
}

// UpdateColumnAnnotations sets the note and tag of one column.
func (s *CatalogService) UpdateColumnAnnotations(ctx context.Context, key domain.ColumnKey, note, tag string) error {
	if !key.Valid() || note == "" || tag == "" {
		return domain.ErrValidation("keyspace_name, table_name, column_name, tag, and note are required")
	}
	if err := s.columns.UpdateAnnotations(ctx, key, note, tag); err != nil {
		return err
	}
	s.logger.Info("column annotations updated", "column", key.String(), "principal", principalName(ctx))
	return nil
}

// GetTableDescription returns the annotations of a table.
func (s *CatalogService) GetTableDescription(ctx context.Context, keyspace, table string) (*domain.TableDescription, error) {
	if keyspace == "" || table == "" {
		return nil, domain.ErrValidation("keyspace_name and table_name parameter is required")
	}
	return s.tableReads.Get(ctx, keyspace, table)
}

// UpdateTableDescription replaces the note and tag of an existing table
// description.
func (s *CatalogService) UpdateTableDescription(ctx context.Context, d domain.TableDescription) error {
	if d.Keyspace == "" || d.Table == "" || d.Note == "" || d.Tag == "" {
		return domain.ErrValidation("keyspace_name, table_name, tag, and note are required")
	}
	if err := s.tables.Update(ctx, &d); err != nil {
		return err
	}
	s.logger.Info("table description updated",
		"keyspace", d.Keyspace, "table", d.Table, "principal", principalName(ctx))
	return nil
}

// SeedTableDescriptions creates a default description for every table known
// from the column records that has none yet. It returns the number created.
func (s *CatalogService) SeedTableDescriptions(ctx context.Context) (int64, error) {
	n, err := s.tables.SeedFromColumns(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed table descriptions: %w", err)
	}
	if n > 0 {
		s.logger.Info("seeded table descriptions", "count", n)
	}
	return n, nil
}

func principalName(ctx context.Context) string {
	if p, ok := domain.PrincipalFromContext(ctx); ok {
		return p.Name
	}
	return ""
}
