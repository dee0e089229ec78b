package catalog

import (
	"context"

	"nosql-catalog/internal/domain"
)

// TableDump is the raw content of one store table.
type TableDump struct {
	Table string                   `json:"table"`
	Data  []map[string]interface{} `json:"data"`
}

// DumpService exposes the raw rows of the catalog tables.
type DumpService struct {
	repo domain.TableDumpRepository
}

// NewDumpService creates a new DumpService.
func NewDumpService(repo domain.TableDumpRepository) *DumpService {
	return &DumpService{repo: repo}
}

// Dump returns every row of the named table.
func (s *DumpService) Dump(ctx context.Context, tableName string) (*TableDump, error) {
	if tableName == "" {
		return nil, domain.ErrValidation("Table name is required")
	}
	rows, err := s.repo.Dump(ctx, tableName)
	if err != nil {
		return nil, err
	}
	return &TableDump{Table: tableName, Data: rows}, nil
}
