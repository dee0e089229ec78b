package catalog

import (
	"context"
	"fmt"
	"strings"

	"nosql-catalog/internal/domain"
)

// browseLimit caps the rows returned when no search filter is given.
const browseLimit = 50

// SearchService provides free-text search over column records.
type SearchService struct {
	repo domain.ColumnRepository
}

// NewSearchService creates a new SearchService.
func NewSearchService(repo domain.ColumnRepository) *SearchService {
	return &SearchService{repo: repo}
}

// Search returns columns whose name, note or tag contains filter, ignoring
// case. An empty filter returns the first rows of the catalog instead.
func (s *SearchService) Search(ctx context.Context, filter string) ([]domain.ColumnRecord, error) {
	limit := 0
	if filter == "" {
		limit = browseLimit
	}
	cols, err := s.repo.Search(ctx, filter, limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	for i := range cols {
		cols[i].Tag = strings.TrimSpace(cols[i].Tag)
	}
	return cols, nil
}
