package governance

import (
	"context"
	"log/slog"

	"nosql-catalog/internal/domain"
)

// RelationService records and looks up column relations.
type RelationService struct {
	repo   domain.RelationRepository
	logger *slog.Logger
}

// NewRelationService creates a new RelationService.
func NewRelationService(repo domain.RelationRepository, logger *slog.Logger) *RelationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RelationService{repo: repo, logger: logger}
}

// Save stores a new relation. Relations are not checked against the
// catalog's column records.
func (s *RelationService) Save(ctx context.Context, req domain.CreateRelationRequest) (*domain.Relation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	rel, err := s.repo.Create(ctx, &domain.Relation{
		FromKeyspace: req.FromKeyspace,
		FromTable:    req.FromTable,
		FromColumn:   req.FromColumn,
		ToKeyspace:   req.ToKeyspace,
		ToTable:      req.ToTable,
		ToColumn:     req.ToColumn,
		IsPublished:  *req.IsPublished,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("relation saved",
		"from", req.FromKeyspace+"."+req.FromTable+"."+req.FromColumn,
		"to", req.ToKeyspace+"."+req.ToTable+"."+req.ToColumn)
	return rel, nil
}

// ListFrom returns the relations originating from a table.
func (s *RelationService) ListFrom(ctx context.Context, keyspace, table string) ([]domain.Relation, error) {
	if keyspace == "" || table == "" {
		return nil, domain.ErrValidation("Both from_keyspace and from_table are required parameters")
	}
	rels, err := s.repo.ListFrom(ctx, keyspace, table)
	if err != nil {
		return nil, err
	}
	if len(rels) == 0 {
		return nil, domain.ErrNotFound("No relations found for the given keyspace and table")
	}
	return rels, nil
}
