// Package app provides application-level wiring and dependency injection
// for the catalog server and CLI.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"nosql-catalog/internal/api"
	"nosql-catalog/internal/config"
	"nosql-catalog/internal/db/repository"
	"nosql-catalog/internal/middleware"
	"nosql-catalog/internal/service/catalog"
	"nosql-catalog/internal/service/governance"
	"nosql-catalog/internal/service/ingestion"
	"nosql-catalog/internal/service/security"
)

// Deps holds the external dependencies that main() must provide: database
// handles, config and the logger.
type Deps struct {
	Cfg     *config.Config
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Logger  *slog.Logger
}

// Services groups all service pointers that the API handler and CLI need.
type Services struct {
	Catalog   *catalog.CatalogService
	Search    *catalog.SearchService
	Dump      *catalog.DumpService
	Relations *governance.RelationService
	Audit     *governance.AuditService
	Auth      *security.AuthService
	Ingestion *ingestion.Service
}

// App holds the fully-wired application.
type App struct {
	Services Services
	Tokens   *middleware.TokenManager
	// Scheduler is nil unless a scheduled import is configured.
	Scheduler *ingestion.Scheduler

	cfg    *config.Config
	logger *slog.Logger
}

// New wires all repositories and services from the provided deps and seeds
// missing table descriptions.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tokens, err := middleware.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}

	// === Repositories (write-pool) ===
	columnRepo := repository.NewColumnRepo(deps.WriteDB)
	tableRepo := repository.NewTableDescriptionRepo(deps.WriteDB)
	relationRepo := repository.NewRelationRepo(deps.WriteDB)
	userRepo := repository.NewUserRepo(deps.WriteDB)
	importStore := repository.NewImportStore(deps.WriteDB)

	// === Repositories (read-pool) ===
	columnReadRepo := repository.NewColumnRepo(deps.ReadDB)
	tableReadRepo := repository.NewTableDescriptionRepo(deps.ReadDB)
	auditRepo := repository.NewAuditRepo(deps.ReadDB)
	dumpRepo := repository.NewDumpRepo(deps.ReadDB)

	// === Services ===
	catalogSvc := catalog.NewCatalogService(columnRepo, tableRepo, logger.With("component", "catalog")).
		WithReaders(columnReadRepo, tableReadRepo)
	reconciler := ingestion.NewReconciler(importStore, logger.With("component", "reconciler"))
	ingestionSvc := ingestion.NewService(reconciler, cfg.UploadDir, logger.With("component", "ingestion"))

	a := &App{
		Services: Services{
			Catalog:   catalogSvc,
			Search:    catalog.NewSearchService(columnReadRepo),
			Dump:      catalog.NewDumpService(dumpRepo),
			Relations: governance.NewRelationService(relationRepo, logger.With("component", "relations")),
			Audit:     governance.NewAuditService(auditRepo),
			Auth:      security.NewAuthService(userRepo, tokens, logger.With("component", "auth")),
			Ingestion: ingestionSvc,
		},
		Tokens: tokens,
		cfg:    cfg,
		logger: logger,
	}

	if cfg.Import.Enabled() {
		a.Scheduler = ingestion.NewScheduler(ingestionSvc, cfg.Import.Schedule, cfg.Import.CSVPath,
			cfg.Import.Actor, logger.With("component", "scheduler"))
	}

	if _, err := catalogSvc.SeedTableDescriptions(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// Handler builds the HTTP handler serving the API.
func (a *App) Handler() http.Handler {
	s := a.Services
	h := api.NewHandler(
		s.Catalog, s.Search, s.Dump,
		s.Relations, s.Audit,
		s.Auth, s.Ingestion,
		a.cfg.MaxUploadBytes(),
		a.logger.With("component", "api"),
	)
	return api.NewRouter(h, api.RouterConfig{
		Validator:   a.Tokens,
		CORSOrigins: a.cfg.CORSAllowedOrigins,
		RateLimit: middleware.RateLimitConfig{
			RequestsPerSecond: a.cfg.RateLimitRPS,
			Burst:             a.cfg.RateLimitBurst,
		},
		Logger: a.logger.With("component", "http"),
	})
}
