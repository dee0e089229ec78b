package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"nosql-catalog/internal/middleware"
)

// RouterConfig carries the middleware settings of the HTTP router.
type RouterConfig struct {
	Validator   middleware.JWTValidator
	CORSOrigins []string
	RateLimit   middleware.RateLimitConfig
	Logger      *slog.Logger
}

// NewRouter builds the chi router serving the catalog API. Login, register
// and the health check are public; every other /api route requires a bearer
// token.
func NewRouter(h *APIHandler, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimiter(cfg.RateLimit))

	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.Validator, logger))

			r.Get("/protected", h.Protected)
			r.Post("/upload-file", h.UploadFile)

			r.Get("/keyspace_names", h.ListKeyspaces)
			r.Get("/table_names", h.ListTables)
			r.Get("/get_columns", h.GetColumns)
			r.Put("/update_column_tag", h.UpdateColumnTag)
			r.Get("/get_table_description", h.GetTableDescription)
			r.Put("/update_table_description", h.UpdateTableDescription)
			r.Get("/filtered_data", h.FilteredData)
			r.Get("/db_data", h.DumpTable)

			r.Post("/save_relation", h.SaveRelation)
			r.Get("/get_relations", h.GetRelations)
			r.Get("/audit_log", h.ListAuditLog)
		})
	})

	return r
}
