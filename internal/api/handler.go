// Package api provides the HTTP handlers and router of the catalog REST API.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"nosql-catalog/internal/domain"
	"nosql-catalog/internal/middleware"
	"nosql-catalog/internal/service/catalog"
	"nosql-catalog/internal/service/governance"
	"nosql-catalog/internal/service/ingestion"
	"nosql-catalog/internal/service/security"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// APIHandler serves the catalog API on top of the service layer.
type APIHandler struct {
	catalog   *catalog.CatalogService
	search    *catalog.SearchService
	dump      *catalog.DumpService
	relations *governance.RelationService
	audit     *governance.AuditService
	auth      *security.AuthService
	ingestion *ingestion.Service

	maxUploadBytes int64
	logger         *slog.Logger
}

// NewHandler creates a new APIHandler with all required service dependencies.
func NewHandler(
	catalogSvc *catalog.CatalogService,
	searchSvc *catalog.SearchService,
	dumpSvc *catalog.DumpService,
	relationSvc *governance.RelationService,
	auditSvc *governance.AuditService,
	authSvc *security.AuthService,
	ingestionSvc *ingestion.Service,
	maxUploadBytes int64,
	logger *slog.Logger,
) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIHandler{
		catalog:        catalogSvc,
		search:         searchSvc,
		dump:           dumpSvc,
		relations:      relationSvc,
		audit:          auditSvc,
		auth:           authSvc,
		ingestion:      ingestionSvc,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Health reports liveness.
func (h *APIHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status code and writes the JSON error body.
// Server errors are logged with the request ID.
func (h *APIHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatusFromDomainError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.RequestIDFromContext(r.Context()),
			"error", err,
		)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: status})
}

// decodeJSON reads a JSON body into dst. Malformed or empty bodies yield a
// ValidationError.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.ErrValidation("request body is required")
		}
		return domain.ErrValidation("invalid request body: %v", err)
	}
	return nil
}
