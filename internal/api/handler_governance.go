package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"nosql-catalog/internal/domain"
)

// flexBool accepts JSON booleans, numbers and strings such as "true" or "0".
// It stays nil when the field is absent or null.
type flexBool struct {
	v *bool
}

func (b *flexBool) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out bool
	switch t := raw.(type) {
	case bool:
		out = t
	case float64:
		out = t != 0
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return fmt.Errorf("is_published: %q is not a boolean", t)
		}
		out = parsed
	default:
		return fmt.Errorf("is_published: unsupported value %s", data)
	}
	b.v = &out
	return nil
}

type saveRelationRequest struct {
	FromKeyspace string   `json:"from_keyspace"`
	FromTable    string   `json:"from_table"`
	FromColumn   string   `json:"from_column"`
	ToKeyspace   string   `json:"to_keyspace"`
	ToTable      string   `json:"to_table"`
	ToColumn     string   `json:"to_column"`
	IsPublished  flexBool `json:"is_published"`
}

// SaveRelation handles POST /api/save_relation.
func (h *APIHandler) SaveRelation(w http.ResponseWriter, r *http.Request) {
	var req saveRelationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	_, err := h.relations.Save(r.Context(), domain.CreateRelationRequest{
		FromKeyspace: req.FromKeyspace,
		FromTable:    req.FromTable,
		FromColumn:   req.FromColumn,
		ToKeyspace:   req.ToKeyspace,
		ToTable:      req.ToTable,
		ToColumn:     req.ToColumn,
		IsPublished:  req.IsPublished.v,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, messageResponse{Message: "Relation saved successfully"})
}

// GetRelations handles GET /api/get_relations?from_keyspace=&from_table=.
func (h *APIHandler) GetRelations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rels, err := h.relations.ListFrom(r.Context(), q.Get("from_keyspace"), q.Get("from_table"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rels)
}

type auditLogResponse struct {
	Data          []domain.AuditEntry `json:"data"`
	NextPageToken string              `json:"next_page_token,omitempty"`
	Total         int64               `json:"total"`
}

// ListAuditLog handles GET /api/audit_log.
func (h *APIHandler) ListAuditLog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.AuditFilter{
		Keyspace: optionalParam(q.Get("keyspace_name")),
		Table:    optionalParam(q.Get("table_name")),
		Actor:    optionalParam(q.Get("actor")),
		Page:     domain.PageRequest{PageToken: q.Get("page_token")},
	}
	if v := q.Get("max_results"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			h.writeError(w, r, domain.ErrValidation("max_results must be an integer"))
			return
		}
		filter.Page.MaxResults = n
	}

	entries, total, err := h.audit.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, auditLogResponse{
		Data:          nonNil(entries),
		NextPageToken: domain.NextPageToken(filter.Page.Offset(), filter.Page.Limit(), total),
		Total:         total,
	})
}

func optionalParam(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
