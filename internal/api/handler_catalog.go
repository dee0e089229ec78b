package api

import (
	"net/http"

	"nosql-catalog/internal/domain"
)

// ListKeyspaces handles GET /api/keyspace_names.
func (h *APIHandler) ListKeyspaces(w http.ResponseWriter, r *http.Request) {
	names, err := h.catalog.ListKeyspaces(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(names))
}

// ListTables handles GET /api/table_names?keyspace_name=.
func (h *APIHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	names, err := h.catalog.ListTables(r.Context(), r.URL.Query().Get("keyspace_name"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(names))
}

// GetColumns handles GET /api/get_columns?keyspace_name=&table_name=.
func (h *APIHandler) GetColumns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cols, err := h.catalog.ListColumns(r.Context(), q.Get("keyspace_name"), q.Get("table_name"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cols)
}

type updateColumnTagRequest struct {
	KeyspaceName string `json:"keyspace_name"`
	TableName    string `json:"table_name"`
	ColumnName   string `json:"column_name"`
	Note         string `json:"note"`
	Tag          string `json:"tag"`
}

// UpdateColumnTag handles PUT /api/update_column_tag.
func (h *APIHandler) UpdateColumnTag(w http.ResponseWriter, r *http.Request) {
	var req updateColumnTagRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	key := domain.ColumnKey{Keyspace: req.KeyspaceName, Table: req.TableName, Column: req.ColumnName}
	if err := h.catalog.UpdateColumnAnnotations(r.Context(), key, req.Note, req.Tag); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Record updated successfully"})
}

// GetTableDescription handles GET /api/get_table_description.
func (h *APIHandler) GetTableDescription(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	desc, err := h.catalog.GetTableDescription(r.Context(), q.Get("keyspace_name"), q.Get("table_name"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, desc)
}

// UpdateTableDescription handles PUT /api/update_table_description.
func (h *APIHandler) UpdateTableDescription(w http.ResponseWriter, r *http.Request) {
	var req domain.TableDescription
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.catalog.UpdateTableDescription(r.Context(), req); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Record updated successfully"})
}

// FilteredData handles GET /api/filtered_data?search=.
func (h *APIHandler) FilteredData(w http.ResponseWriter, r *http.Request) {
	rows, err := h.search.Search(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(rows))
}

// DumpTable handles GET /api/db_data?table_name=.
func (h *APIHandler) DumpTable(w http.ResponseWriter, r *http.Request) {
	dump, err := h.dump.Dump(r.Context(), r.URL.Query().Get("table_name"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dump)
}

// nonNil keeps empty listings encoded as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
