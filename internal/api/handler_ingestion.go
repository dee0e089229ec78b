package api

import (
	"errors"
	"net/http"

	"nosql-catalog/internal/domain"
)

type uploadResponse struct {
	Message string                `json:"message"`
	Summary *domain.ImportSummary `json:"summary"`
}

// UploadFile handles POST /api/upload-file. The multipart field "file" is
// archived and reconciled against the catalog on behalf of the caller.
func (h *APIHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
				Error: "upload exceeds the size limit",
				Code:  http.StatusRequestEntityTooLarge,
			})
			return
		}
		h.writeError(w, r, domain.ErrValidation("No file part in the request"))
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, r, domain.ErrValidation("No file part in the request"))
		return
	}
	defer file.Close() //nolint:errcheck

	actor := "anonymous"
	if p, ok := domain.PrincipalFromContext(r.Context()); ok && p.Name != "" {
		actor = p.Name
	}

	summary, err := h.ingestion.ImportUpload(r.Context(), actor, header.Filename, file)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{
		Message: "File processed and database updated successfully",
		Summary: summary,
	})
}
