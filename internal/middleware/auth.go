package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"nosql-catalog/internal/domain"
)

// AuthMiddleware requires a valid "Authorization: Bearer <token>" header and
// stores the token subject as the request principal. Requests without a
// valid token get a 401 JSON error.
func AuthMiddleware(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			tokenStr, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || strings.TrimSpace(tokenStr) == "" {
				writeUnauthorized(w, "Missing Authorization Header")
				return
			}

			claims, err := validator.Validate(r.Context(), strings.TrimSpace(tokenStr))
			if err != nil {
				logger.Debug("token rejected",
					"error", err,
					"request_id", RequestIDFromContext(r.Context()),
				)
				writeUnauthorized(w, "invalid or expired token")
				return
			}

			ctx := domain.WithPrincipal(r.Context(), domain.ContextPrincipal{Name: claims.Subject})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusUnauthorized, msg)
}

// writeError writes the JSON error body shared with the API handlers.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": msg,
		"code":  status,
	})
}
