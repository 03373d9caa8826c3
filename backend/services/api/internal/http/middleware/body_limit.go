package middleware

import (
	"net/http"

	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/http/response"
)

// BodyLimit caps request bodies at limit bytes. Declared oversize bodies are rejected up front;
// the rest are wrapped so decoding fails once the cap is crossed.
func BodyLimit(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit <= 0 || r.Body == nil {
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength > limit {
				response.Error(w, http.StatusRequestEntityTooLarge, response.CodePayloadTooLarge, "Request body too large")
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
