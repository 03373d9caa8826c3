package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/http/middleware"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/http/response"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/service"
)

// decodeJSON reads a JSON body into dst and writes the error envelope itself on failure.
// An empty body decodes to the zero value.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(w, http.StatusRequestEntityTooLarge, response.CodePayloadTooLarge, "Request body too large")
		return false
	}
	response.Error(w, http.StatusBadRequest, response.CodeInvalidInput, "Invalid JSON body")
	return false
}

// requireClaims returns the caller's claims or answers 401.
func requireClaims(w http.ResponseWriter, r *http.Request) (*service.Claims, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, response.CodeUnauthorized, "Login required")
		return nil, false
	}
	return claims, true
}
