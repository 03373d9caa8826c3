package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/http/response"
)

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewHealthHandler returns GET /health handler. The process is live even when the database is down.
func NewHealthHandler(db Pinger, environment string, started time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		database := "up"
		if db == nil {
			database = "unknown"
		} else {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				database = "down"
			}
		}
		now := time.Now()
		response.Success(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"timestamp":   now.UTC().Format(time.RFC3339),
			"uptime":      now.Sub(started).Seconds(),
			"environment": environment,
			"database":    database,
		})
	}
}
