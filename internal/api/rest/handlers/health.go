package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/CameronXie/nsa-protrack/internal/api/rest/response"
	"github.com/CameronXie/nsa-protrack/internal/version"
)

const healthCheckTimeout = 2 * time.Second

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Health handles GET /health. A nil pinger only reports liveness.
func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			defer cancel()

			if err := db.Ping(ctx); err != nil {
				response.JSONResponse(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Version: version.Version})
				return
			}
		}

		response.JSONResponse(w, http.StatusOK, HealthResponse{Status: "ok", Version: version.Version})
	}
}
