package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/rcapi/internal/httpserver/deps"
	"github.com/MrSnakeDoc/rcapi/internal/logger"
)

const readyzPingTimeout = 2 * time.Second

type readyzResponse struct {
	Ready         bool       `json:"ready"`
	Store         string     `json:"store"`
	LastBayReload *time.Time `json:"last_bay_reload,omitempty"`
}

// Readyz is ready once the store answers a ping and the bay inventory
// has been loaded at least once.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := readyzResponse{Ready: true, Store: "ok"}

		if d.Store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readyzPingTimeout)
			err := d.Store.Ping(ctx)
			cancel()
			if err != nil {
				d.Logger.Warn("readiness ping failed", logger.Error(err))
				resp.Ready = false
				resp.Store = "unreachable"
			}
		}

		if d.LastBayReload != nil {
			if at := d.LastBayReload(); at.IsZero() {
				resp.Ready = false
			} else {
				resp.LastBayReload = &at
			}
		}

		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, status, resp)
	}
}
