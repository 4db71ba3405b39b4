package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/rcapi/internal/httpserver/deps"
	"github.com/MrSnakeDoc/rcapi/internal/httpserver/mw"
	"github.com/MrSnakeDoc/rcapi/internal/logger"
)

type reloadResponse struct {
	Status string `json:"status"`
}

// Reload asks the bay reloader to reread the inventory now. A reload that
// is already queued answers 429.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.ReloadTrigger == nil {
			mw.WriteFault(w, http.StatusServiceUnavailable, "bay reload is not configured")
			return
		}

		select {
		case d.ReloadTrigger <- struct{}{}:
			d.Logger.Info("manual bay reload triggered",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusAccepted, reloadResponse{Status: "reload triggered"})
		default:
			d.Logger.Warn("bay reload already pending",
				logger.String("remote_ip", r.RemoteAddr))
			mw.WriteFault(w, http.StatusTooManyRequests, "reload already in progress, please wait")
		}
	}
}
