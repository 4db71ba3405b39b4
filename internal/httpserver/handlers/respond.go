package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/rcapi/internal/domain"
	"github.com/MrSnakeDoc/rcapi/internal/httpserver/deps"
	"github.com/MrSnakeDoc/rcapi/internal/httpserver/mw"
	"github.com/MrSnakeDoc/rcapi/internal/logger"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError turns err into a fault. Client faults carry the error text;
// server faults are logged and answered with the bare status text.
func writeError(d deps.Deps, w http.ResponseWriter, r *http.Request, err error) {
	code := domain.HTTPStatus(err)
	msg := err.Error()
	if code >= http.StatusInternalServerError {
		d.Logger.Error("request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Error(err))
		msg = http.StatusText(code)
	}
	mw.WriteFault(w, code, msg)
}
