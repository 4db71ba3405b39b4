package mw

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/rcapi/internal/api"
)

// WriteFault writes an error_message document with the given status.
func WriteFault(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(api.NewFault(code, msg))
}
