package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/rcapi/internal/httpserver/deps"
)

type (
	// Registrar mounts one group of rcapi routes (rcs, probes, reload).
	Registrar func(r chi.Router, d deps.Deps)
	// Middleware wraps every route a Registrar mounts.
	Middleware = func(http.Handler) http.Handler
)

type group struct {
	mount Registrar
	mws []Middleware
}

// registry is filled by init() in each route file, before main runs.
var registry []group

// Register a registrar with optional middlewares applied to all of its routes.
func Register(reg Registrar, mws ...Middleware) {
	registry = append(registry, group{mount: reg, mws: mws})
}

// RegisterAll mounts every registered group on r in registration order.
// NewRouter calls it once per router, tests included.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, e := range registry {
		target := r
		if len(e.mws) > 0 {
			target = r.With(e.mws...)
		}
		e.mount(target, d)
	}
}
