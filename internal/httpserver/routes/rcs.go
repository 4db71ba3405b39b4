package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/rcapi/internal/httpserver/deps"
	"github.com/MrSnakeDoc/rcapi/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/rcapi/internal/httpserver/mw"
)

func init() { Register(registerRCs) }

func registerRCs(r chi.Router, d deps.Deps) {
	limit := rateLimiter(d)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/rcs", func(r chi.Router) {
			mountRCs(r, d, limit)
			r.With(handlers.NestedUnderRC).Route("/{rc_uuid}/rcs", func(r chi.Router) {
				mountRCs(r, d, limit)
			})
		})
		r.With(handlers.NestedUnderBay).Route("/bays/{bay_uuid}/rcs", func(r chi.Router) {
			mountRCs(r, d, limit)
		})
	})

	// bookmark links are unversioned and read-only
	r.Get("/rcs/{rc_uuid}", handlers.GetRC(d))
}

func mountRCs(r chi.Router, d deps.Deps, limit Middleware) {
	r.Get("/", handlers.ListRCs(d))
	r.Get("/detail", handlers.DetailRCs(d))
	r.Get("/{rc_uuid}", handlers.GetRC(d))
	r.With(limit).Post("/", handlers.CreateRC(d))
	r.With(limit).Patch("/{rc_uuid}", handlers.PatchRC(d))
	r.With(limit).Delete("/{rc_uuid}", handlers.DeleteRC(d))
}

// rateLimiter throttles mutating requests per client IP. A zero burst
// disables it.
func rateLimiter(d deps.Deps) Middleware {
	if d.RateBurst <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.RateBurst,
		RefillPerIPPerMin: d.RateRefill,
		MaxEntries:        10000,
		TrustProxy:        d.TrustProxy,
	})
}
