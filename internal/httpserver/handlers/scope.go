package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/rcapi/internal/service"
)

type scopeKey struct{}

// NestedUnderRC marks requests routed through /v1/rcs/{rc_uuid}/rcs.
func NestedUnderRC(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope := service.Scope{Nested: true, ParentRC: chi.URLParam(r, "rc_uuid")}
		ctx := context.WithValue(r.Context(), scopeKey{}, scope)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// NestedUnderBay marks requests routed through /v1/bays/{bay_uuid}/rcs.
// Listings there only show that bay's controllers.
func NestedUnderBay(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope := service.Scope{Nested: true, BayUUID: chi.URLParam(r, "bay_uuid")}
		ctx := context.WithValue(r.Context(), scopeKey{}, scope)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func scopeOf(r *http.Request) service.Scope {
	s, _ := r.Context().Value(scopeKey{}).(service.Scope)
	return s
}
