package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/rcapi/internal/api"
	"github.com/MrSnakeDoc/rcapi/internal/domain"
	"github.com/MrSnakeDoc/rcapi/internal/httpserver/deps"
	"github.com/MrSnakeDoc/rcapi/internal/service"
)

// maxBodyBytes caps create and patch bodies.
const maxBodyBytes = 1 << 20

// baseURL is the host part of every generated link.
func baseURL(d deps.Deps, r *http.Request) string {
	if d.PublicURL != "" {
		return d.PublicURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if d.TrustProxy {
		if p := r.Header.Get("X-Forwarded-Proto"); p == "http" || p == "https" {
			scheme = p
		}
	}
	return scheme + "://" + r.Host
}

func listParams(r *http.Request) (service.ListParams, error) {
	q := r.URL.Query()
	p := service.ListParams{
		Marker:  q.Get("marker"),
		SortKey: q.Get("sort_key"),
		SortDir: q.Get("sort_dir"),
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return p, domain.Invalidf("limit must be an integer, got %q", raw)
		}
		p.Limit = &n
	}
	return p, nil
}

// readBody reads a size-capped JSON body into v, keeping numbers exact.
func readBody(w http.ResponseWriter, r *http.Request, v any) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.Invalidf("request body exceeds %d bytes", tooLarge.Limit)
		}
		return &domain.ValidationError{Msg: "failed to read request body", Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return domain.Invalidf("request body is empty")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return &domain.ValidationError{Msg: "malformed JSON body", Err: err}
	}
	if dec.More() {
		return domain.Invalidf("request body holds more than one JSON value")
	}
	return nil
}

// ListRCs serves the collapsed collection.
func ListRCs(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := listParams(r)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		c, err := d.Service.List(r.Context(), scopeOf(r), p, baseURL(d, r))
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

// DetailRCs serves the expanded collection.
func DetailRCs(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := listParams(r)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		c, err := d.Service.Detail(r.Context(), scopeOf(r), p, baseURL(d, r))
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func GetRC(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc, err := d.Service.Get(r.Context(), scopeOf(r), chi.URLParam(r, "rc_uuid"), baseURL(d, r))
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rc)
	}
}

// CreateRC answers 201 with a Location header pointing at the new
// controller.
func CreateRC(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope := scopeOf(r)
		if scope.Nested {
			// rejected before the body is read
			writeError(d, w, r, &domain.OperationNotPermittedError{Op: "create"})
			return
		}

		var body map[string]any
		if err := readBody(w, r, &body); err != nil {
			writeError(d, w, r, err)
			return
		}
		if body == nil {
			writeError(d, w, r, domain.Invalidf("request body must be a JSON object"))
			return
		}

		base := baseURL(d, r)
		rc, err := d.Service.Create(r.Context(), scope, body, base)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		w.Header().Set("Location", api.BuildURL(api.ResourceRCs, rc.UUID.OrZero(), false, base))
		writeJSON(w, http.StatusCreated, rc)
	}
}

// PatchRC applies an RFC 6902 document.
func PatchRC(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope := scopeOf(r)
		if scope.Nested {
			writeError(d, w, r, &domain.OperationNotPermittedError{Op: "patch"})
			return
		}

		var ops []api.PatchOp
		if err := readBody(w, r, &ops); err != nil {
			writeError(d, w, r, err)
			return
		}

		rc, err := d.Service.Patch(r.Context(), scope, chi.URLParam(r, "rc_uuid"), ops, baseURL(d, r))
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rc)
	}
}

func DeleteRC(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Service.Delete(r.Context(), scopeOf(r), chi.URLParam(r, "rc_uuid")); err != nil {
			writeError(d, w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
