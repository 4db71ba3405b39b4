package mw

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MrSnakeDoc/rcapi/internal/api"
	"github.com/MrSnakeDoc/rcapi/internal/logger"
)

var noContent = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func TestRateLimit(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	h := rateLimit(RateLimitConfig{Burst: 2, RefillPerIPPerMin: 60}, func() time.Time { return now })(noContent)

	do := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/rcs", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := do("10.0.0.1:1000"); rec.Code != http.StatusNoContent {
			t.Fatalf("request %d: status = %d", i, rec.Code)
		}
	}

	rec := do("10.0.0.1:1000")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "1" {
		t.Errorf("Retry-After = %q, want 1", got)
	}
	var f api.Fault
	if err := json.NewDecoder(rec.Body).Decode(&f); err != nil || f.ErrorMessage.Code != http.StatusTooManyRequests {
		t.Errorf("fault body = %+v, %v", f, err)
	}

	if rec := do("10.0.0.2:1000"); rec.Code != http.StatusNoContent {
		t.Errorf("other client throttled: %d", rec.Code)
	}

	now = now.Add(time.Second)
	if rec := do("10.0.0.1:1000"); rec.Code != http.StatusNoContent {
		t.Errorf("after refill: status = %d", rec.Code)
	}
}

func TestAllowOnlyCIDRS(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		remote  string
		want    int
	}{
		{name: "empty list passes", allowed: nil, remote: "203.0.113.9:1", want: http.StatusNoContent},
		{name: "inside network", allowed: []string{"10.0.0.0/8"}, remote: "10.1.2.3:1", want: http.StatusNoContent},
		{name: "exact ip", allowed: []string{"192.168.1.5"}, remote: "192.168.1.5:1", want: http.StatusNoContent},
		{name: "outside", allowed: []string{"10.0.0.0/8"}, remote: "203.0.113.9:1", want: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := AllowOnlyCIDRS(tt.allowed, false, logger.NewNop())(noContent)
			req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
			req.RemoteAddr = tt.remote
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestMatchHost(t *testing.T) {
	tests := []struct {
		host, pattern string
		want          bool
	}{
		{"api.example.com", "api.example.com", true},
		{"API.example.com", "api.example.com", true},
		{"a.example.com", "*.example.com", true},
		{"example.com", "*.example.com", false},
		{"evil-example.com", "*.example.com", false},
		{"other.org", "api.example.com", false},
	}
	for _, tt := range tests {
		if got := matchHost(tt.host, tt.pattern); got != tt.want {
			t.Errorf("matchHost(%q, %q) = %v, want %v", tt.host, tt.pattern, got, tt.want)
		}
	}
}

func TestEnforceHostIgnoresPort(t *testing.T) {
	h := EnforceHost([]string{"rc.example.com"}, logger.NewNop())(noContent)
	req := httptest.NewRequest(http.MethodPost, "/reload", nil)
	req.Host = "rc.example.com:9511"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d", rec.Code)
	}
}
