package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		trustProxy bool
		want       string
	}{
		{name: "remote addr", want: "192.0.2.1"},
		{name: "headers ignored without trust", headers: map[string]string{"X-Forwarded-For": "198.51.100.7"}, want: "192.0.2.1"},
		{name: "forwarded for", headers: map[string]string{"X-Forwarded-For": " 198.51.100.7 , 10.0.0.1"}, trustProxy: true, want: "198.51.100.7"},
		{name: "cloudflare first", headers: map[string]string{"CF-Connecting-IP": "203.0.113.5", "X-Forwarded-For": "198.51.100.7"}, trustProxy: true, want: "203.0.113.5"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "203.0.113.6"}, trustProxy: true, want: "203.0.113.6"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = "192.0.2.1:4242"
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r, tt.trustProxy); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIPMatcher(t *testing.T) {
	m := NewIPMatcher([]string{"10.0.0.0/8", " 192.168.1.5 ", "garbage", "", "2001:db8::/32"})
	if m.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", m.Len())
	}
	for ip, want := range map[string]bool{
		"10.20.30.40":       true,
		"192.168.1.5":       true,
		"::ffff:192.168.1.5": true,
		"192.168.1.6":       false,
		"2001:db8::1":       true,
		"not-an-ip":         false,
	} {
		if got := m.Allow(ip); got != want {
			t.Errorf("Allow(%q) = %v, want %v", ip, got, want)
		}
	}
	if !NewIPMatcher(nil).IsEmpty() {
		t.Error("empty matcher reports rules")
	}
}
