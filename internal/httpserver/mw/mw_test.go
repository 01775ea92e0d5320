package mw

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/MrSnakeDoc/hop/internal/logger"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestMatchHost(t *testing.T) {
	tests := []struct {
		host    string
		pattern string
		want    bool
	}{
		{"hop.example.com", "hop.example.com", true},
		{"hop.example.com", "*.example.com", true},
		{"example.com", "*.example.com", false},
		{"hop.example.org", "*.example.com", false},
		{"other.example.com", "hop.example.com", false},
		{"hop.example.com:8080", "hop.example.com", true},
		{"hop.example.com:8080", "hop.example.com:9090", false},
		{"hop.example.com:8080", "hop.example.com:8080", true},
		{"a.example.com:443", "*.example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.host+"~"+tt.pattern, func(t *testing.T) {
			if got := matchHost(tt.host, tt.pattern); got != tt.want {
				t.Errorf("matchHost(%q, %q) = %v, want %v", tt.host, tt.pattern, got, tt.want)
			}
		})
	}
}

func TestEnforceHost(t *testing.T) {
	h := EnforceHost([]string{" HOP.example.com ", "*.lan"}, logger.NewNop())(ok)

	tests := []struct {
		host string
		want int
	}{
		{"hop.example.com", http.StatusOK},
		{"Hop.Example.com:8443", http.StatusOK},
		{"nas.lan", http.StatusOK},
		{"evil.com", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Host = tt.host
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(RateLimitConfig{Burst: 2, RefillPerIPPerMin: 1})(ok)

	do := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/go?q=x", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := do("10.0.0.1:1000"); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want %d", i+1, rec.Code, http.StatusOK)
		}
	}

	rec := do("10.0.0.1:1001")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("over-burst status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	retry, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	if err != nil || retry < 1 || retry > 60 {
		t.Errorf("Retry-After = %q, want 1..60 seconds", rec.Header().Get("Retry-After"))
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Errorf("X-RateLimit-Remaining = %q, want 0", got)
	}

	// Limits are per client IP
	if rec := do("10.0.0.2:1000"); rec.Code != http.StatusOK {
		t.Errorf("other client status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRateLimit_TrustProxy(t *testing.T) {
	h := RateLimit(RateLimitConfig{Burst: 1, RefillPerIPPerMin: 1, TrustProxy: true})(ok)

	do := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodGet, "/go", nil)
		req.RemoteAddr = "127.0.0.1:9000"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := do("203.0.113.1"); got != http.StatusOK {
		t.Errorf("first client = %d, want %d", got, http.StatusOK)
	}
	if got := do("203.0.113.2"); got != http.StatusOK {
		t.Errorf("second client behind the same proxy = %d, want %d", got, http.StatusOK)
	}
	if got := do("203.0.113.1"); got != http.StatusTooManyRequests {
		t.Errorf("first client again = %d, want %d", got, http.StatusTooManyRequests)
	}
}

func TestAllowOnlyCIDRS(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		remote  string
		want    int
	}{
		{"empty list passes", nil, "192.168.1.1:80", http.StatusOK},
		{"inside cidr", []string{"192.168.0.0/16"}, "192.168.1.1:80", http.StatusOK},
		{"exact ip", []string{"10.0.0.5"}, "10.0.0.5:80", http.StatusOK},
		{"outside", []string{"10.0.0.0/8"}, "192.168.1.1:80", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := AllowOnlyCIDRS(tt.allowed, false, logger.NewNop())(ok)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
