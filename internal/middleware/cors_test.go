package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func corsHandler(allowedOrigins []string) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return CORS(allowedOrigins)(next)
}

func TestCORSAllowlistedOrigin(t *testing.T) {
	h := corsHandler([]string{"https://shop.example"})

	req := httptest.NewRequest(http.MethodGet, "/api/tryon", nil)
	req.Header.Set("Origin", "https://shop.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("Access-Control-Allow-Credentials = %q, want true for allowlisted origin", got)
	}
	if got := rec.Header().Get("Vary"); got != "Origin" {
		t.Fatalf("Vary = %q", got)
	}
}

func TestCORSUnknownOriginGetsNoHeaders(t *testing.T) {
	h := corsHandler([]string{"https://shop.example"})

	req := httptest.NewRequest(http.MethodGet, "/api/tryon", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("Access-Control-Allow-Origin = %q for origin outside allowlist", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Fatalf("Access-Control-Allow-Credentials = %q for origin outside allowlist", got)
	}
}

func TestCORSEmptyAllowlistReflectsWithoutCredentials(t *testing.T) {
	h := corsHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/tryon", nil)
	req.Header.Set("Origin", "https://anyshop.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://anyshop.example" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}
	// Reflecting an arbitrary origin must never come with credentials.
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Fatalf("Access-Control-Allow-Credentials = %q with open allowlist, want unset", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := corsHandler(nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/tryon", nil)
	req.Header.Set("Origin", "https://anyshop.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET,POST,OPTIONS" {
		t.Fatalf("Access-Control-Allow-Methods = %q", got)
	}
}
