package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	s := &Server{apiKey: "secret"}
	handler := s.authMiddleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/distribution/latest", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	s := &Server{apiKey: "secret"}
	handler := s.authMiddleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/sales/days", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	s := &Server{apiKey: "secret"}
	handler := s.authMiddleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/sales/days", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_NonBearerScheme(t *testing.T) {
	s := &Server{apiKey: "secret"}
	handler := s.authMiddleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/sales/days", nil)
	req.Header.Set("Authorization", "secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without Bearer prefix, got %d", rec.Code)
	}
}

func TestAuthMiddleware_HealthBypass(t *testing.T) {
	s := &Server{apiKey: "secret"}
	handler := s.authMiddleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("health check should bypass auth, got %d", rec.Code)
	}
}

func TestAuthMiddleware_DisabledWhenNoKey(t *testing.T) {
	s := &Server{apiKey: ""}
	handler := s.authMiddleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/sales/days", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("auth should be disabled without API key, got %d", rec.Code)
	}
}

func TestCORSMiddleware_SetsHeaders(t *testing.T) {
	handler := corsMiddleware(okHandler(), "https://dash.example.com")

	req := httptest.NewRequest(http.MethodGet, "/v1/sales/days", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://dash.example.com" {
		t.Errorf("unexpected allow-origin: %q", got)
	}
}

func TestCORSMiddleware_DefaultsToWildcard(t *testing.T) {
	handler := corsMiddleware(okHandler(), "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard origin, got %q", got)
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	handler := corsMiddleware(next, "*")

	req := httptest.NewRequest(http.MethodOptions, "/v1/sales/days", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for preflight, got %d", rec.Code)
	}
	if called {
		t.Error("preflight should not reach the next handler")
	}
}

func TestValidateDate(t *testing.T) {
	valid := []string{"2021-04-22", "2026-01-01"}
	for _, d := range valid {
		if !validateDate(d) {
			t.Errorf("expected %q to be valid", d)
		}
	}

	invalid := []string{"", "2021-4-22", "22-04-2021", "2021-13-01", "2021-02-30", "yesterday"}
	for _, d := range invalid {
		if validateDate(d) {
			t.Errorf("expected %q to be invalid", d)
		}
	}
}

func TestParseLimit(t *testing.T) {
	cases := []struct {
		query string
		want  int
	}{
		{"", 30},
		{"limit=10", 10},
		{"limit=0", 30},
		{"limit=-5", 30},
		{"limit=abc", 30},
		{"limit=9999", maxQueryLimit},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/v1/distribution/history?"+tc.query, nil)
		if got := parseLimit(req, 30); got != tc.want {
			t.Errorf("query %q: expected %d, got %d", tc.query, tc.want, got)
		}
	}
}
