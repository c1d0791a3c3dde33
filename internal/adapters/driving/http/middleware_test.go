package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/custodia-labs/ingest-core/internal/adapters/driven/auth"
	"github.com/custodia-labs/ingest-core/internal/core/domain"
)

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{
			name:     "valid bearer token",
			header:   "Bearer abc123",
			expected: "abc123",
		},
		{
			name:     "bearer with extra spaces",
			header:   "Bearer   token-with-spaces   ",
			expected: "token-with-spaces",
		},
		{
			name:     "lowercase bearer",
			header:   "bearer token123",
			expected: "token123",
		},
		{
			name:     "empty header",
			header:   "",
			expected: "",
		},
		{
			name:     "no bearer prefix",
			header:   "token123",
			expected: "",
		},
		{
			name:     "basic auth",
			header:   "Basic dXNlcjpwYXNz",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			result := extractBearerToken(req)
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestGetAuthContext(t *testing.T) {
	if GetAuthContext(context.Background()) != nil {
		t.Error("expected nil for context without auth")
	}

	authCtx := &domain.AuthContext{UserID: "user-1", Role: domain.RoleMember}
	ctx := context.WithValue(context.Background(), authContextKey, authCtx)
	if got := GetAuthContext(ctx); got == nil || got.UserID != "user-1" {
		t.Errorf("expected auth context to round-trip, got %+v", got)
	}
}

func TestAuthenticate(t *testing.T) {
	adapter := auth.NewAdapter(testSecret)
	m := NewAuthMiddleware(adapter)

	expired, _ := adapter.GenerateToken(&domain.TokenClaims{
		UserID:    "user-1",
		Role:      domain.RoleAdmin,
		IssuedAt:  time.Now().Add(-2 * time.Hour).Unix(),
		ExpiresAt: time.Now().Add(-time.Hour).Unix(),
	})

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"garbage token", "garbage", http.StatusUnauthorized},
		{"expired token", expired, http.StatusUnauthorized},
		{"valid token", tokenFor(t, domain.RoleMember, "proj-1"), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *domain.AuthContext
			handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetAuthContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("GET", "/", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rr.Code)
			}
			if tt.status == http.StatusOK && (seen == nil || seen.UserID != "user-1") {
				t.Errorf("expected auth context in request, got %+v", seen)
			}
		})
	}
}

func TestRequireProject(t *testing.T) {
	tests := []struct {
		name    string
		role    domain.Role
		allowed []string
		write   bool
		status  int
	}{
		{"member of project reads", domain.RoleMember, []string{"proj-1"}, false, http.StatusOK},
		{"member of project writes", domain.RoleMember, []string{"proj-1"}, true, http.StatusOK},
		{"member of other project", domain.RoleMember, []string{"proj-2"}, false, http.StatusForbidden},
		{"viewer reads", domain.RoleViewer, []string{"proj-1"}, false, http.StatusOK},
		{"viewer writes", domain.RoleViewer, []string{"proj-1"}, true, http.StatusForbidden},
		{"admin without listing", domain.RoleAdmin, nil, true, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewAuthMiddleware(auth.NewAdapter(testSecret))
			mux := http.NewServeMux()
			mux.Handle("GET /projects/{project}", m.Authenticate(m.RequireProject(tt.write)(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusOK)
				}))))

			req := httptest.NewRequest("GET", "/projects/proj-1", nil)
			req.Header.Set("Authorization", "Bearer "+tokenFor(t, tt.role, tt.allowed...))
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, req)

			if rr.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rr.Code)
			}
		})
	}
}

func TestRequireProject_NoAuthContext(t *testing.T) {
	m := NewAuthMiddleware(auth.NewAdapter(testSecret))
	handler := m.RequireProject(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}

func TestServer_ProjectScoping(t *testing.T) {
	ts := newTestServer()
	ts.suggestions.listFn = func(ctx context.Context, projectID string, filter domain.StatusFilter) ([]*domain.SuggestionItem, error) {
		t.Error("service should not be reached for a foreign project")
		return nil, nil
	}

	rr := ts.do(t, "GET", "/api/v1/projects/proj-9/suggestions", tokenFor(t, domain.RoleMember, "proj-1"), nil)

	if rr.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", rr.Code)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	m := NewRecoveryMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil)))
	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rr.Code)
	}
}

func TestLoggingMiddleware_CapturesStatus(t *testing.T) {
	m := NewLoggingMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil)))
	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Code != http.StatusTeapot {
		t.Errorf("expected status 418, got %d", rr.Code)
	}
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name         string
		allowed      []string
		origin       string
		method       string
		expectHeader bool
		expectedCode int
	}{
		{"wildcard", []string{"*"}, "https://app.example.com", "GET", true, http.StatusOK},
		{"listed origin", []string{"https://app.example.com"}, "https://app.example.com", "GET", true, http.StatusOK},
		{"unlisted origin", []string{"https://app.example.com"}, "https://evil.example.com", "GET", false, http.StatusOK},
		{"preflight", []string{"*"}, "https://app.example.com", "OPTIONS", true, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewCORSMiddleware(tt.allowed).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(tt.method, "/", nil)
			req.Header.Set("Origin", tt.origin)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedCode {
				t.Errorf("expected status %d, got %d", tt.expectedCode, rr.Code)
			}
			got := rr.Header().Get("Access-Control-Allow-Origin") != ""
			if got != tt.expectHeader {
				t.Errorf("expected CORS header present=%v, got %v", tt.expectHeader, got)
			}
		})
	}
}
