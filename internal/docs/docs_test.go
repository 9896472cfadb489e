package docs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandleSpec(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, specPath, nil)
	rec := httptest.NewRecorder()

	HandleSpec(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/yaml" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/yaml")
	}
	if !strings.HasPrefix(rec.Body.String(), "openapi:") {
		t.Error("body should start with 'openapi:'")
	}
}

func TestReference(t *testing.T) {
	tests := []struct {
		name      string
		page      Reference
		wantTitle string
	}{
		{"default title", Reference{}, "<title>Lightgray API Reference</title>"},
		{"blank site title", Reference{SiteTitle: func(context.Context) string { return "" }}, "<title>Lightgray API Reference</title>"},
		{"site title", Reference{SiteTitle: func(context.Context) string { return "Go Courses" }}, "<title>Go Courses API Reference</title>"},
		{"escaped", Reference{SiteTitle: func(context.Context) string { return "<b>Go</b>" }}, "<title>&lt;b&gt;Go&lt;/b&gt; API Reference</title>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.page.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/docs", nil))

			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
				t.Errorf("Content-Type = %q, want text/html", ct)
			}
			body := rec.Body.String()
			if !strings.Contains(body, tt.wantTitle) {
				t.Errorf("body missing %q:\n%s", tt.wantTitle, body)
			}
			if !strings.Contains(body, `data-url="`+specPath+`"`) {
				t.Errorf("body should point the reference at %s", specPath)
			}
			if !strings.Contains(body, `<a href="`+specPath+`">`) {
				t.Error("body should link the raw document for readers without JavaScript")
			}
			if csp := rec.Header().Get("Content-Security-Policy"); csp != referenceCSP {
				t.Errorf("CSP = %q, want the reference page policy", csp)
			}
		})
	}
}

func TestSpecContainsAllEndpoints(t *testing.T) {
	doc := string(specYAML)

	endpoints := []string{
		"/api/health",
		"/api/courses:",
		"/api/courses/{course}/transcript:",
		"/api/courses/{course}/transcript/at:",
		"/api/auth/login",
		"/api/auth/refresh",
		"/api/auth/logout",
		"/api/admin/users:",
		"/api/admin/users/{id}",
		"/api/admin/settings",
		"/api/admin/limits",
		"/api/admin/catalog",
	}

	for _, ep := range endpoints {
		if !strings.Contains(doc, ep) {
			t.Errorf("openapi.yaml missing endpoint: %s", ep)
		}
	}
}
