// Package docs serves the OpenAPI description of the course and admin API.
package docs

import (
	"context"
	_ "embed"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed openapi.yaml
var specYAML []byte

const (
	specPath     = "/api/docs/openapi.yaml"
	defaultTitle = "Lightgray"
)

// referenceCSP replaces the site policy on the reference page only: the renderer is
// loaded from jsDelivr and injects inline styles.
const referenceCSP = "default-src 'self'; " +
	"script-src 'self' https://cdn.jsdelivr.net 'unsafe-inline'; " +
	"style-src 'self' https://cdn.jsdelivr.net 'unsafe-inline'; " +
	"font-src 'self' https://cdn.jsdelivr.net data:; " +
	"img-src 'self' data:; connect-src 'self'; frame-ancestors 'self';"

var referencePage = template.Must(template.New("reference").Parse(`<!DOCTYPE html>
<html lang="en"><head>
  <title>{{.Title}} API Reference</title>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <meta name="robots" content="noindex">
</head><body>
  <noscript>
    <p>The interactive reference needs JavaScript. The raw description is at
    <a href="{{.SpecPath}}">{{.SpecPath}}</a>.</p>
  </noscript>
  <script id="api-reference" data-url="{{.SpecPath}}"></script>
  <script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
</body></html>`))

// HandleSpec serves the OpenAPI document.
func HandleSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(specYAML)
}

// Reference is the interactive API reference page. SiteTitle, when set, names the
// page after the site's configured web title.
type Reference struct {
	SiteTitle func(ctx context.Context) string
}

func (p Reference) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	title := defaultTitle
	if p.SiteTitle != nil {
		if t := p.SiteTitle(r.Context()); t != "" {
			title = t
		}
	}

	w.Header().Set("Content-Security-Policy", referenceCSP)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := referencePage.Execute(w, struct{ Title, SpecPath string }{title, specPath})
	if err != nil {
		slog.Error("docs: render reference page", "error", err)
	}
}
