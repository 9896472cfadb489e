package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/lightgray/lightgray/internal/httputil"
)

// Origins the embedded YouTube player loads from.
const (
	youtubeScripts = "https://www.youtube.com https://s.ytimg.com"
	youtubeFrames  = "https://www.youtube.com https://www.youtube-nocookie.com"
)

type SecurityConfig struct {
	BaseURL         string
	StorageEndpoint string
}

func securityHeaders(cfg SecurityConfig) func(http.Handler) http.Handler {
	strictTransport := strings.HasPrefix(cfg.BaseURL, "https://")

	storageSuffix := ""
	if cfg.StorageEndpoint != "" {
		storageSuffix = " " + cfg.StorageEndpoint
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nonce := httputil.GenerateNonce()
			ctx := httputil.ContextWithNonce(r.Context(), nonce)

			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "SAMEORIGIN")
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=(), display-capture=()")

			csp := fmt.Sprintf(
				"default-src 'self'; img-src 'self' data: https:%s; script-src 'self' 'nonce-%s' %s; style-src 'self' 'nonce-%s'; frame-src %s; connect-src 'self'%s; frame-ancestors 'self';",
				storageSuffix, nonce, youtubeScripts, nonce, youtubeFrames, storageSuffix,
			)
			w.Header().Set("Content-Security-Policy", csp)

			if strictTransport {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
