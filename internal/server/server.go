package server

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lightgray/lightgray/internal/auth"
	"github.com/lightgray/lightgray/internal/database"
	"github.com/lightgray/lightgray/internal/docs"
	"github.com/lightgray/lightgray/internal/httputil"
	"github.com/lightgray/lightgray/internal/ratelimit"
	"github.com/lightgray/lightgray/internal/settings"
	"github.com/lightgray/lightgray/internal/validate"
	"github.com/lightgray/lightgray/internal/viewer"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	DB     database.DBTX
	Pinger Pinger
	// Viewer serves the public pages; nil disables them.
	Viewer   *viewer.Handler
	Settings *settings.Store
	StaticFS fs.FS
	// Content serves the local content directory under /content/.
	Content         http.Handler
	JWTSecret       string
	BaseURL         string
	StorageEndpoint string
	EnableDocs      bool
}

type Server struct {
	router          chi.Router
	pinger          Pinger
	authHandler     *auth.Handler
	settingsHandler *settings.Handler
	settingsStore   *settings.Store
	viewer          *viewer.Handler
	staticFS        fs.FS
	content         http.Handler
	authLimiter     *ratelimit.Limiter
	enableDocs      bool
}

// New builds the router. The admin API is mounted only when a database is configured,
// and then requires a JWT secret. ctx bounds background work such as rate limiter sweeps.
func New(ctx context.Context, cfg Config) (*Server, error) {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(slogMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders(SecurityConfig{
		BaseURL:         cfg.BaseURL,
		StorageEndpoint: cfg.StorageEndpoint,
	}))

	s := &Server{
		router:     r,
		pinger:     cfg.Pinger,
		viewer:     cfg.Viewer,
		staticFS:   cfg.StaticFS,
		content:    cfg.Content,
		enableDocs: cfg.EnableDocs,
	}

	if cfg.DB != nil {
		if cfg.JWTSecret == "" {
			return nil, errors.New("JWT secret is required when a database is configured")
		}
		secureCookies := strings.HasPrefix(cfg.BaseURL, "https://")
		s.authHandler = auth.NewHandler(cfg.DB, cfg.JWTSecret, secureCookies)

		store := cfg.Settings
		if store == nil {
			store = settings.NewStore(cfg.DB)
		}
		s.settingsStore = store
		s.settingsHandler = settings.NewHandler(store)
		s.authLimiter = ratelimit.New(ctx, 0.5, 5)
	}

	s.routes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)

	if s.enableDocs {
		s.router.Method(http.MethodGet, "/api/docs", s.docsPage())
		s.router.Get("/api/docs/openapi.yaml", docs.HandleSpec)
	}

	if s.authHandler != nil {
		s.router.Route("/api/auth", func(r chi.Router) {
			r.Use(s.authLimiter.Middleware)
			r.Post("/login", s.authHandler.Login)
			r.Post("/refresh", s.authHandler.Refresh)
			r.Post("/logout", s.authHandler.Logout)
		})

		s.router.Route("/api/admin", func(r chi.Router) {
			r.Use(s.authHandler.Middleware)
			r.Get("/users", s.authHandler.ListUsers)
			r.Post("/users", s.authHandler.CreateUser)
			r.Delete("/users/{id}", s.authHandler.DeleteUser)
			r.Get("/settings", s.settingsHandler.Get)
			r.Put("/settings", s.settingsHandler.Update)
			r.Get("/limits", handleLimits)
			if s.viewer != nil {
				r.Get("/catalog", s.viewer.CatalogOverview)
			}
		})
	}

	if s.viewer != nil {
		s.router.Get("/", s.viewer.Home)
		s.router.Get("/index.php", s.viewer.Legacy)
		s.router.Get("/courses/{course}", s.viewer.Course)
		s.router.Route("/api/courses", func(r chi.Router) {
			r.Get("/", s.viewer.ListCourses)
			r.Get("/{course}/transcript", s.viewer.Transcript)
			r.Get("/{course}/transcript/at", s.viewer.TranscriptAt)
		})
		s.router.NotFound(s.viewer.NotFound)
	}

	if s.staticFS != nil {
		s.router.Handle("/static/*", http.StripPrefix("/static", newStaticFileServer(s.staticFS)))
	}

	if s.content != nil {
		s.router.Handle("/content/*", http.StripPrefix("/content", s.content))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  "database unreachable",
			})
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) docsPage() docs.Reference {
	if s.settingsStore == nil {
		return docs.Reference{}
	}
	store := s.settingsStore
	return docs.Reference{SiteTitle: func(ctx context.Context) string {
		return store.Current(ctx).WebTitle
	}}
}

func handleLimits(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, validate.FieldLimits())
}
