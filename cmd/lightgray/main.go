package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/lightgray/lightgray/internal/auth"
	"github.com/lightgray/lightgray/internal/catalog"
	"github.com/lightgray/lightgray/internal/content"
	"github.com/lightgray/lightgray/internal/database"
	"github.com/lightgray/lightgray/internal/server"
	"github.com/lightgray/lightgray/internal/settings"
	"github.com/lightgray/lightgray/internal/storage"
	"github.com/lightgray/lightgray/internal/transcript"
	"github.com/lightgray/lightgray/internal/viewer"
	"github.com/lightgray/lightgray/web"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(getEnv("LOG_LEVEL", "info"))})))

	port := getEnv("PORT", "8080")

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, databaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(databaseURL); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}
	slog.Info("database migrations applied")

	created, err := auth.EnsureAdmin(ctx, db.Pool, auth.AdminAccount{
		Name:     os.Getenv("ADMIN_NAME"),
		Email:    os.Getenv("ADMIN_EMAIL"),
		Username: os.Getenv("ADMIN_USERNAME"),
		Password: os.Getenv("ADMIN_PASSWORD"),
	})
	if err != nil {
		log.Fatalf("admin bootstrap failed: %v", err)
	}
	if created {
		slog.Info("initial admin account created")
	}

	fetchTimeout := getEnvDuration("TRANSCRIPT_FETCH_TIMEOUT", transcript.DefaultTimeout)
	remote := content.NewHTTP(fetchTimeout)

	var (
		local           content.Source
		linker          content.Linker
		contentHandler  http.Handler
		storageEndpoint string
	)
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		store, err := storage.New(ctx, storage.Config{
			Endpoint:       getEnv("S3_ENDPOINT", "http://localhost:3900"),
			PublicEndpoint: os.Getenv("S3_PUBLIC_ENDPOINT"),
			Bucket:         bucket,
			Prefix:         os.Getenv("S3_PREFIX"),
			AccessKey:      os.Getenv("S3_ACCESS_KEY"),
			SecretKey:      os.Getenv("S3_SECRET_KEY"),
			Region:         getEnv("S3_REGION", "eu-central-1"),
			LinkExpiry:     getEnvDuration("S3_LINK_EXPIRY", time.Hour),
		})
		if err != nil {
			log.Fatalf("storage initialization failed: %v", err)
		}
		if err := store.CheckBucket(ctx); err != nil {
			log.Fatalf("storage bucket check failed: %v", err)
		}
		local, linker = store, store
		storageEndpoint = getEnv("S3_PUBLIC_ENDPOINT", os.Getenv("S3_ENDPOINT"))
		slog.Info("serving content from object storage", "bucket", bucket)
	} else {
		contentDir := getEnv("CONTENT_DIR", "content")
		dir := content.NewDir(contentDir)
		local, linker, contentHandler = dir, content.PathLinker{Prefix: "/content/"}, dir.Handler()
		slog.Info("serving content from directory", "dir", contentDir)
	}

	src := content.Router{Local: local, Remote: remote}
	settingsStore := settings.NewStore(db.Pool)

	view := viewer.NewHandler(viewer.Config{
		Catalog:     catalog.NewReader(src, getEnv("CATALOG_PATH", catalog.DefaultPath)),
		Transcripts: transcript.NewFetcher(src, fetchTimeout),
		Content:     src,
		Linker:      linker,
		Settings:    settingsStore,
	})

	staticFS, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		log.Fatalf("embedded assets: %v", err)
	}

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	srv, err := server.New(appCtx, server.Config{
		DB:              db.Pool,
		Pinger:          db,
		Viewer:          view,
		Settings:        settingsStore,
		StaticFS:        staticFS,
		Content:         contentHandler,
		JWTSecret:       jwtSecret,
		BaseURL:         getEnv("BASE_URL", "http://localhost:8080"),
		StorageEndpoint: storageEndpoint,
		EnableDocs:      getEnv("API_DOCS_ENABLED", "true") == "true",
	})
	if err != nil {
		log.Fatalf("server setup failed: %v", err)
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("lightgray listening", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-shutdownCh
	slog.Info("shutting down")
	appCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown failed: %v", err)
	}
	slog.Info("shutdown complete")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("15s") or a plain number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs := getEnvInt64(key, 0); secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
