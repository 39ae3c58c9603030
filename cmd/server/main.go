package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/janisto/hello-api/internal/http/health"
	"github.com/janisto/hello-api/internal/http/routes"
	"github.com/janisto/hello-api/internal/platform/config"
	"github.com/janisto/hello-api/internal/platform/logging"
	appmiddleware "github.com/janisto/hello-api/internal/platform/middleware"
	"github.com/janisto/hello-api/internal/platform/respond"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

func newRouter(cfg config.Config) http.Handler {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	router.Use(
		appmiddleware.Security(routes.DocsPath),
		appmiddleware.Vary(),
		appmiddleware.CORS(cfg.CORSOrigins...),
		appmiddleware.RequestID(),
		// RealIP trusts X-Forwarded-For / X-Real-IP; deploy behind a proxy that sets them.
		chimiddleware.RealIP,
		chimiddleware.RequestSize(1<<20),
		chimiddleware.GetHead,
		logging.RequestLogger(cfg.ProjectID),
		logging.AccessLogger(),
		respond.Recoverer(),
	)

	router.Get(health.Path, health.Handler)
	routes.NewAPI(router, Version)
	return router
}

func main() {
	defer func() {
		if err := logging.Sync(); err != nil {
			logging.LogError(context.Background(), "logger sync error", err)
		}
	}()
	if err := logging.Err(); err != nil {
		logging.LogError(context.Background(), "logger init error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logging.LogError(context.Background(), "config load failed", err)
		os.Exit(1)
	}
	logging.SetLevel(cfg.LogLevel)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           newRouter(cfg),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10,
	}

	listenErr := make(chan error, 1)
	go func() {
		logging.LogInfo(context.Background(), "server listening", zap.String("addr", srv.Addr), zap.String("version", Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-listenErr:
		logging.LogError(context.Background(), "listen failed", err, zap.String("addr", srv.Addr))
		os.Exit(1)
	case <-stop:
		logging.LogInfo(context.Background(), "shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.LogError(ctx, "server shutdown error", err)
	}
	logging.LogInfo(context.Background(), "server exited")
}
