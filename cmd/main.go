package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"anonymous_messages/internal/config"
	"anonymous_messages/internal/handlers"
	"anonymous_messages/internal/logger"
	"anonymous_messages/internal/repository"
	appdb "anonymous_messages/internal/repository/db"
	"anonymous_messages/internal/server"
	"anonymous_messages/internal/service"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// @title        Anonymous Messages API
// @version      1.0
// @description  Personal inboxes that accept anonymous messages through a shareable link.
// @BasePath     /
func main() {
	// bootstrap logger until config is known
	log := logger.Get(logger.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("error reading config", "err", err)
	}
	log = logger.Configure(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()

	if cfg.LogLevel != logger.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := appdb.InitDB(context.Background(), cfg.DBPath, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "path", cfg.DBPath, "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		log.Warnw("session.secret not set; sessions will not survive a restart")
		if secret, err = service.RandomSecret(); err != nil {
			log.Fatalw("failed to generate session secret", "err", err)
		}
	}

	// wire dependencies
	repos := repository.NewRepository(db)
	services := service.NewService(repos, service.SessionOptions{Secret: secret, TTL: cfg.SessionTTL})
	apiHandler := handlers.NewHandler(services, log, handlers.Options{
		BaseURL:       cfg.BaseURL,
		SecureCookies: cfg.TLSEnabled(),
		SessionMaxAge: int(cfg.SessionTTL / time.Second),
	})

	srv := &server.Server{}
	runHTTPServer(srv, cfg, apiHandler, log)

	waitForShutdown(srv, log)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, cfg *config.Config, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		router := handler.InitRoutes()
		var err error
		if cfg.TLSEnabled() {
			log.Infow("listening", "port", cfg.Port, "tls", true)
			err = srv.RunTLS(cfg.Port, router, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			log.Infow("listening", "port", cfg.Port, "tls", false)
			err = srv.Run(cfg.Port, router)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// allow in-flight requests to complete
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
