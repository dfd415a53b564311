package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "garden_panel/docs"
	"garden_panel/internal/client"
	"garden_panel/internal/config"
	"garden_panel/internal/handlers"
	"garden_panel/internal/logger"
	"garden_panel/internal/repository"
	"garden_panel/internal/repository/db"
	"garden_panel/internal/server"
	"garden_panel/internal/service"
	"garden_panel/internal/telemetry"
	"garden_panel/internal/templates"

	"github.com/prometheus/client_golang/prometheus"
)

// @title        Garden Panel API
// @version      1.0
// @description  Irrigation zone dashboard: zone panels, start/stop commands and activity log.
// @BasePath     /
func main() {
	// load configs/config.yml
	cfg, err := config.Load("configs", ".")
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(cfg.LogLevel)

	tmpl, err := loadTemplates(cfg.Templates.Dir, log)
	if err != nil {
		log.Fatalw("failed to load templates", "err", err, "dir", cfg.Templates.Dir)
	}

	metrics, err := telemetry.NewPrometheusCollector(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalw("failed to register metrics", "err", err)
	}

	// open the activity log database
	conn, err := db.InitDB(cfg.Activity.DSN)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	zoneClient := client.New(cfg.Remote.BaseURL,
		client.WithTimeout(cfg.Remote.Timeout),
		client.WithLogger(log),
	)
	repos := repository.NewRepository(conn, cfg.Activity.Capacity)
	services := service.NewService(repos, service.Deps{
		Source:            zoneClient,
		Templates:         tmpl,
		Metrics:           metrics,
		Log:               log,
		DiscardStaleFeeds: cfg.Poll.DiscardStaleFeeds,
		Title:             cfg.Dashboard.Title,
	})
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go services.Poller.Run(ctx, cfg.Poll.Interval)

	srv := server.New(server.Timeouts{
		ReadHeader: cfg.Server.ReadHeaderTimeout,
		Write:      cfg.Server.WriteTimeout,
		Idle:       cfg.Server.IdleTimeout,
	})
	log.Infow("starting garden panel", "port", cfg.Port, "remote", cfg.Remote.BaseURL, "poll", cfg.Poll.Interval)
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, cfg.Server.ShutdownTimeout, log)
}

// loadTemplates reads dir when set, otherwise the embedded templates.
func loadTemplates(dir string, log *logger.Logger) (*templates.Cache, error) {
	if dir == "" {
		return templates.Default(log)
	}
	return templates.New(os.DirFS(dir), log)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, timeout time.Duration, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop the poller
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
