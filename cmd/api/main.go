package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"homedesign/internal/bootstrap"
	"homedesign/internal/http/handlers"
	httpapi "homedesign/internal/http/httpapi"
	"homedesign/internal/infra"
	"homedesign/internal/runs"
)

var version = "dev"

func main() {
	infra.LoadDotEnv()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	pipeline, err := bootstrap.New(ctx, cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build pipeline")
	}
	defer pipeline.Close()

	manager := runs.NewManager(pipeline.Orchestrator, pipeline.Objects, runs.Options{
		MaxConcurrent: cfg.MaxConcurrentRuns,
		Logger:        &logger,
	})

	app := &handlers.App{
		Runs:    manager,
		Objects: pipeline.Objects,
		Store:   pipeline.Store,
		Logger:  &logger,
		Version: version,
	}
	router := httpapi.NewRouter(app, httpapi.Options{
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		Logger:          &logger,
	})
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Bool("synthetic", cfg.Synthetic()).Msg("studio API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	if err := manager.Close(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to stop runs")
	}
	logger.Info().Msg("server stopped")
}
