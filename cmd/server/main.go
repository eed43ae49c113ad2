package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"merchquote/internal/config"
	"merchquote/internal/infra"
	"merchquote/internal/repository"
	"merchquote/internal/router"
	"merchquote/internal/session"
	"merchquote/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	if err := os.MkdirAll(cfg.ExportStoragePath, 0o755); err != nil {
		log.Fatal().Err(err).Msg("failed to create export storage dir")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storefront catalog client behind a circuit breaker
	storefrontCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	storefront := infra.NewStorefrontClient(cfg, rdb, storefrontCB)

	// In-memory quote sessions with TTL eviction
	registry := session.NewRegistry(time.Duration(cfg.SessionTTLMinutes) * time.Minute)
	registry.StartSweeper(ctx, time.Minute)

	// Async export/email pipeline. Worker handlers are wired here (composition
	// root) so the pool has full access to all infrastructure dependencies.
	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)
	exportRepo := repository.NewExportRepository(db)

	handlers := worker.Handlers{
		Export: worker.NewExportWorker(exportRepo, dispatcher, cfg.ExportStoragePath),
		Email:  worker.NewEmailWorker(mailer),
	}
	worker.StartWorkerPool(ctx, rdb, handlers, cfg.WorkerPoolSize)
	worker.StartRetryCron(ctx, worker.RetryCronConfig{
		ExportRepo: exportRepo,
		Dispatcher: dispatcher,
		RDB:        rdb,
	})

	r := router.New(cfg, db, rdb, storefront, registry, dispatcher)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("merchquote backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
