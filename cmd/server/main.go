package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/hanziflash/internal/api"
	"github.com/vytor/hanziflash/internal/app"
	"github.com/vytor/hanziflash/internal/config"
	"github.com/vytor/hanziflash/internal/db"
	"github.com/vytor/hanziflash/internal/logger"
	"github.com/vytor/hanziflash/internal/repository/sqlite"
	"github.com/vytor/hanziflash/internal/services"
)

func main() {
	cfg := config.Load()

	log, logCloser, err := app.NewLogger(cfg)
	if err != nil {
		logger.Error("failed to set up logging: %v", err)
		os.Exit(1)
	}
	defer logCloser.Close()
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	log.Info("===========================================")
	log.Info("HanziFlash Server Starting")
	log.Info("===========================================")
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("audio_root=%s audio_index=%s batch_size=%d", cfg.AudioRoot, cfg.AudioIndex, cfg.BatchSize)
	log.Debug("player=%s player_path=%s volume=%.2f", cfg.Player, cfg.PlayerPath, cfg.Volume)
	log.Debug("prefetch_workers=%d prefetch_queue=%d prefetch_ahead=%d", cfg.PrefetchWorkers, cfg.PrefetchQueue, cfg.PrefetchAhead)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.CatalogPath != "" {
		if _, err := app.ImportCatalog(ctx, database, cfg.CatalogPath); err != nil {
			log.Error("failed to import catalog: %v", err)
			os.Exit(1)
		}
	}
	repo := sqlite.NewSentenceRepository(database.DB)
	if n, err := repo.Count(ctx); err != nil {
		log.Error("failed to count sentences: %v", err)
		os.Exit(1)
	} else if n == 0 {
		log.Warn("catalog is empty; run `hanzictl import` or set CATALOG_PATH")
	} else {
		log.Info("catalog holds %d sentences", n)
	}

	resolver, err := app.NewResolver(cfg)
	if err != nil {
		log.Error("failed to set up clip resolver: %v", err)
		os.Exit(1)
	}
	stack := app.NewStack(cfg, repo, resolver, app.NewPlayer(cfg))
	stack.Start(ctx)

	srv := &api.Server{
		DB:             database,
		CatalogService: services.NewCatalogService(repo),
		SessionService: services.NewSessionService(stack.Sessions),
		ClipService:    services.NewClipService(stack.Cache),
	}

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("closing sessions and prefetch pool")
	cancel()
	stack.Close()

	stats := stack.Cache.Stats()
	log.Info("clip cache: %d entries, %d loads, %d hits, %d missing", stats.Entries, stats.Loads, stats.Hits, stats.Missing)
	log.Info("===========================================")
	log.Info("HanziFlash Server Stopped")
	log.Info("===========================================")
}
