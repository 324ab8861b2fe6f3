package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/displaywall/backend/internal/adapters/assets"
	"github.com/displaywall/backend/internal/adapters/catalog"
	router "github.com/displaywall/backend/internal/adapters/http"
	wsignal "github.com/displaywall/backend/internal/adapters/signal"
	"github.com/displaywall/backend/internal/app"
	"github.com/displaywall/backend/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	store, err := catalog.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open catalog store")
	}
	assetStore, err := assets.NewDiskStore(cfg.UploadDir, cfg.AssetBaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open asset store")
	}

	registry := app.NewRegistry()
	broadcaster := app.NewBroadcaster(store, registry)
	lifecycle := app.NewLifecycle(store, assetStore, broadcaster)
	selector := app.NewSelector(store, broadcaster, cfg.RevealDelay)

	ws := wsignal.NewController(registry, store, broadcaster, selector, cfg.ReadLimit, cfg.PingPeriod)
	media := router.NewMediaHandler(store, lifecycle)

	r := router.SetupRouter(ctx, cfg, media, ws)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("displaywall server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
