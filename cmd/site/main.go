package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opensourceavatars/avatar-site/config"
	"github.com/opensourceavatars/avatar-site/internal/api"
	"github.com/opensourceavatars/avatar-site/internal/docs"
	"github.com/opensourceavatars/avatar-site/internal/gallery"
	"github.com/opensourceavatars/avatar-site/internal/i18n"
	"github.com/opensourceavatars/avatar-site/internal/sitemap"
	"github.com/opensourceavatars/avatar-site/internal/storage"
	"github.com/opensourceavatars/avatar-site/internal/utils"
	"github.com/rs/zerolog"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootstrap := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootstrap.Fatal().Err(err).Msg("Failed to load config")
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:     cfg.Log.Level,
		Dir:       cfg.Log.Dir,
		Component: "site",
	})
	if err != nil {
		bootstrap := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootstrap.Fatal().Err(err).Msg("Failed to initialize logger")
	}
	defer logger.Close()

	gen, err := sitemap.New(sitemap.Options{
		BaseURL: cfg.Site.BaseURL,
		Locales: cfg.Site.Locales,
		Pages:   cfg.Site.Pages,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid site configuration")
	}

	locales, err := i18n.NewSet(cfg.Site.Locales, cfg.Site.DefaultLocale)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid locale configuration")
	}

	// Initialize storage
	store, err := storage.Open(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to initialize storage")
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Gallery.SeedFile != "" {
		seedGallery(ctx, store, cfg.Gallery.SeedFile, logger.Component("gallery"))
	}

	server := api.NewServer(api.Options{
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
		IdleTimeout:  cfg.IdleTimeout(),
		Store:        store,
		Sitemap:      gen,
		Locales:      locales,
		Docs:         docs.NewLibrary(docs.Content(), locales),
		Gateway:      cfg.Arweave.Gateway,
		Logger:       logger.Logger,
	})

	// Start the API server
	go func() {
		logger.Info().
			Int("port", cfg.Server.Port).
			Str("base_url", gen.BaseURL()).
			Strs("locales", cfg.Site.Locales).
			Msg("Starting site server")
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	waitForShutdown(cancel, server, logger.Logger)
}

func seedGallery(ctx context.Context, store storage.Store, path string, logger zerolog.Logger) {
	catalog, err := gallery.LoadFile(path)
	if err != nil {
		logger.Error().Err(err).Str("file", path).Msg("Failed to load gallery catalog")
		return
	}

	res, err := gallery.Seed(ctx, store, catalog, logger)
	if err != nil {
		logger.Error().Err(err).Str("file", path).Msg("Failed to seed gallery")
		return
	}
	logger.Info().Int("collections", res.Collections).Int("avatars", res.Avatars).Msg("Gallery seeded")
}

func waitForShutdown(cancel context.CancelFunc, server *api.Server, logger zerolog.Logger) {
	// Handle system signals for shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	logger.Info().Msg("Shutting down...")
	cancel()

	// Graceful server shutdown
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Error shutting down server")
	}
	logger.Info().Msg("Server shut down gracefully")
}
