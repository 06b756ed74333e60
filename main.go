package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"mataam/internal/api"
	"mataam/internal/catalog"
	"mataam/internal/catalog/memstore"
	"mataam/internal/catalog/sqlstore"
	"mataam/internal/cdn"
	"mataam/internal/config"
	"mataam/internal/events"
	"mataam/internal/imagesync"
	"mataam/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}
	log := logger.New(logger.Options{Service: "mataam", Env: cfg.AppEnv, Level: cfg.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := openStore(ctx, cfg, log)
	defer store.Close()
	if err := catalog.Seed(ctx, store); err != nil {
		log.Error("seed catalog", slog.Any("err", err))
		os.Exit(1)
	}

	provider, cdnReady := newProvider(cfg, log)

	hub := events.NewHub(log)
	defer hub.Close()
	job := imagesync.NewJob(imagesync.NewSyncer(store, provider, log), hub, log)

	router := api.NewRouter(api.Deps{
		Store:         store,
		CDN:           provider,
		SyncJob:       job,
		Events:        hub,
		Log:           log,
		AdminToken:    cfg.AdminToken,
		CORSOrigins:   cfg.CORSOrigins,
		WhatsAppPhone: cfg.WhatsAppPhone,
		Currency:      cfg.CurrencyLabel,
		StaticDir:     cfg.StaticDir,
	})
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if cdnReady {
		g.Go(func() error {
			log.Info("image sync scheduled", slog.Duration("interval", cfg.SyncInterval))
			return job.Start(gctx, cfg.SyncInterval)
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("server stopped", slog.Any("err", err))
		os.Exit(1)
	}
}

// openStore picks the catalog backend. A database that cannot be reached at
// startup falls back to memory so the storefront still comes up.
func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) catalog.Store {
	if cfg.UseMemoryStore() {
		log.Info("using in-memory catalog", slog.Bool("devMode", cfg.DevMode))
		return memstore.New()
	}
	s, err := sqlstore.Open(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Warn("database unavailable, falling back to in-memory catalog", slog.Any("err", err))
		return memstore.New()
	}
	return s
}

// newProvider builds the configured CDN client. When credentials are missing
// or malformed it returns cdn.Unconfigured and false, and the sync job stays
// unscheduled.
func newProvider(cfg config.Config, log *slog.Logger) (cdn.Provider, bool) {
	if !cfg.CDNConfigured() {
		log.Warn("CDN not configured, image sync and uploads disabled", slog.String("provider", cfg.CDNProvider))
		return cdn.Unconfigured{}, false
	}
	p, err := cdn.New(cdn.Config{
		Provider:            cfg.CDNProvider,
		ImageKitPublicKey:   cfg.ImageKitPublicKey,
		ImageKitPrivateKey:  cfg.ImageKitPrivateKey,
		ImageKitURLEndpoint: cfg.ImageKitURLEndpoint,
		CloudinaryURL:       cfg.CloudinaryURL,
	})
	if err != nil {
		log.Error("CDN client init failed, image sync and uploads disabled", slog.String("provider", cfg.CDNProvider), slog.Any("err", err))
		return cdn.Unconfigured{}, false
	}
	return p, true
}
