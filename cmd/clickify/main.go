// Package main provides the entry point for the Clickify tracking service.
//
//	@title			Clickify API
//	@version		1.0.0
//	@description	Link redirection with click tracking.
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
package main

import (
	"clickify/internal/cache"
	"clickify/internal/config"
	"clickify/internal/database"
	"clickify/internal/domain"
	"clickify/internal/geo"
	httpHandler "clickify/internal/handler/http"
	"clickify/internal/ratelimit"
	"clickify/internal/repository"
	"clickify/internal/repository/memory"
	"clickify/internal/repository/postgres"
	"clickify/internal/service"
	"clickify/pkg/clientip"
	"clickify/pkg/logger"
	"clickify/pkg/useragent"
	"context"
	"errors"
	lg "log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/foundation/core/cookie"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "clickify/docs" // Import swagger docs
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)
	defer func() {
		if err := log.Sync(); err != nil {
			lg.Printf("ERROR: failed to sync zap logger: %v\n", err)
		}
	}()

	log.Info("starting clickify", zap.String("env", cfg.Env), zap.String("storage", cfg.Storage))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checks := make(map[string]httpHandler.CheckFunc)

	// Storage
	var storage repository.Storage
	switch cfg.Storage {
	case config.StorageMemory:
		mem := memory.New()
		seedMemory(ctx, mem, cfg.Database.SeedLinks, log)
		storage = mem
	default:
		db := openDatabase(cfg, log)
		defer func() {
			if err := database.Close(db, log); err != nil {
				log.Error("failed to close database connection", zap.Error(err))
			}
		}()
		checks["database"] = func(ctx context.Context) error { return database.HealthCheck(ctx, db) }
		storage = postgres.New(db, log)
	}

	// Rate limit counters: Redis when reachable, in-process otherwise
	local := cache.NewMemory(cache.WithLogger(log))
	go local.Run(ctx)

	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:        cfg.Redis.Address,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: cfg.Redis.DialTimeout,
		})
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Error("failed to close redis client", zap.Error(err))
			}
		}()
	}
	backend := ratelimit.NewBackend(ctx, rdb, local, log)
	if backend.Name() == "redis" {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	limiter := ratelimit.New(ratelimit.Config{
		Enabled: cfg.Clickify.EnableRateLimit,
		Rate:    cfg.Clickify.RateLimit,
	}, backend, log)

	// Enrichment
	resolver := clientip.New(cfg.Clickify.IPHeaders)
	locator := geo.NewIPAPIClient(geo.Config{
		Enabled:     cfg.Clickify.Geolocation,
		URLTemplate: cfg.Clickify.GeolocationURL,
		Timeout:     cfg.Clickify.GeolocationTimeout,
	}, &http.Client{}, log)

	parser, err := useragent.NewParser(cfg.Clickify.UserAgentRegexes, log)
	if err != nil {
		log.Warn("failed to initialize User-Agent parser, device details will not be recorded", zap.Error(err))
	}

	recorder := service.NewClickRecorder(storage, resolver, locator, parser, log)
	tracker := service.NewTracker(storage, limiter, recorder, resolver, log)

	cookieCfg := cookie.DefaultConfig()
	cookieCfg.Secrets = cfg.Cookie.Secrets
	cookieCfg.Secure = cfg.Cookie.Secure
	cookies, err := cookie.NewFromConfig(cookieCfg)
	if err != nil {
		log.Fatal("failed to initialize cookie manager", zap.Error(err))
	}

	srv := httpHandler.NewServer(
		httpHandler.NewRedirectHandler(tracker, httpHandler.NewFlasher(cookies), cfg.Clickify.DefaultRedirect, log),
		httpHandler.NewAPIHandler(tracker, log),
		httpHandler.NewHealthHandler(checks, log),
		cfg.HTTPServer.CORSOrigins,
		log,
	)

	httpServer := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      srv.SetupRoutes(),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	log.Info("starting HTTP server", zap.String("address", httpServer.Addr))

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down clickify...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown HTTP server", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}
}

func openDatabase(cfg *config.Config, log *zap.Logger) *gorm.DB {
	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if cfg.Database.AutoMigrate {
		log.Info("running database migrations (auto_migrate: true)")
		if err := database.AutoMigrate(db, log); err != nil {
			log.Fatal("failed to run database migrations", zap.Error(err))
		}
	} else {
		log.Info("skipping database migrations (auto_migrate: false)")
	}

	if cfg.Database.SeedData {
		log.Info("seeding database with initial data (seed_data: true)")
		if err := database.SeedData(db, cfg.Database.SeedLinks, log); err != nil {
			log.Fatal("failed to seed database", zap.Error(err))
		}
	}

	return db
}

func seedMemory(ctx context.Context, store *memory.MemStorage, seeds []config.SeedLink, log *zap.Logger) {
	for _, seed := range seeds {
		link := &domain.TrackedLink{Name: seed.Name, Slug: seed.Slug}
		if seed.TargetURL != "" {
			target := seed.TargetURL
			link.TargetURL = &target
		}
		if err := store.SaveLink(ctx, link); err != nil {
			log.Warn("failed to seed link", zap.String("slug", seed.Slug), zap.Error(err))
		}
	}
	log.Info("in-memory storage seeded", zap.Int("links", len(seeds)))
}
