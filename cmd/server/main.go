package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"golang.org/x/sync/errgroup"

	"physiotrack/backend/internal/announce"
	"physiotrack/backend/internal/config"
	"physiotrack/backend/internal/db"
	"physiotrack/backend/internal/handler"
	"physiotrack/backend/internal/logging"
	"physiotrack/backend/internal/recommend"
	"physiotrack/backend/internal/repository"
	"physiotrack/backend/internal/router"
	"physiotrack/backend/internal/service"
	"physiotrack/backend/internal/snapshot"
)

const shutdownTimeout = 10 * time.Second

// CLI flags override the environment when set.
type CLI struct {
	Port          string `help:"HTTP listen port (PORT)"`
	DBPath        string `help:"SQLite database file (DB_PATH)" name:"db"`
	MigrationsDir string `help:"Directory with .sql migrations (MIGRATIONS_DIR)" name:"migrations"`
	RedisAddr     string `help:"Redis address for active-session snapshots (REDIS_ADDR)" name:"redis"`
	LogLevel      string `help:"debug, info, warn or error (LOG_LEVEL)" name:"log-level"`
	SkipMigrate   bool   `help:"Do not apply migrations on startup"`
}

func (c *CLI) apply(cfg *config.Config) {
	if c.Port != "" {
		cfg.Port = c.Port
	}
	if c.DBPath != "" {
		cfg.DBPath = c.DBPath
	}
	if c.MigrationsDir != "" {
		cfg.MigrationsDir = c.MigrationsDir
	}
	if c.RedisAddr != "" {
		cfg.RedisAddr = c.RedisAddr
	}
	if c.LogLevel != "" {
		cfg.LogLevel = c.LogLevel
	}
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("physiotrack-server"),
		kong.Description("Exercise session tracking API"),
		kong.UsageOnError(),
	)

	cfg := config.Load()
	cli.apply(&cfg)
	logging.Initialize(cfg.LogLevel)

	if err := run(cfg, !cli.SkipMigrate); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, migrate bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	if migrate {
		if _, err := db.RunMigrations(ctx, database, cfg.MigrationsDir); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	snapshots, closeSnapshots, err := openSnapshotStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSnapshots()

	userRepo := repository.NewUserRepository(database)
	sessionRepo := repository.NewSessionRepository(database, userRepo)
	templateRepo := repository.NewTemplateRepository(database)
	painRepo := repository.NewPainRepository(database)

	hub := announce.NewHub()
	sink := announce.Multi{announce.LogSink{}, hub}

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	sessionService := service.NewSessionService(sessionRepo, userRepo, templateRepo, snapshots, sink)
	templateService := service.NewTemplateService(templateRepo)
	painService := service.NewPainService(painRepo)
	statsService := service.NewStatsService(sessionService, sessionRepo, painRepo)
	recommendationService := service.NewRecommendationService(newGenerator(cfg))

	engine := router.New(authService, router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Session:  handler.NewSessionHandler(sessionService, hub),
		Template: handler.NewTemplateHandler(templateService),
		Insight:  handler.NewInsightHandler(painService, statsService, recommendationService),
	}, cfg.CORSOrigins)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	server.RegisterOnShutdown(hub.Close)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.Logger.Info("backend listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("run server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logging.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openSnapshotStore(ctx context.Context, cfg config.Config) (snapshot.Store, func(), error) {
	if cfg.RedisAddr == "" {
		logging.Logger.Info("using in-memory snapshot store")
		return snapshot.NewMemoryStore(), func() {}, nil
	}

	client, err := snapshot.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, fmt.Errorf("connect snapshot store: %w", err)
	}
	logging.Logger.Info("using redis snapshot store", "addr", cfg.RedisAddr)
	return snapshot.NewRedisStore(client, cfg.SnapshotTTL), func() { _ = client.Close() }, nil
}

func newGenerator(cfg config.Config) recommend.Generator {
	catalog := recommend.CatalogGenerator{}
	if cfg.RecommenderAPIKey == "" {
		return catalog
	}
	return recommend.Fallback{
		Primary: recommend.NewLLMGenerator(recommend.LLMConfig{
			URL:     cfg.RecommenderURL,
			APIKey:  cfg.RecommenderAPIKey,
			Model:   cfg.RecommenderModel,
			Timeout: cfg.RecommenderTimeout,
		}),
		Secondary: catalog,
	}
}
