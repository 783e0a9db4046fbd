// Command apiserver runs the preventive-maintenance scheduling API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mattsantos541/ArcTecFox-Mono/internal/application/signoff"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/config"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/domain/schedule"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/infrastructure/auth/identity"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/infrastructure/database/postgres"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/infrastructure/database/postgres/repositories"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/infrastructure/database/redis"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/infrastructure/messaging/kafka"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/infrastructure/monitoring/logging"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/infrastructure/monitoring/prometheus"
	httpiface "github.com/Mattsantos541/ArcTecFox-Mono/internal/interfaces/http"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/interfaces/http/handlers"
)

const version = "1.2.0"

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:            cfg.Log.Level,
		Format:           cfg.Log.Format,
		OutputPaths:      cfg.Log.OutputPaths,
		ErrorOutputPaths: cfg.Log.ErrorOutputPaths,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)
	logger.Info("starting apiserver", logging.String("version", version))

	if err := run(cfg, logger); err != nil {
		logger.Fatal("apiserver exited with error", logging.Err(err))
	}
}

// loadConfig falls back to environment-only configuration when the config
// file does not exist, which is the normal case in containers.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}

func run(cfg *config.Config, logger logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := prometheus.New("arctecfox")

	// ── Database ──────────────────────────────────────────────────────────────
	if err := postgres.Migrate(cfg.Database, logger); err != nil {
		return err
	}
	db, err := postgres.NewConnection(ctx, cfg.Database, logger.Named("postgres"))
	if err != nil {
		return err
	}
	defer db.Close()

	// ── Cache ─────────────────────────────────────────────────────────────────
	var cache signoff.PendingCache = signoff.NewNopCache()
	redisClient, err := redis.NewClient(ctx, cfg.Redis, logger.Named("redis"))
	if err != nil {
		// The cache is an optimisation; the API stays up without it.
		logger.Warn("redis unavailable, running without pending cache", logging.Err(err))
	} else {
		defer redisClient.Close()
		cache = redis.NewPendingSignoffCache(redisClient, logger.Named("cache"))
	}

	// ── Messaging ─────────────────────────────────────────────────────────────
	var publisher signoff.EventPublisher = signoff.NewNopPublisher()
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, logger.Named("kafka"))
		defer producer.Close()
		publisher = producer
	}

	// ── Application wiring ────────────────────────────────────────────────────
	calc := schedule.NewCalculator(logger.Named("schedule"), metrics.DueDateFallbackTotal)
	pool := db.Pool()
	repoLogger := logger.Named("repository")
	service := signoff.NewService(
		repositories.NewPlanRepository(pool, repoLogger),
		repositories.NewTaskRepository(pool, repoLogger),
		repositories.NewSignoffRepository(pool, repoLogger),
		calc,
		cache,
		publisher,
		signoff.Metrics{
			Seeded:        metrics.SignoffsSeededTotal,
			Advanced:      metrics.SignoffsAdvancedTotal,
			PendingRaces:  metrics.SignoffRaceTotal,
			ParseFailures: metrics.IntervalParseFailuresTotal,
			CacheHits:     metrics.CacheHitsTotal,
			CacheMisses:   metrics.CacheMissesTotal,
		},
		cfg.Database.QueryTimeout,
		logger.Named("signoff"),
	)

	// ── HTTP ──────────────────────────────────────────────────────────────────
	verifier := identity.NewClient(cfg.Identity, logger.Named("identity"))
	healthComponents := map[string]handlers.Pinger{"database": db}
	if redisClient != nil {
		healthComponents["cache"] = redisClient
	}

	router := httpiface.NewRouter(httpiface.RouterDeps{
		Mode:     cfg.Server.Mode,
		Logger:   logger.Named("http"),
		Metrics:  metrics,
		Verifier: verifier,
		Signoffs: handlers.NewSignoffHandler(service, logger.Named("signoff")),
		Health:   handlers.NewHealthHandler(version, healthComponents),
	})
	server := httpiface.NewServer(cfg.Server, router, logger.Named("http"))

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
