package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"dataguard/internal/audit"
	"dataguard/internal/correct"
	"dataguard/internal/enrich"
	"dataguard/internal/integrity"
	"dataguard/internal/pipeline"
	"dataguard/internal/platform/config"
	"dataguard/internal/platform/httpserver"
	"dataguard/internal/platform/logger"
	"dataguard/internal/platform/metrics"
	platformredis "dataguard/internal/platform/redis"
	"dataguard/internal/quality"
	"dataguard/internal/rules"
	"dataguard/internal/storage"
	httptransport "dataguard/internal/transport/http"
	"dataguard/internal/validate"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal packages.
func main() {
	// Optional .env for local development; env vars win.
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New()

	registry, err := rules.Load(cfg.SuitePath)
	if err != nil {
		fatal(log, "load expectation suites", err)
	}

	ctx := context.Background()

	var db *sqlx.DB
	if cfg.DatabaseURL != "" {
		db, err = sqlx.ConnectContext(ctx, "postgres", cfg.DatabaseURL)
		if err != nil {
			fatal(log, "connect postgres", err)
		}
		defer db.Close()
	}

	var datasetStore storage.DatasetStore = storage.NewMemoryDatasetStore()
	var auditStore audit.Store = audit.NewMemoryStore()
	if db != nil {
		datasetStore = storage.NewPostgresDatasetStore(db)
		auditStore = audit.NewPostgresStore(db)
	}

	var publisher audit.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := audit.NewKafkaPublisher(ctx, cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			fatal(log, "kafka publisher", err)
		}
		defer kafka.Close()
		publisher = kafka
	}
	trail := audit.NewTrail(auditStore, publisher, audit.WithLogger(log))

	redisClient, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		fatal(log, "connect redis", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	geocoder := enrich.NewCachedGeocoder(enrich.NewStaticGeocoder(), redisClient, cfg.GeocodeCacheTTL)
	enricher := enrich.NewSimulated(geocoder)

	validator := validate.New(registry)
	engine := correct.New(validator, registry)
	resolver := integrity.New()
	aggregator := quality.New(registry)

	pl := pipeline.New(validator, engine, resolver, aggregator, trail, log,
		pipeline.WithEnricher(enricher),
		pipeline.WithMetrics(metrics.New()),
		pipeline.WithWorkers(cfg.Workers),
	)

	handler := httptransport.NewHandler(datasetStore, trail, aggregator, pl, log)
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(handler))

	log.Info("starting dataguard", "addr", cfg.Addr,
		"postgres", db != nil, "redis", redisClient != nil, "kafka", publisher != nil)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(log, "server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fatal(log, "graceful shutdown", err)
	}
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}
