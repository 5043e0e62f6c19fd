// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"artisan-workers/internal/common/camunda"
	"artisan-workers/internal/common/config"
	"artisan-workers/internal/common/database"
	"artisan-workers/internal/common/logger"
	"artisan-workers/internal/common/observability"
	"artisan-workers/internal/ranking"

	as "artisan-workers/internal/workers/artisan/artisan-stats"
	pac "artisan-workers/internal/workers/artisan/parse-artisan-criteria"
	qa "artisan-workers/internal/workers/artisan/query-artisans"
	"artisan-workers/internal/workers/artisan/query-artisans/queries"
	ra "artisan-workers/internal/workers/artisan/rank-artisans"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// pinger is a dependency checked by /ready.
type pinger interface {
	Ping(ctx context.Context) error
}

// pingFunc adapts a check function to pinger.
type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.NewZapWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
		zap.String("source", cfg.Source.Backend),
	)

	obs, err := observability.New(cfg.Observability, observability.Options{}, log)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}
	defer func() {
		if err := obs.Shutdown(); err != nil {
			zapLog.Error("observability shutdown failed", zap.Error(err))
		}
	}()

	ctx := context.Background()
	deps := map[string]pinger{}

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	if topo, err := camundaClient.Topology(ctx); err == nil {
		zapLog.Info("Zeebe client connected successfully",
			zap.Int("brokers", topo.Brokers),
			zap.Int("partitions", topo.Partitions),
			zap.String("gatewayVersion", topo.GatewayVersion),
		)
	}

	// --- Init candidate source with retry ---
	var source queries.Source
	switch cfg.Source.Backend {
	case config.BackendElasticsearch:
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			if err := esClient.Ping(ctx); err != nil {
				return err
			}
			return esClient.CheckIndex(ctx, cfg.Source.Index)
		}, 10, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		deps["elasticsearch"] = pingFunc(func(ctx context.Context) error {
			if err := esClient.Ping(ctx); err != nil {
				return err
			}
			return esClient.CheckIndex(ctx, cfg.Source.Index)
		})
		source = queries.NewElasticsearchSource(esClient.Client, cfg.Source.Index)
		zapLog.Info("Elasticsearch connected successfully")

	default:
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		deps["postgres"] = pg
		source = queries.NewPostgresSource(pg.DB, cfg.Source.Table)
		if n, err := pg.CountVisible(ctx, cfg.Source.Table); err != nil {
			zapLog.Warn("could not count visible artisans", zap.String("table", cfg.Source.Table), zap.Error(err))
		} else {
			zapLog.Info("PostgreSQL connected successfully", zap.Int("visibleArtisans", n))
		}
	}

	// --- Optional candidate cache ---
	var cache *queries.Cache
	if cfg.Source.CacheEnabled {
		var redisClient *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()
		deps["redis"] = redisClient
		cache = queries.NewCache(redisClient.Client, cfg.Source.CacheTTLDuration(), log)
		zapLog.Info("Redis connected successfully", zap.Duration("cacheTTL", cfg.Source.CacheTTLDuration()))
	}

	// --- Register workers ---
	rankCfg, err := ra.LoadConfig(cfg)
	if err != nil {
		zapLog.Fatal("invalid ranking config", zap.Error(err))
	}
	ranker := ranking.NewRanker(rankCfg.RankerOptions())

	zeebeClient := camundaClient.GetClient()
	var workers []*camunda.Worker
	start := func(taskType string, handle camunda.HandlerFunc) {
		if !config.IsWorkerEnabled(cfg, taskType) {
			zapLog.Info("worker disabled", zap.String("taskType", taskType))
			return
		}
		workers = append(workers, camunda.NewWorker(zeebeClient, taskType, config.GetWorkerConfig(cfg, taskType), handle, log))
	}

	start(pac.TaskType, pac.NewHandler(pac.LoadConfig(cfg), log).Handle)
	start(qa.TaskType, qa.NewHandler(qa.LoadConfig(cfg), source, cache, log).Handle)
	start(ra.TaskType, ra.NewHandler(rankCfg, ranker, obs, log).Handle)
	start(as.TaskType, as.NewHandler(as.LoadConfig(cfg), ranker, log).Handle)

	zapLog.Info("workers registered", zap.Int("count", len(workers)))

	// --- Health, readiness and metrics ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := map[string]string{"time": time.Now().Format(time.RFC3339)}
		code := http.StatusOK
		if err := camundaClient.HealthCheck(checkCtx); err != nil {
			status["zeebe"] = err.Error()
			code = http.StatusServiceUnavailable
		} else {
			status["zeebe"] = "ok"
		}
		for name, dep := range deps {
			if err := dep.Ping(checkCtx); err != nil {
				status[name] = err.Error()
				code = http.StatusServiceUnavailable
				continue
			}
			status[name] = "ok"
		}
		if code == http.StatusOK {
			status["status"] = "ready"
		} else {
			status["status"] = "not ready"
		}
		writeStatus(w, code, status)
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/debug/pprof/", http.DefaultServeMux)

	server := &http.Server{
		Addr:              cfg.Observability.HTTPAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}
	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func writeStatus(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
