package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yueh722/Web3-news-app/internal/cache"
	"github.com/yueh722/Web3-news-app/internal/config"
	"github.com/yueh722/Web3-news-app/internal/metrics"
	"github.com/yueh722/Web3-news-app/internal/news"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	return cfg, nil
}

// openStore builds the fetch cache selected by cache.backend.
func openStore(ctx context.Context, cfg *config.Config) (cache.Store, error) {
	switch cfg.Cache.Backend {
	case config.BackendSQLite:
		s, err := cache.OpenSQLite(cfg.CachePath())
		if err != nil {
			return nil, fmt.Errorf("opening cache: %w", err)
		}
		return s, nil
	case config.BackendRedis:
		rdb := cache.NewRedisClient(cache.RedisOptions{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		s := cache.NewRedisStore(rdb, news.CacheTTL)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := s.Ping(pingCtx); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Cache.Redis.Addr, err)
		}
		return s, nil
	default:
		return cache.NewMemoryStore(), nil
	}
}

// newService wires the webhook client behind the fetch cache. The returned
// close func releases the store.
func newService(ctx context.Context, cfg *config.Config, logger *slog.Logger, rec metrics.Recorder) (*news.CachedClient, func() error, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	client := news.NewClient(news.Options{
		ReadURL:           cfg.Webhook.ReadURL,
		WriteURL:          cfg.Webhook.WriteURL,
		Timeout:           cfg.WebhookTimeout(),
		RetryAttempts:     cfg.Webhook.RetryAttempts,
		RequestsPerSecond: cfg.Webhook.RequestsPerSecond,
		Logger:            logger,
		Metrics:           rec,
	})
	svc := news.NewCachedClient(client, store,
		news.WithCacheLogger(logger),
		news.WithCacheMetrics(rec),
	)
	return svc, store.Close, nil
}

// newRecorder returns a Prometheus recorder and its registry when
// metrics_addr is set, and a no-op recorder otherwise.
func newRecorder(cfg *config.Config) (metrics.Recorder, *prometheus.Registry) {
	if cfg.MetricsAddr == "" {
		return metrics.Noop{}, nil
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return metrics.NewPrometheus(reg), reg
}

// serveMetrics exposes reg on addr until ctx is done.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *slog.Logger) {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", slog.String("addr", addr), slog.String("error", err.Error()))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
