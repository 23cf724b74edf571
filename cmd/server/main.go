package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nikhilcherian/jobscout/internal/ai/openai"
	"github.com/nikhilcherian/jobscout/internal/analytics"
	"github.com/nikhilcherian/jobscout/internal/api"
	"github.com/nikhilcherian/jobscout/internal/cache"
	"github.com/nikhilcherian/jobscout/internal/keywords"
	"github.com/nikhilcherian/jobscout/internal/pipeline"
	"github.com/nikhilcherian/jobscout/internal/provider"
	"github.com/nikhilcherian/jobscout/internal/rank"
	"github.com/nikhilcherian/jobscout/pkg/config"
	"github.com/nikhilcherian/jobscout/pkg/health"
	"github.com/nikhilcherian/jobscout/pkg/kafka"
	"github.com/nikhilcherian/jobscout/pkg/logger"
	"github.com/nikhilcherian/jobscout/pkg/metrics"
	pkgredis "github.com/nikhilcherian/jobscout/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting jobscout",
		"port", cfg.Server.Port,
		"strategy", cfg.Ranking.Strategy,
		"embedding_model", cfg.AI.EmbeddingModel,
	)

	var m *metrics.Metrics
	var metricsShutdown func(context.Context) error
	if cfg.Metrics.Enabled {
		m = metrics.New()
		metricsShutdown = metrics.StartServer(cfg.Metrics.Port)
	}

	// The embedding model client is built once and shared read-only by the
	// extractor and, when selected, the embedding scorer.
	embedder, err := openai.NewEmbedder(cfg.AI, m)
	if err != nil {
		slog.Error("failed to create embedder", "error", err)
		os.Exit(1)
	}

	scorer, err := rank.NewScorer(cfg.Ranking.Strategy, embedder)
	if err != nil {
		slog.Error("failed to create scorer", "error", err)
		os.Exit(1)
	}
	slog.Info("ranking strategy selected", "strategy", scorer.Name())

	providerClient := provider.NewClient(cfg.Provider, m)
	if !providerClient.Configured() {
		slog.Warn("provider credentials missing, searches will return zero listings",
			"hint", "set RAPIDAPI_KEY and RAPIDAPI_HOST")
	}

	p := pipeline.New(
		keywords.NewExtractor(embedder),
		providerClient,
		rank.New(scorer),
		pipeline.Config{
			TopKeyphrases:  cfg.Ranking.TopKeyphrases,
			MaxResults:     cfg.Ranking.MaxResults,
			DefaultCountry: cfg.Provider.Country,
		},
		m,
	)

	var responseCache *cache.ResponseCache
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, response caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		responseCache = cache.New(redisClient, cfg.Redis)
		slog.Info("response cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var collector *analytics.Collector
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka)
		defer producer.Close()
		collector = analytics.NewCollector(producer, 1024)
		collector.Start(ctx)
		defer collector.Close()
		slog.Info("analytics collector started", "topic", cfg.Kafka.Topic)
	}

	checker := health.NewChecker()
	checker.Register("provider", func(ctx context.Context) health.ComponentHealth {
		if !providerClient.Configured() {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "credentials not configured"}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("embedding", func(ctx context.Context) health.ComponentHealth {
		if _, err := embedder.EmbedQuery(ctx, "ping"); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	h := api.New(p, responseCache, collector, m)
	router := api.NewRouter(h, checker, m, cfg.Server.WriteTimeout)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
		if metricsShutdown != nil {
			if err := metricsShutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}
	}()

	slog.Info("jobscout listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("jobscout stopped")
}
