package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"newspulse/internal/cache"
	"newspulse/internal/config"
	"newspulse/internal/publisher"
	"newspulse/internal/retry"
	"newspulse/internal/scheduler"
	"newspulse/internal/scoring"
	"newspulse/internal/service"
	"newspulse/internal/source/headlines"
	"newspulse/internal/source/newsdata"
	"newspulse/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	query := flag.String("query", "", "run a one-off news search and exit")
	flag.Parse()

	// Setup logger
	logger := setupLogger("info")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	retryPolicy := retry.Policy{
		MaxAttempts:    cfg.NewsAPI.Retry.MaxAttempts,
		InitialBackoff: cfg.NewsAPI.Retry.InitialBackoff,
		MaxBackoff:     cfg.NewsAPI.Retry.MaxBackoff,
	}

	newsSource := newsdata.New(newsdata.Config{
		BaseURL: cfg.NewsAPI.BaseURL,
		APIKey:  cfg.NewsAPI.APIKey,
		Timeout: cfg.NewsAPI.Timeout,
		Retry:   retryPolicy,
	}, logger)

	headlineFeed := headlines.New(headlines.Config{
		BaseURL: cfg.Headlines.BaseURL,
		Limit:   cfg.Headlines.Limit,
		Timeout: cfg.Headlines.Timeout,
	}, logger)

	sentiment := scoring.NewSentimentAnalyzer()
	classifier := scoring.NewTopicClassifier()

	// One-off search mode: no database, no cache, just the live upstreams.
	if *query != "" {
		searchService := service.NewSearchService(newsSource, headlineFeed, sentiment, logger)
		result := searchService.Search(ctx, *query)

		if err := json.NewEncoder(os.Stdout).Encode(result); err != nil {
			logger.Error("failed to encode search result", "error", err)
			os.Exit(1)
		}
		return
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	if err := postgres.EnsureSchema(ctx, db); err != nil {
		logger.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	// Initialize Redis summary cache
	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Error("failed to parse redis url", "error", err)
		os.Exit(1)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("failed to ping redis", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to redis")

	summaryCache := cache.New(rdb, cache.Config{
		BreakerCooldown: cfg.Redis.BreakerCooldown,
		Retry:           retryPolicy,
	}, logger)

	// Initialize RabbitMQ publisher (optional)
	var articlePublisher service.Publisher
	if cfg.RabbitMQ.Enabled {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		articlePublisher = rabbitMQ
	}

	// Initialize stores
	articleStore := postgres.NewArticleStore(db)
	ingestStateStore := postgres.NewIngestStateStore(db)
	txManager := postgres.NewTransactionManager(db)

	// Create services
	summaryService := service.NewSummaryService(articleStore, summaryCache, logger)

	ingestService := service.NewIngestService(
		newsSource,
		articleStore,
		ingestStateStore,
		txManager,
		articlePublisher,
		summaryService,
		sentiment,
		classifier,
		retryPolicy,
		logger,
	)

	retentionService := service.NewRetentionService(
		articleStore,
		cfg.Retention.MaxAgeDays,
		retryPolicy,
		logger,
	)

	sched := scheduler.New(
		ingestService.Run,
		retentionService.Prune,
		scheduler.Config{
			Interval:   cfg.Ingest.Interval,
			JobTimeout: cfg.Ingest.JobTimeout,
			Retry:      retryPolicy,
		},
		logger,
	)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	logger.Info("starting news pipeline",
		"ingest_interval", cfg.Ingest.Interval,
		"retention_days", cfg.Retention.MaxAgeDays,
	)

	sched.Start(ctx)

	<-ctx.Done()
	sched.Stop()
	logger.Info("shutdown complete")
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
