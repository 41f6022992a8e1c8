// Package main is the entrypoint for the Spendlog API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"

	"github.com/spendlog/spendlog/internal/auth"
	"github.com/spendlog/spendlog/internal/cache"
	"github.com/spendlog/spendlog/internal/config"
	"github.com/spendlog/spendlog/internal/handler"
	"github.com/spendlog/spendlog/internal/metrics"
	"github.com/spendlog/spendlog/internal/middleware"
	"github.com/spendlog/spendlog/internal/notify"
	"github.com/spendlog/spendlog/internal/repository"
	"github.com/spendlog/spendlog/internal/server"
	"github.com/spendlog/spendlog/internal/service"
)

func main() {
	ctx := context.Background()

	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if cfg.RunMigrations {
		if err := repository.Migrate(cfg.DatabaseURL); err != nil {
			logger.Error("failed to run migrations",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			)
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	metricsRecorder := metrics.NewInMemory()
	tokens := auth.NewIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	var reportCache cache.ReportCache
	switch cfg.ReportCacheBackend {
	case config.CacheBackendMemory:
		reportCache = cache.NewMemoryStore(nil)
	default:
		reportCache = cache.NewRedisReportStore(cacheClient)
	}

	notifiers := []service.Notifier{notify.NewLogNotifier(logger)}
	var publisher *notify.AMQPPublisher
	if cfg.AlertsEnabled() {
		publisher, err = notify.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("failed to connect to AMQP broker",
				slog.String("error", sanitizeError(err, cfg.AMQPURL)),
				slog.String("amqp_url", redactURL(cfg.AMQPURL)),
			)
			os.Exit(1)
		}
		notifiers = append(notifiers, publisher)
		logger.Info("expense alerts enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	if cfg.AlertWebhookURL != "" {
		notifiers = append(notifiers, notify.NewWebhookNotifier(cfg.AlertWebhookURL, cfg.AlertWebhookSecret, logger))
		logger.Info("expense alert webhook enabled", "url", redactURL(cfg.AlertWebhookURL))
	}

	largeExpenseAlert := service.NewLargeExpenseAlert(repo, metricsRecorder, logger, notifiers...)
	expenseService := service.NewExpenseService(repo, metricsRecorder, logger, largeExpenseAlert)
	reportService := service.NewReportService(repo, reportCache, cfg.ReportCacheTTL, metricsRecorder, logger)
	exportService := service.NewExportService(repo, metricsRecorder, logger)
	userService := service.NewUserService(repo, tokens, cacheClient, logger)

	r := setupRouter(routes{
		root:     handler.New(),
		health:   handler.NewHealthHandler(repo, cacheClient),
		metrics:  handler.NewMetricsHandler(metricsRecorder),
		accounts: handler.NewAuthHandler(userService, logger),
		expenses: handler.NewExpenseHandler(expenseService, logger),
		reports:  handler.NewReportHandler(reportService, exportService, logger),
	}, middleware.AuthConfig{
		Logger: logger,
		Tokens: tokens,
		Users:  repo,
		Cache:  cacheClient,
	}, middleware.RateLimitConfig{
		Logger:        logger,
		Limiter:       cacheClient,
		UserEnabled:   cfg.RateLimitAPIEnabled,
		UserPerMinute: cfg.RateLimitAPIPerMin,
		UserBurst:     cfg.RateLimitAPIBurst,
		IPEnabled:     cfg.RateLimitAuthEnabled,
		IPPerSecond:   cfg.RateLimitAuthRPS,
		IPBurst:       cfg.RateLimitAuthBurst,
	}, cfg, logger)

	srv := server.New(r, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})
	if publisher != nil {
		srv.OnShutdown("amqp_publisher", func(context.Context) error {
			return publisher.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"report_cache", cfg.ReportCacheBackend,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
