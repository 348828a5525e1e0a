package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/af-corp/voicechat-gateway/internal/config"
	"github.com/af-corp/voicechat-gateway/internal/conversation"
	"github.com/af-corp/voicechat-gateway/internal/gateway"
	"github.com/af-corp/voicechat-gateway/internal/httputil"
	"github.com/af-corp/voicechat-gateway/internal/provider"
	"github.com/af-corp/voicechat-gateway/internal/ratelimit"
	"github.com/af-corp/voicechat-gateway/internal/security"
	"github.com/af-corp/voicechat-gateway/internal/telemetry"
)

var version = "dev"

func main() {
	configDir := flag.String("config", "configs", "path to configuration directory")
	flag.Parse()

	// .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	loader := config.NewLoader(*configDir, logger)
	if err := loader.Load(); err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	metrics := telemetry.NewMetrics()

	// The validator is immutable; reloads swap in a fresh compile so
	// in-flight requests keep a consistent rule set.
	var validator atomic.Pointer[security.Validator]
	buildValidator := func() (*security.Validator, error) {
		v, err := security.NewValidator(loader.Security())
		if err != nil {
			return nil, err
		}
		v.OnSniffMiss = func(string) { metrics.RecordAudioSniffMiss() }
		return v, nil
	}
	v, err := buildValidator()
	if err != nil {
		logger.Error("failed to compile security patterns", "error", err)
		os.Exit(1)
	}
	validator.Store(v)

	loader.OnReload(func() {
		nv, err := buildValidator()
		if err != nil {
			logger.Error("reloaded security patterns invalid, keeping previous", "error", err)
			return
		}
		validator.Store(nv)
		logger.Info("security patterns reloaded")
	})

	if err := loader.Watch(); err != nil {
		logger.Warn("failed to start config watcher", "error", err)
	}

	cfg := loader.Config()
	if cfg.Provider.APIKey == "" {
		logger.Warn("OPENAI_API_KEY not set, transcribe and chat will answer CONFIG_ERROR")
	}

	var limiter ratelimit.Limiter = ratelimit.NewMemoryLimiter()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis not reachable, using in-process rate limiting", "error", err)
		} else {
			limiter = ratelimit.NewRedisLimiter(rdb)
			logger.Info("redis connected, rate limits shared across replicas")
		}
	}

	client := provider.NewOpenAIClient(func() config.ProviderConfig {
		return loader.Config().Provider
	}, nil)

	store := conversation.NewStore(cfg.Chat.HistoryLimit)

	handler := gateway.NewHandler(
		store,
		client,
		func() *security.Validator { return validator.Load() },
		func() config.ProviderConfig { return loader.Config().Provider },
		func() config.ChatConfig { return loader.Config().Chat },
		metrics,
		version,
	)

	limits := func() config.LimitsConfig { return loader.Config().Limits }
	rateClass := func(class string) func(http.Handler) http.Handler {
		return ratelimit.Middleware(limiter, class, limits, metrics)
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.SecurityHeaders)
	r.Use(httputil.Recover)
	r.Use(telemetry.RequestMetrics(metrics))
	r.NotFound(httputil.NotFound)
	r.MethodNotAllowed(httputil.MethodNotAllowed)

	r.With(rateClass("health")).Get("/", handler.Health)
	r.With(rateClass("transcribe")).Post("/transcribe", handler.Transcribe)
	r.With(rateClass("chat")).Post("/chat", handler.Chat)
	r.With(rateClass("default")).Post("/chat/clear", handler.ClearConversation)

	r.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("gateway starting", "addr", addr, "version", version)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("gateway stopped")
}
