// Command server starts the voice screening HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redis "github.com/redis/go-redis/v9"

	ai "github.com/fairyhunter13/voice-screener/internal/adapter/ai"
	aireal "github.com/fairyhunter13/voice-screener/internal/adapter/ai/real"
	httpserver "github.com/fairyhunter13/voice-screener/internal/adapter/httpserver"
	"github.com/fairyhunter13/voice-screener/internal/adapter/observability"
	"github.com/fairyhunter13/voice-screener/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/voice-screener/internal/adapter/telephony/twilio"
	"github.com/fairyhunter13/voice-screener/internal/adapter/voiceagent/fallback"
	"github.com/fairyhunter13/voice-screener/internal/adapter/voiceagent/ultravox"
	"github.com/fairyhunter13/voice-screener/internal/app"
	"github.com/fairyhunter13/voice-screener/internal/config"
	"github.com/fairyhunter13/voice-screener/internal/domain"
	"github.com/fairyhunter13/voice-screener/internal/service/ratelimiter"
	"github.com/fairyhunter13/voice-screener/internal/usecase"
)

// redisAdapter narrows *redis.Client to the readiness check interface.
type redisAdapter struct{ *redis.Client }

func (r redisAdapter) Ping(ctx context.Context) app.RedisPingResult {
	return r.Client.Ping(ctx)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	// Register all Prometheus metrics once per process so that /metrics
	// exposes HTTP, AI, and call instrumentation.
	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	// Infra: DB pool
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}

	// Repositories
	sessionRepo := postgres.NewCallSessionRepo(pool)
	candidateRepo := postgres.NewCandidateRepo(pool)
	jobRepo := postgres.NewJobRepo(pool)

	// Retention: prune terminal call sessions past the window.
	if cfg.DataRetentionDays > 0 {
		cleanupSvc := postgres.NewCleanupService(pool, cfg.DataRetentionDays)
		go cleanupSvc.RunPeriodic(ctx, cfg.CleanupInterval)
		slog.Info("cleanup service started", slog.Int("retention_days", cfg.DataRetentionDays), slog.Duration("interval", cfg.CleanupInterval))
	}

	// Redis-backed vendor throttling. The gate fails open, so a Redis
	// outage degrades to unthrottled vendor calls rather than downtime.
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := rdb.Close(); err != nil {
			slog.Error("failed to close redis client", slog.Any("error", err))
		}
	}()
	limiter := ratelimiter.NewRedisLuaLimiter(rdb, pool, map[string]ratelimiter.BucketConfig{
		"ultravox": ratelimiter.NewBucketConfigFromPerMinute(cfg.VendorRateLimitPerMin),
	})
	if err := limiter.WarmFromPostgres(ctx); err != nil {
		slog.Warn("rate limiter warm-up failed", slog.Any("error", err))
	}
	gate := ratelimiter.NewVendorGate(limiter)

	// AI client for transcript analysis
	var aicl domain.AIClient
	if cfg.UseMockAI {
		aicl = ai.NewMockClient()
		slog.Info("AI client initialized in mock mode")
	} else {
		aicl = aireal.New(cfg)
	}
	analyzer := ai.NewAnalyzer(aicl, cfg.ChatModel, cfg.MaxAnalyzeTokens)

	// Voice and telephony vendors
	script := *config.GetScriptConfig()
	live := ultravox.New(cfg, gate)
	scripted := fallback.New(script, "")
	telephony := twilio.New(cfg)
	if !cfg.TelephonyEnabled() {
		slog.Warn("telephony credentials missing - screening calls will fail until configured")
	}

	// Usecases
	screenSvc := usecase.NewScreenService(
		sessionRepo, candidateRepo, jobRepo,
		live, scripted, telephony,
		usecase.NewScriptBuilder(script),
		usecase.ScreenConfig{
			FromNumber:        cfg.TwilioPhoneNumber,
			StatusCallbackURL: cfg.PublicBaseURL + "/v1/candidates/callback/call-status",
			Voice: domain.VoiceConfig{
				Voice:       cfg.UltravoxVoice,
				Model:       cfg.UltravoxModel,
				Temperature: cfg.UltravoxTemperature,
				Recording:   cfg.UltravoxRecording,
			},
		},
	)
	reconcileSvc := usecase.NewReconcileService(sessionRepo, candidateRepo, jobRepo, live, analyzer)

	// Readiness checks
	dbCheck, redisCheck, voiceCheck := app.BuildReadinessChecks(cfg, pool, redisAdapter{rdb})

	// HTTP server
	srv := httpserver.NewServer(cfg, screenSvc, reconcileSvc, dbCheck, redisCheck, voiceCheck)
	handler := app.BuildRouter(cfg, srv)

	// Background sweep for calls whose status webhook never arrived.
	sweeper := app.NewStaleCallSweeper(sessionRepo, candidateRepo, cfg.StaleCallAfter, cfg.StaleSweepEvery, cfg.StaleSweepBatch)
	go sweeper.Run(ctx)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
