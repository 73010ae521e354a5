// Package main - entry point for the LearnApp Practice Engine API.
//
// The engine tracks per-user mastery, streaks, and achievements, and
// orchestrates practice session and plan generation through an external
// content generator.
//
// The architecture follows Clean Architecture and DDD:
// - Domain: pure business logic without external dependencies
// - Application: use case orchestration (Commands/Queries/Event handlers)
// - Infrastructure: repositories, generator client, messaging
// - Interface: HTTP endpoints
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

	"github.com/joho/godotenv"

	"github.com/rdstettler/learnapp-sub001/config"

	// Application layer
	"github.com/rdstettler/learnapp-sub001/internal/application/command"
	"github.com/rdstettler/learnapp-sub001/internal/application/eventhandler"
	"github.com/rdstettler/learnapp-sub001/internal/application/query"

	// Domain layer
	"github.com/rdstettler/learnapp-sub001/internal/domain/exercise"
	"github.com/rdstettler/learnapp-sub001/internal/domain/shared"

	// Infrastructure layer
	"github.com/rdstettler/learnapp-sub001/internal/infrastructure/external/generator"
	"github.com/rdstettler/learnapp-sub001/internal/infrastructure/messaging"
	"github.com/rdstettler/learnapp-sub001/internal/infrastructure/persistence/postgres"
	"github.com/rdstettler/learnapp-sub001/internal/infrastructure/persistence/redis"
	"github.com/rdstettler/learnapp-sub001/internal/infrastructure/scheduler"
	"github.com/rdstettler/learnapp-sub001/internal/infrastructure/scheduler/jobs"

	// Interface layer
	httpserver "github.com/rdstettler/learnapp-sub001/internal/interface/http"

	// Packages
	"github.com/rdstettler/learnapp-sub001/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log, slogger := setupLoggers(cfg)
	log.Info("starting LearnApp Practice Engine",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DATABASE (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := connectDatabase(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. MIGRATIONS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("running database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("migrations completed")

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REDIS (optional)
	// ─────────────────────────────────────────────────────────────────────────
	var redisCache *redis.Cache
	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCache, err = redis.NewCache(redis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   3,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			log.Warn("failed to connect to Redis, falling back to in-process caches", logger.Err(err))
			redisCache = nil
		} else {
			defer redisCache.Close()
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")
	localBusConfig := messaging.DefaultInMemoryEventBusConfig()
	localBusConfig.Logger = slogger

	var eventBus shared.EventBus
	var closeBus func() error

	if redisCache != nil && cfg.Features.IsEnabled(config.FeatureDistributedEvents) {
		redisBus, err := messaging.NewRedisEventBus(messaging.RedisEventBusConfig{
			Client:         redisCache.Client(),
			LocalBusConfig: localBusConfig,
			Logger:         slogger,
		})
		if err != nil {
			return fmt.Errorf("failed to create redis event bus: %w", err)
		}
		eventBus = redisBus
		closeBus = redisBus.Close
		log.Info("using distributed event bus")
	} else {
		localBus := messaging.NewInMemoryEventBus(localBusConfig)
		eventBus = localBus
		closeBus = localBus.Close
	}
	defer func() {
		log.Info("closing event bus...")
		_ = closeBus()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 7. REPOSITORIES AND CACHES
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	progressRepo := postgres.NewProgressRepository(dbConn)
	activityRepo := postgres.NewActivityRepository(dbConn)
	exerciseRepo := postgres.NewExerciseRepository(dbConn)
	achievementRepo := postgres.NewAchievementRepository(dbConn)
	feedbackRepo := postgres.NewFeedbackRepository(dbConn)
	outcomeRepo := postgres.NewOutcomeRepository(dbConn)
	sessionRepo := postgres.NewSessionRepository(dbConn)
	generationLogRepo := postgres.NewGenerationLogRepository(dbConn)

	var exerciseCache exercise.Cache = exercise.NewMemoryCache()
	if redisCache != nil {
		exerciseCache = redis.NewExerciseCache(redisCache)
	}
	resolver := exercise.NewResolver(exerciseRepo, exerciseCache)

	var streakCache *redis.StreakCache
	if redisCache != nil && cfg.Features.IsEnabled(config.FeatureStreakCache) {
		streakCache = redis.NewStreakCache(redisCache)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. CONTENT GENERATOR CLIENT
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing content generator client...")
	genConfig := generator.DefaultClientConfig(cfg.Generator.APIKey)
	genConfig.BaseURL = cfg.Generator.BaseURL
	genConfig.Model = cfg.Generator.Model
	genConfig.Timeout = cfg.Generator.RequestTimeout
	genConfig.MaxCompletionTokens = cfg.Generator.MaxCompletionTokens
	genConfig.Logger = slogger
	genClient := generator.NewClient(genConfig)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. APPLICATION LAYER (Commands, Queries)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")

	recordOutcomeCmd := command.NewRecordOutcomeHandler(progressRepo, activityRepo, outcomeRepo, resolver, eventBus)
	generateSessionCmd := command.NewGenerateSessionHandler(outcomeRepo, sessionRepo, progressRepo, generationLogRepo, genClient, eventBus, log)
	generatePlanCmd := command.NewGeneratePlanHandler(outcomeRepo, sessionRepo, progressRepo, generationLogRepo, genClient, eventBus, log)
	completeTasksCmd := command.NewCompleteTasksHandler(sessionRepo, activityRepo, eventBus)
	abandonPlanCmd := command.NewAbandonPlanHandler(sessionRepo, eventBus)
	checkAchievementsCmd := command.NewCheckAchievementsHandler(progressRepo, activityRepo, sessionRepo, feedbackRepo, achievementRepo, eventBus)
	submitFeedbackCmd := command.NewSubmitFeedbackHandler(feedbackRepo, eventBus)

	var streakQueryCache query.StreakCache
	if streakCache != nil {
		streakQueryCache = streakCache
	}
	getStreakQuery := query.NewGetStreakHandler(activityRepo, streakQueryCache)
	listAchievementsQuery := query.NewListAchievementsHandler(achievementRepo)
	getActiveSessionQuery := query.NewGetActiveSessionHandler(sessionRepo, outcomeRepo, exerciseRepo)
	getActivePlanQuery := query.NewGetActivePlanHandler(sessionRepo)

	// ─────────────────────────────────────────────────────────────────────────
	// 10. EVENT HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Features.IsEnabled(config.FeatureAchievements) {
		log.Info("registering event handlers...")
		var invalidator eventhandler.StreakInvalidator
		if streakCache != nil {
			invalidator = streakCache
		}
		outcomeHandler := eventhandler.NewOnOutcomeRecordedHandler(checkAchievementsCmd, invalidator, log)
		if err := outcomeHandler.Register(eventBus); err != nil {
			return fmt.Errorf("failed to register event handlers: %w", err)
		}
	} else {
		log.Info("achievement evaluation disabled by feature flag")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 11. MAINTENANCE SCHEDULER
	// ─────────────────────────────────────────────────────────────────────────
	var maintenance *scheduler.Scheduler
	if cfg.Maintenance.Enabled {
		log.Info("initializing maintenance scheduler...")
		maintenance = scheduler.NewScheduler(scheduler.SchedulerConfig{Logger: slogger})

		purgeJob := jobs.NewPurgeHistoryJob(generationLogRepo, cfg.Maintenance.HistoryRetention, slogger)
		if err := maintenance.AddJob(purgeJob, scheduler.NewIntervalSchedule(cfg.Maintenance.Interval)); err != nil {
			return fmt.Errorf("failed to register maintenance job: %w", err)
		}
		if err := maintenance.Start(); err != nil {
			return fmt.Errorf("failed to start maintenance scheduler: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 12. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing HTTP server...")

	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.Server.Host
	httpConfig.Port = cfg.Server.Port
	httpConfig.ReadTimeout = cfg.Server.ReadTimeout
	httpConfig.WriteTimeout = cfg.Server.WriteTimeout
	httpConfig.IdleTimeout = cfg.Server.IdleTimeout
	httpConfig.EnableCORS = cfg.Server.EnableCORS
	httpConfig.AllowedOrigins = cfg.Server.AllowedOrigins
	httpConfig.RateLimitPerMinute = cfg.Server.RateLimitPerMinute

	httpDeps := httpserver.Dependencies{
		RecordOutcomeHandler:     recordOutcomeCmd,
		GenerateSessionHandler:   generateSessionCmd,
		GeneratePlanHandler:      generatePlanCmd,
		CompleteTasksHandler:     completeTasksCmd,
		AbandonPlanHandler:       abandonPlanCmd,
		CheckAchievementsHandler: checkAchievementsCmd,
		SubmitFeedbackHandler:    submitFeedbackCmd,
		GetStreakHandler:         getStreakQuery,
		ListAchievementsHandler:  listAchievementsQuery,
		GetActiveSessionHandler:  getActiveSessionQuery,
		GetActivePlanHandler:     getActivePlanQuery,
		Logger:                   log,
		HealthChecker:            dbConn,
		Features:                 cfg.Features,
	}

	httpServer := httpserver.NewServer(httpConfig, httpDeps)

	// ─────────────────────────────────────────────────────────────────────────
	// 13. START AND GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server", logger.String("address", httpServer.Address()))
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	log.Info("LearnApp Practice Engine is running",
		logger.String("http_address", httpServer.Address()),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("service error", logger.Err(err))
		return err
	case <-ctx.Done():
		log.Info("context cancelled")
	}

	log.Info("starting graceful shutdown...", logger.String("timeout", cfg.App.ShutdownTimeout.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", logger.Err(err))
		return err
	}

	if maintenance != nil {
		if err := maintenance.Stop(shutdownCtx); err != nil {
			log.Warn("failed to stop maintenance scheduler gracefully", logger.Err(err))
		}
	}

	// Event bus and database close via defers.
	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLoggers builds the application logger plus an slog.Logger for
// infrastructure packages that take one.
func setupLoggers(cfg *config.Config) (*logger.Logger, *slog.Logger) {
	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	log := logger.New(opts)

	slogOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.App.Debug {
		slogOpts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, slogOpts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, slogOpts)
	}

	slogger := slog.New(handler)
	slog.SetDefault(slogger)

	return log, slogger
}

// connectDatabase opens the connection pool, preferring DATABASE_URL
// and falling back to a local development default.
func connectDatabase(ctx context.Context, cfg *config.Config) (*postgres.Connection, error) {
	if cfg.Database.URL != "" {
		return postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	}

	pgCfg := postgres.DefaultConfig()
	pgCfg.Host = "localhost"
	pgCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	pgCfg.MinConns = int32(cfg.Database.MaxIdleConns)
	pgCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	pgCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime
	return postgres.NewConnection(ctx, pgCfg)
}
