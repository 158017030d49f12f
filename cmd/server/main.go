// Package main is the entry point for the tutoring backend API server.
//
// The architecture follows Clean Architecture and DDD:
// - Domain: pure business logic without external dependencies
// - Application: use-case orchestration (Commands/Queries)
// - Infrastructure: repository implementations, cache
// - Interface: HTTP endpoints and the identity-provider webhook
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/BrunoPessoa22/tutoria-ia-backend/config"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/application/command"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/application/query"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/achievement"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/infrastructure/persistence/postgres"
	redisinfra "github.com/BrunoPessoa22/tutoria-ia-backend/internal/infrastructure/persistence/redis"
	httpserver "github.com/BrunoPessoa22/tutoria-ia-backend/internal/interface/http"
	"github.com/BrunoPessoa22/tutoria-ia-backend/pkg/logger"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Options{
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.App.Debug,
	})
	log.Info("starting",
		logger.String("app", cfg.App.Name),
		logger.String("version", cfg.App.Version),
		logger.String("env", string(cfg.App.Environment)),
	)

	// ── PostgreSQL ───────────────────────────────────────────────────────

	pgCfg := postgres.DefaultConfig(cfg.Database.URL)
	pgCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	pgCfg.MinConns = int32(cfg.Database.MaxIdleConns)
	pgCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	pgCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

	conn, err := postgres.NewConnection(ctx, pgCfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer conn.Close()

	if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// ── Redis (optional) ─────────────────────────────────────────────────

	var statsCache *redisinfra.StatsCache
	if !cfg.Redis.Disabled {
		redisCfg := redisinfra.DefaultConfig(cfg.Redis.URL)
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		client, err := redisinfra.NewClient(ctx, redisCfg)
		if err != nil {
			// Cache is an optimization; run without it rather than fail.
			log.Warn("redis unavailable, running without stats cache", logger.Err(err))
		} else {
			defer client.Close()
			statsCache = redisinfra.NewStatsCache(client, cfg.Redis.StatsTTL)
		}
	}

	// ── Repositories ─────────────────────────────────────────────────────

	users := postgres.NewUserRepository(conn)
	progressRepo := postgres.NewProgressRepository(conn)
	streaks := postgres.NewStreakRepository(conn)
	achievements := postgres.NewAchievementRepository(conn)
	conversations := postgres.NewConversationRepository(conn)
	statsReader := postgres.NewStatsReader(conn)

	// ── Application handlers ─────────────────────────────────────────────

	rules := achievement.NewRuleSet(achievement.RulesConfig{
		LessonMilestones: cfg.Achievements.LessonMilestones,
		StreakMilestones: cfg.Achievements.StreakMilestones,
		LevelMilestones:  cfg.Achievements.LevelMilestones,
	})
	granter := command.NewAchievementGranter(rules, achievements, log)
	bounds := command.CurriculumBounds{
		MaxLevel:  cfg.Curriculum.MaxLevel,
		MaxModule: cfg.Curriculum.MaxModule,
		MaxLesson: cfg.Curriculum.MaxLesson,
	}

	// A nil *StatsCache stored in an interface is not a nil interface;
	// leave both interfaces nil when the cache is off.
	var invalidator command.StatsInvalidator
	var cacheReader query.StatsCache
	if statsCache != nil {
		invalidator = statsCache
		cacheReader = statsCache
	}

	deps := httpserver.Dependencies{
		SyncUser:          command.NewSyncUserHandler(users, conn, invalidator, log),
		DeleteUser:        command.NewDeleteUserHandler(users, conn, invalidator, log),
		RecordCompletion:  command.NewRecordCompletionHandler(users, progressRepo, streaks, granter, conn, invalidator, bounds, log),
		RecordActivity:    command.NewRecordActivityHandler(users, streaks, progressRepo, granter, conn, invalidator, log),
		LogConversation:   command.NewLogConversationHandler(conversations, invalidator, log),
		LogQuestion:       command.NewLogQuestionHandler(conversations, invalidator, log),
		GetUserStats:      query.NewGetUserStatsHandler(statsReader, cacheReader, log),
		GetProgress:       query.NewGetProgressHandler(users, progressRepo, streaks),
		ListAchievements:  query.NewListAchievementsHandler(users, achievements),
		ListConversations: query.NewListConversationsHandler(users, conversations),
		DB:                conn,
		Logger:            log,
	}

	// ── HTTP server ──────────────────────────────────────────────────────

	serverCfg := httpserver.DefaultConfig()
	serverCfg.Host = cfg.HTTP.Host
	serverCfg.Port = cfg.HTTP.Port
	serverCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	serverCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	serverCfg.IdleTimeout = cfg.HTTP.IdleTimeout
	serverCfg.EnableCORS = cfg.HTTP.EnableCORS
	serverCfg.AllowedOrigins = cfg.HTTP.AllowedOrigins
	serverCfg.WebhookSecret = cfg.HTTP.WebhookSecret

	server := httpserver.NewServer(serverCfg, deps)
	errCh := server.StartAsync()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("stopped")
	return nil
}
