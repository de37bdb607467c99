package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"giveaway-bot-backend/internal/common/config"
	"giveaway-bot-backend/internal/common/logger"
	giveawayhttp "giveaway-bot-backend/internal/features/giveaway/delivery/http"
	"giveaway-bot-backend/internal/features/giveaway/models"
	"giveaway-bot-backend/internal/features/giveaway/repository"
	filerepo "giveaway-bot-backend/internal/features/giveaway/repository/file"
	redisrepo "giveaway-bot-backend/internal/features/giveaway/repository/redis"
	"giveaway-bot-backend/internal/features/giveaway/service"
	"giveaway-bot-backend/internal/platform/console"
	redisplatform "giveaway-bot-backend/internal/platform/redis"
)

func main() {
	cfg := config.Load()
	logger.Init("giveaway-bot-backend", cfg.Debug)

	seed, err := config.LoadSeed(cfg.SeedPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.SeedPath).Msg("Failed to load tenant seed")
	}

	ctx := context.Background()

	repo, closeRepo, err := buildRepository(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.Storage.Backend).Msg("Failed to initialize state store")
	}
	defer closeRepo()

	defaults := service.Defaults{
		Timezone:       seed.Defaults.Timezone,
		ManualDuration: time.Duration(seed.Defaults.DurationMinutes) * time.Minute,
		Cooldown: models.CooldownPolicy{
			Enabled:            seed.Defaults.Cooldown.Enabled,
			Days:               seed.Defaults.Cooldown.Days,
			RecordWhenDisabled: seed.Defaults.Cooldown.RecordWhenDisabled,
		},
	}

	svc := service.NewService(repo, console.NewSink(), defaults)
	if err := svc.Load(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to load persisted state")
	}
	if err := svc.Bootstrap(ctx, seed); err != nil {
		logger.Fatal().Err(err).Msg("Failed to apply tenant seed")
	}

	scheduler := service.NewScheduler(svc, cfg.Scheduler.TickInterval)
	// Missed transitions are applied before the API starts serving.
	if err := scheduler.CatchUp(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Startup catch-up failed")
	}
	scheduler.Start()
	defer scheduler.Stop()

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	giveawayhttp.RegisterHealthRoutes(router)
	handler := giveawayhttp.NewGiveawayHandler(svc)
	handler.RegisterRoutes(router.Group("/api/v1"))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	logger.Info().Msg("Server exited")
}

func buildRepository(ctx context.Context, cfg *config.Config) (repository.TenantRepository, func(), error) {
	switch cfg.Storage.Backend {
	case "redis":
		client, err := redisplatform.Open(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return redisrepo.NewRedisTenantRepository(client.Client), func() { _ = client.Close() }, nil
	case "file", "":
		repo, err := filerepo.NewFileTenantRepository(cfg.Storage.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
