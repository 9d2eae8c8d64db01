package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-review-api/internal/config"
	"github.com/noah-isme/gema-review-api/internal/database"
	"github.com/noah-isme/gema-review-api/internal/handler"
	"github.com/noah-isme/gema-review-api/internal/middleware"
	"github.com/noah-isme/gema-review-api/internal/repository"
	"github.com/noah-isme/gema-review-api/internal/router"
	"github.com/noah-isme/gema-review-api/internal/service"
	"github.com/noah-isme/gema-review-api/internal/session"
	"github.com/noah-isme/gema-review-api/pkg/ai"
	"github.com/noah-isme/gema-review-api/pkg/notify"
	"github.com/noah-isme/gema-review-api/pkg/plagiarism"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	repos, closeStore, err := repository.Open(repository.StorageConfig{
		Driver:      cfg.StorageDriver,
		DataDir:     cfg.DataDir,
		DatabaseURL: cfg.DatabaseURL,
	})
	if err != nil {
		log.Fatalf("failed to open record stores: %v", err)
	}
	defer closeStore()

	// An unreadable credential table is fatal; nobody could log in.
	users, err := repos.Users.List(context.Background())
	if err != nil {
		log.Fatalf("failed to load credentials: %v", err)
	}
	if len(users) == 0 {
		logger.Warn().Msg("no users provisioned; add one with the provision add-user command")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var sessions session.Store = session.NewMemoryStore(cfg.SessionTTL)
	if redisClient != nil {
		sessions = session.NewRedisStore(redisClient, "", cfg.SessionTTL)
	}

	reviewer, err := ai.NewOpenAIReviewer(ai.OpenAIConfig{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
		Timeout: cfg.OpenAITimeout,
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("failed to create feedback client: %v", err)
	}

	notifier, natsConn, err := buildNotifier(cfg, logger)
	if err != nil {
		log.Fatalf("failed to configure notifications: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	authService := service.NewAuthService(repos.Users, sessions, validate, service.AuthConfig{
		Secret:     cfg.JWTSecret,
		TokenTTL:   cfg.TokenTTL,
		DailyLimit: cfg.DailyLimit,
	}, logger)
	reviewService := service.NewReviewService(service.ReviewDependencies{
		Repositories: repos,
		Reviewer:     reviewer,
		Notifier:     notifier,
		Sessions:     sessions,
		Checker:      plagiarism.NewChecker(cfg.DuplicateThreshold),
		Validator:    validate,
	}, service.ReviewConfig{
		DailyLimit: cfg.DailyLimit,
		Recipient:  cfg.NotifyRecipient,
	}, logger)
	leaderboardService := service.NewLeaderboardService(repos.Leaderboard, redisClient, cfg.DashboardCacheTTL, validate, logger)

	authHandler := handler.NewAuthHandler(authService, cfg.DailyLimit, logger)
	reviewHandler := handler.NewReviewHandler(reviewService, int64(cfg.MaxUploadBytes()), logger)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    cfg.MaxUploadBytes() + 1024*1024,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.OpenAITimeout + 30*time.Second,
	})

	probes := map[string]handler.HealthProbe{
		"storage": func(ctx context.Context) error {
			_, err := repos.Users.List(ctx)
			return err
		},
	}
	if redisClient != nil {
		probes["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSAllowOrigins})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:        authHandler,
		ReviewHandler:      reviewHandler,
		LeaderboardHandler: leaderboardHandler,
		JWTMiddleware:      middleware.JWTProtected(cfg.JWTSecret, sessions),
		LoginLimiter:       middleware.RateLimit("login", cfg.LoginRateLimit, cfg.LoginRateWindow),
		HealthProbes:       probes,
	})

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress()).Str("storage", cfg.StorageDriver).Str("model", cfg.OpenAIModel).Msg("review api listening")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, logger)
}

func buildNotifier(cfg config.Config, logger zerolog.Logger) (notify.Notifier, *nats.Conn, error) {
	var primary notify.Notifier
	switch cfg.NotifyDriver {
	case config.NotifySMTP:
		smtpNotifier, err := notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:          cfg.SMTPHost,
			Port:          cfg.SMTPPort,
			Username:      cfg.SMTPUsername,
			Password:      cfg.SMTPPassword,
			From:          cfg.NotifyFrom,
			SubjectPrefix: cfg.NotifySubjectPrefix,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		primary = smtpNotifier
	case config.NotifySendgrid:
		sendgridNotifier, err := notify.NewSendgridNotifier(notify.SendgridConfig{
			APIKey:        cfg.SendgridAPIKey,
			From:          cfg.NotifyFrom,
			FromName:      cfg.AppName,
			SubjectPrefix: cfg.NotifySubjectPrefix,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		primary = sendgridNotifier
	default:
		primary = notify.NewLogNotifier(logger)
	}

	if cfg.NATSURL == "" {
		return primary, nil, nil
	}

	conn, err := nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
	if err != nil {
		return nil, nil, err
	}
	natsNotifier, err := notify.NewNATSNotifier(conn, cfg.NATSSubject, logger)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	return notify.Multi{primary, natsNotifier}, conn, nil
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
