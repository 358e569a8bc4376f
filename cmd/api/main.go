// @title           Ka-Kha-Ga API
// @version         1.0
// @description     Partner/parent accounts, parent invitations, and transactional email for the therapy progress platform.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/piyushAgrawal44/ka-kha-ga/internal/api"
	"github.com/piyushAgrawal44/ka-kha-ga/internal/core/service"
	mongodb "github.com/piyushAgrawal44/ka-kha-ga/internal/infrastructure/db/mongo"
	redisdb "github.com/piyushAgrawal44/ka-kha-ga/internal/infrastructure/db/redis"
	"github.com/piyushAgrawal44/ka-kha-ga/internal/infrastructure/queue"
	"github.com/piyushAgrawal44/ka-kha-ga/internal/infrastructure/smtp"
	"github.com/piyushAgrawal44/ka-kha-ga/internal/pkg/config"
	"github.com/piyushAgrawal44/ka-kha-ga/internal/pkg/opaque"
	"github.com/piyushAgrawal44/ka-kha-ga/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	mongoClient, db, err := mongodb.Connect(runCtx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}

	rdb, err := redisdb.Connect(runCtx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}

	codec, err := opaque.NewCodec(cfg.EncryptionKey)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid encryption key")
	}

	// --- Repositories ---
	userRepo := mongodb.NewUserRepository(db)
	invitationRepo := mongodb.NewInvitationRepository(db)
	emailRepo := mongodb.NewEmailRepository(db)

	for _, ensure := range []func(context.Context) error{
		userRepo.EnsureIndexes,
		invitationRepo.EnsureIndexes,
		emailRepo.EnsureIndexes,
	} {
		if err := ensure(runCtx); err != nil {
			log.Fatal().Err(err).Msg("index creation failed")
		}
	}

	// --- Services ---
	sender := smtp.NewSender(smtp.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	emailService := service.NewEmailService(emailRepo, sender, cfg.SMTP.MaxRetries, cfg.SMTP.RetryDelay, log)
	invitationService := service.NewInvitationService(invitationRepo, userRepo, codec, log)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry, log)
	limiter := redisdb.NewRateLimiter(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window)

	// --- Background workers ---
	retrier := queue.NewEmailRetrier(emailService, cfg.Retrier.Interval, cfg.Retrier.Batch, log)
	retrier.Start(runCtx)

	// --- HTTP server ---
	e := api.NewRouter(api.Dependencies{
		AuthService:       authService,
		InvitationService: invitationService,
		EmailService:      emailService,
		Limiter:           limiter,
		Mongo:             db,
		Redis:             rdb,
		JWTSecret:         cfg.JWTSecret,
		CORSOrigins:       cfg.CORSOrigins,
		InviteBaseURL:     cfg.InviteBaseURL,
		Logger:            log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("api listening")

	<-runCtx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("mongo disconnect failed")
	}
	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("redis close failed")
	}
}
