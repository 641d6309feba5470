package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auth_api/internal/api"
	"auth_api/internal/app/service"
	"auth_api/internal/common/messages"
	"auth_api/internal/common/security"
	"auth_api/internal/domain/repository"
	"auth_api/internal/platform/config"
	"auth_api/internal/platform/database"
	"auth_api/internal/platform/kv"
	"auth_api/internal/platform/logger"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped with error")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx := context.Background()

	// 2. Messages, hashing, tokens
	msgs, err := messages.Load(cfg.MessagesFile)
	if err != nil {
		return err
	}
	hasher, err := security.NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		return err
	}
	tokens, err := security.NewTokenIssuer(cfg.JWTKey, cfg.JWTExp)
	if err != nil {
		return err
	}

	// 3. Credential store
	var userRepo repository.UserRepository
	switch cfg.StoreDriver {
	case config.StoreDriverRedis:
		var rdb *redis.Client
		rdb, err = kv.ConnectRedis(ctx, kv.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}, log)
		if err != nil {
			return err
		}
		defer kv.CloseRedis(rdb, log)
		userRepo = repository.NewRedisUserRepository(rdb, cfg.RedisKeyPrefix)
	default:
		var db *sql.DB
		db, err = database.Connect(ctx, cfg.DBConnStr, log)
		if err != nil {
			return err
		}
		defer database.Close(db, log)
		if cfg.DBRunMigrations {
			if err = database.Migrate(ctx, db); err != nil {
				return err
			}
			log.Info("Database migrations applied")
		}
		userRepo = repository.NewPgUserRepository(db)
	}

	// 4. Service & router
	authService := service.NewAuthService(userRepo, hasher, tokens, log,
		service.WithLoginPasswordPolicy(cfg.LoginEnforcePasswordPolicy))

	router := api.NewRouter(authService, tokens, msgs, log, api.RouterOptions{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		UsersRequireAuth: cfg.UsersRequireAuth,
	})

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 5. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.APIPort).WithField("store", cfg.StoreDriver).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("could not listen on %s: %w", cfg.APIPort, err)
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-stop:
	}

	log.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info("Server stopped gracefully")
	return nil
}
