package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"rentaldesk/internal/config"
	"rentaldesk/internal/database"
	jwtsvc "rentaldesk/internal/pkg/jwt"
	"rentaldesk/internal/pkg/lock"
	"rentaldesk/internal/pkg/logger"
	"rentaldesk/internal/repository"
	"rentaldesk/internal/server"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := logger.New(cfg.LogLevel)
	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL, database.Options{
		MaxOpenConns: cfg.MaxOpenConns,
		MaxIdleConns: cfg.MaxIdleConns,
		Debug:        cfg.LogLevel == "debug" || cfg.LogLevel == "trace",
	}, log)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	var locker lock.Locker = lock.Nop{}
	var rdb *redis.Client
	if cfg.RedisAddress != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisLocker, client, err := lock.Connect(ctx, cfg.RedisAddress)
		cancel()
		if err != nil {
			log.WithError(err).Fatal("redis connection failed")
		}
		locker, rdb = redisLocker, client
		log.WithField("address", cfg.RedisAddress).Info("payment locks backed by redis")
	}

	router := server.NewRouter(server.Deps{
		DB:          db,
		Tokens:      jwtsvc.New(cfg.JWTSecret, 24*time.Hour),
		Locker:      locker,
		Log:         log,
		CORSOrigins: cfg.CORSOrigins,
		HorizonDays: cfg.HorizonDays,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"addr": srv.Addr, "env": cfg.AppEnv}).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("http server shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
