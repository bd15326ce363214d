package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task-manager/internal/auth"
	"task-manager/internal/config"
	"task-manager/internal/repository"
	"task-manager/internal/server"
	"task-manager/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config", "err", err)
		os.Exit(1)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		logger.Error("db", "err", err)
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	authSvc := service.NewAuthService(db, userRepo, tokens)
	taskSvc := service.NewTaskService(db, taskRepo, categoryRepo)
	categorySvc := service.NewCategoryService(db, categoryRepo, taskRepo)
	reminderSvc := service.NewReminderService(userRepo, taskRepo, logger)

	srv := server.New(cfg, authSvc, taskSvc, categorySvc, logger)

	scheduler := service.NewSchedulerService(time.Local)
	if cfg.DigestInterval > 0 {
		if _, err := scheduler.ScheduleInterval(cfg.DigestInterval, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := reminderSvc.DigestAll(jobCtx, time.Now()); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("digest", "err", err)
			}
		}); err != nil {
			logger.Error("schedule digest", "err", err)
			os.Exit(1)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Handler(),
	}

	go func() {
		logger.Info("task manager API started", "addr", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped with error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
	logger.Info("shutdown complete")
}
