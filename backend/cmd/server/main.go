package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shiftcare/backend/config"
	"shiftcare/backend/internal/api/handler"
	"shiftcare/backend/internal/api/middleware"
	"shiftcare/backend/internal/api/router"
	"shiftcare/backend/internal/event"
	"shiftcare/backend/internal/job"
	"shiftcare/backend/internal/notify"
	"shiftcare/backend/internal/realtime"
	"shiftcare/backend/internal/repository"
	"shiftcare/backend/internal/service"
	"shiftcare/backend/internal/swap"
	"shiftcare/backend/pkg/database"
	"shiftcare/backend/pkg/jwt"
	applogger "shiftcare/backend/pkg/logger"
	"shiftcare/backend/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	// 1. config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log, "server")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting shiftcare",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. database
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("connect database failed", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB failed", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	// 4. redis is optional: without it logout cannot revoke and rate limiting is off
	var (
		blacklist middleware.TokenBlacklist
		limiter   middleware.RateLimiter
		revoker   handler.TokenRevoker
	)
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, token blacklist and rate limiting disabled", zap.Error(err))
		rdb = nil
	} else {
		blacklist, limiter, revoker = rdb, rdb, rdb
	}

	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 5. realtime hub and event dispatcher
	rootCtx, stopRoot := context.WithCancel(context.Background())
	defer stopRoot()

	hub := realtime.NewHub(logger, cfg.Server.CORS.AllowOrigins)
	go hub.Run(rootCtx)

	dispatcher := event.NewDispatcher(event.Options{
		Buffer:  cfg.Swap.EventBuffer,
		Workers: cfg.Swap.EventWorkers,
	}, logger)

	// 6. repository -> service -> handler
	repo := repository.NewRepository(db)
	svc := service.NewService(repo, dispatcher, logger)

	notifier := notify.NewNotifier(repo, hub, logger)
	dispatcher.Subscribe("notifier", notifier.Handle, swap.AllEventTypes...)
	dispatcher.Subscribe("reassigner", svc.Reassign.HandleApproved, swap.EventApproved)
	dispatcher.Start()

	// 7. expiry job
	scheduler, err := job.NewScheduler(cfg.Swap.ExpiryCron, job.NewExpiryJob(svc.Swap, logger), logger)
	if err != nil {
		logger.Fatal("init expiry scheduler failed", zap.Error(err))
	}
	scheduler.Start()

	// 8. HTTP
	gin.SetMode(gin.ReleaseMode)
	h := handler.NewHandler(svc, handler.Deps{
		Hub:     hub,
		Revoker: revoker,
		DB:      sqlDB,
		Logger:  logger,
	})
	engine := router.Setup(cfg, h, jwtMgr, blacklist, limiter, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	// 9. graceful shutdown: HTTP, cron, event queue, then connections
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http shutdown failed", zap.Error(err))
	}
	if err := scheduler.Stop(ctx); err != nil {
		logger.Error("expiry scheduler stop failed", zap.Error(err))
	}
	if err := dispatcher.Close(ctx); err != nil {
		logger.Error("event dispatcher drain failed", zap.Error(err))
	}
	stopRoot()

	if err := sqlDB.Close(); err != nil {
		logger.Error("close database failed", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}

	logger.Info("server stopped")
}
