package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jabbarSoomro/project-management/internal/config"
	"github.com/jabbarSoomro/project-management/internal/model"
	"github.com/jabbarSoomro/project-management/internal/notifier"
	"github.com/jabbarSoomro/project-management/internal/pkg/logger"
	"github.com/jabbarSoomro/project-management/internal/pkg/metrics"
	"github.com/jabbarSoomro/project-management/internal/pkg/notify"
	"github.com/jabbarSoomro/project-management/internal/pkg/notifyqueue"
	"github.com/jabbarSoomro/project-management/internal/store"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// main 是通知投递服务的入口函数。
//
// 它负责：
// 1. 加载配置
// 2. 初始化日志记录器
// 3. 连接 MySQL 与 Redis
// 4. 启动消费循环与 Metrics 服务
// 5. 优雅关闭
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLogger := logger.NewDefault(cfg.App.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := gorm.Open(mysql.Open(cfg.MySQL.DSN), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		appLogger.Error("connect mysql failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Project{}, &model.Task{}); err != nil {
		appLogger.Error("migrate failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		appLogger.Error("connect redis failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	metrics.InitMetrics(cfg.App.WorkerPoolSize)

	hostname, _ := os.Hostname()
	consumer, err := notifyqueue.NewConsumer(
		rdb,
		appLogger,
		cfg.App.NotifyQueueStream,
		cfg.App.NotifyQueueGroup,
		hostname,
		notifyqueue.WithBlockTime(cfg.App.ConsumerBlock),
		notifyqueue.WithPendingIdle(cfg.App.PendingIdle),
		notifyqueue.WithMaxRetry(cfg.App.MaxRetry),
	)
	if err != nil {
		appLogger.Error("init consumer failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	worker := notifier.NewWorker(
		consumer,
		store.NewGormTaskStore(db),
		notify.NewEmailNotifier(&cfg.Email, appLogger),
		appLogger,
		cfg.App.WorkerPoolSize,
		cfg.App.QueueCapacity,
	)

	metricsAddr := ":2112"
	if v := os.Getenv("NOTIFIER_METRICS_ADDR"); v != "" {
		metricsAddr = v
	}
	metricsServer := &http.Server{
		Addr:    metricsAddr,
		Handler: promhttp.Handler(),
	}
	go func() {
		appLogger.Info("notifier metrics server started", slog.String("addr", metricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("metrics server stopped with error", slog.String("error", err.Error()))
		}
	}()

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		appLogger.Error("worker loop stopped", slog.String("error", err.Error()))
	}

	appLogger.Info("shutting down notifier service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("metrics shutdown error", slog.String("error", err.Error()))
	}
	if err := rdb.Close(); err != nil {
		appLogger.Error("close redis failed", slog.String("error", err.Error()))
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			appLogger.Error("close mysql failed", slog.String("error", err.Error()))
		}
	}

	appLogger.Info("notifier service stopped gracefully")
}
