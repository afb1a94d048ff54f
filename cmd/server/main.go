package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/Christentimmy/CasaRanche-Backend/internal/domain/common"
	_ "github.com/Christentimmy/CasaRanche-Backend/internal/domain/post"
	_ "github.com/Christentimmy/CasaRanche-Backend/internal/domain/user"
	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/config"
	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/middleware"
	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/push"
	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/registry"
	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/uploader"
	"github.com/Christentimmy/CasaRanche-Backend/internal/pkg/worker"
	"github.com/Christentimmy/CasaRanche-Backend/pkg/database"
	"github.com/Christentimmy/CasaRanche-Backend/pkg/logger"
	"github.com/Christentimmy/CasaRanche-Backend/pkg/response"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 15 * time.Second

func main() {
	config.LoadConfig()
	cfg := config.GlobalConfig

	lg, err := logger.Init(logger.Config{Level: cfg.Log.Level, Dev: cfg.Log.Dev})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, lg); err != nil {
		lg.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg config.Config, lg *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. 基础设施
	db, err := database.InitDatabase(cfg.Database, cfg.App.Debug, lg)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	rdb, err := database.InitRedis(cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	workers := worker.NewWorkerPool(worker.Options{
		Workers:     cfg.Worker.Workers,
		QueueSize:   cfg.Worker.QueueSize,
		MaxRetry:    cfg.Worker.MaxRetry,
		RetryDelay:  time.Second,
		TaskTimeout: 30 * time.Second,
	}, lg.Named("worker"))
	workers.Start()

	// OSS 未配置时仍可发纯文本帖
	var up uploader.Uploader
	if oss, err := uploader.NewAliyunOSSUploader(cfg.OSS, cfg.App.MaxUploadMB); err != nil {
		lg.Warn("object storage disabled", zap.Error(err))
	} else {
		up = oss
	}

	// 2. 路由
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst)
	r.Use(
		middleware.RecoveryMiddleware(),
		middleware.LoggerMiddleware(),
		middleware.SecurityHeadersMiddleware(),
		cors.New(cors.Config{
			AllowOrigins:     cfg.Server.AllowOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.RateLimitMiddleware(limiter),
	)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			response.Error(c, http.StatusServiceUnavailable, response.ErrServerInternal, "database unavailable")
			return
		}
		response.Success(c, gin.H{"status": "ok"})
	})

	// 3. 模块
	if err := registry.InitModules(&registry.ModuleContext{
		Config:   &cfg,
		Logger:   lg,
		DB:       db,
		Redis:    rdb,
		Router:   r,
		Workers:  workers,
		Uploader: up,
		Push:     push.New(cfg.Push, lg.Named("push")),
	}); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		database.NewPoolMonitor(sqlDB, 0, lg.Named("db")).Run(gctx)
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				limiter.Cleanup(10 * time.Minute)
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		lg.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// 先停止接收请求，再把已提交的后续任务跑完
		if err := srv.Shutdown(shutdownCtx); err != nil {
			lg.Warn("http server shutdown failed", zap.Error(err))
		}
		if err := workers.Stop(shutdownCtx); err != nil {
			lg.Warn("worker pool drain incomplete", zap.Error(err))
		}
		return nil
	})

	return g.Wait()
}
