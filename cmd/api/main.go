package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"outdoor-furniture/internal/bootstrap"
	"outdoor-furniture/internal/core/auth"
	"outdoor-furniture/internal/core/cache"
	"outdoor-furniture/internal/core/config"
	"outdoor-furniture/internal/core/logger"
	"outdoor-furniture/internal/core/server"
	"outdoor-furniture/internal/service"
	"outdoor-furniture/internal/transport/http/handler"
	"outdoor-furniture/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(logger.Options{
		Level: cfg.Log.Level,
		JSON:  cfg.Log.JSON,
		Rotate: logger.FileRotate{
			Enable:     cfg.Log.File.Enable,
			Filename:   cfg.Log.File.Filename,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	// 存储（失败直接 Fatal）
	ctx, cancel := context.WithTimeout(context.Background(), bootstrap.ConnectTimeout)
	st, err := bootstrap.OpenStore(ctx, cfg.DB, log, cfg.DB.AutoMigrate)
	cancel()
	if err != nil {
		log.Fatal("store open", zap.Error(err))
	}
	log.Info("store connected", zap.String("driver", cfg.DB.Driver))

	checks := map[string]handler.Pinger{"store": st.Ping}

	// 商品缓存（可选）
	var rc *cache.Cache
	if cfg.Redis.Addr != "" {
		rc = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := rc.Ping(context.Background()); err != nil {
			log.Warn("redis unreachable, catalog cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = rc.Close()
			rc = nil
		} else {
			checks["redis"] = rc.Ping
			defer rc.Close()
		}
	}

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}

	r := router.NewAPIEngine(log, cfg.App, router.Deps{
		JWT:       jwter,
		Directory: service.NewDirectory(st.Users, log),
		Purchases: service.NewPurchases(st.Purchases),
		Catalog:   service.NewCatalog(st.Products, rc, time.Duration(cfg.Redis.CatalogTTLSec)*time.Second),
		Checks:    checks,
	})

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r, log,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	// 启动日志
	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("outdoor-furniture api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("metrics", baseURL+"/metrics"),
	)

	// 异步启动
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("api start FAILED", zap.Error(err))
		}
	}()
	log.Info(fmt.Sprintf("Outdoor-furniture is running on port %d", cfg.App.HTTP.Port))

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	if err := st.Close(ctx); err != nil {
		log.Warn("store close", zap.Error(err))
	}
	log.Info("api stopped gracefully")
}
