package main

import (
	"log"

	"github.com/blues/ivp/internal/cache"
	"github.com/blues/ivp/internal/config"
	"github.com/blues/ivp/internal/logger"
	"github.com/blues/ivp/internal/logic"
	"github.com/blues/ivp/internal/repository"
	"github.com/blues/ivp/internal/router"
	"github.com/blues/ivp/internal/storage"
	"github.com/blues/ivp/internal/task"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	if err := logger.Setup(cfg.Log); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// 初始化数据库
	db, err := repository.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// 为存量产品补齐slug
	if n, err := logic.BackfillSlugs(db); err != nil {
		logger.Warn("Slug backfill failed: %v", err)
	} else if n > 0 {
		logger.Info("Backfilled slugs for %d products", n)
	}

	// 初始化结果缓存
	rc := cache.New()

	// 初始化媒体存储，未配置时禁用上传
	var uploader storage.Uploader
	if cfg.Storage.Bucket != "" {
		uploader, err = storage.NewS3Uploader(cfg.Storage)
		if err != nil {
			logger.Fatal("Failed to initialize storage: %v", err)
		}
	} else {
		logger.Warn("Storage bucket not configured, media upload disabled")
	}

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(db, rc, uploader, cfg)

	// 启动定时任务
	manager := task.Start(db, rc, cfg)
	defer manager.Stop()

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
