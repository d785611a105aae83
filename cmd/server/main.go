package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"plan-it/backend/config"
	"plan-it/backend/internal/api/handler"
	"plan-it/backend/internal/api/middleware"
	"plan-it/backend/internal/api/router"
	"plan-it/backend/internal/repository"
	"plan-it/backend/internal/repository/mongorepo"
	"plan-it/backend/internal/service"
	"plan-it/backend/pkg/database"
	"plan-it/backend/pkg/jwt"
	applogger "plan-it/backend/pkg/logger"
	"plan-it/backend/pkg/mailer"
	"plan-it/backend/pkg/metrics"
	"plan-it/backend/pkg/mongodb"
	"plan-it/backend/pkg/mq"
	"plan-it/backend/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml）")
	flag.Parse()

	// 0. 加载 .env（不存在时忽略）
	_ = godotenv.Load()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接存储
	var (
		repo     *repository.Repository
		sqlStore *gorm.DB
		mongoCli *mongo.Client
	)
	switch cfg.Database.Driver {
	case config.DriverMongo:
		client, db, err := mongodb.Connect(context.Background(), &cfg.Mongo, logger)
		if err != nil {
			logger.Fatal("MongoDB 连接失败", zap.Error(err))
		}
		if err := mongorepo.EnsureIndexes(context.Background(), db); err != nil {
			logger.Fatal("MongoDB 索引创建失败", zap.Error(err))
		}
		mongoCli = client
		repo = mongorepo.NewRepository(db)
	default:
		db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
		if err != nil {
			logger.Fatal("数据库连接失败", zap.Error(err))
		}
		if err := migrate(cfg.Database.Driver, db, logger); err != nil {
			logger.Fatal("数据库迁移失败", zap.Error(err))
		}
		sqlStore = db
		repo = repository.NewRepository(db)
	}

	// 4. 连接 Redis（可选：连接失败时限流降级为放行）
	var limiter middleware.RateLimiter
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，认证接口限流将不可用", zap.Error(err))
	} else {
		limiter = rdb
	}

	// 5. 事件发布与邮件（未配置时降级）
	publisher, err := mq.NewPublisher(&cfg.MQ, logger)
	if err != nil {
		logger.Warn("RabbitMQ 连接失败，审核事件将不会发布", zap.Error(err))
		publisher = mq.NopPublisher{}
	}
	mail := mailer.New(&cfg.Mail, logger)

	// 6. 指标与 JWT
	m := metrics.New()
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 7. 依赖注入: Repository → Service → Handler
	svc := service.NewService(service.Deps{
		Config:    cfg,
		Repo:      repo,
		JWT:       jwtMgr,
		Mailer:    mail,
		Publisher: publisher,
		Metrics:   m,
		Logger:    logger,
	})

	bootstrapCtx, cancelBootstrap := context.WithTimeout(context.Background(), 10*time.Second)
	if err := svc.Auth.EnsureSuperAdmin(bootstrapCtx, cfg.Auth.Bootstrap); err != nil {
		logger.Fatal("初始化超级管理员失败", zap.Error(err))
	}
	cancelBootstrap()

	h := handler.NewHandler(svc, &cfg.Auth)

	// 8. 初始化路由
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.Setup(router.Deps{
		Config:   cfg,
		Handler:  h,
		Resolver: svc.Auth,
		Limiter:  limiter,
		Metrics:  m,
		Logger:   logger,
	})

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	if err := publisher.Close(); err != nil {
		logger.Warn("关闭 RabbitMQ 连接失败", zap.Error(err))
	}

	if sqlStore != nil {
		if sqlDB, err := sqlStore.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if mongoCli != nil {
		_ = mongoCli.Disconnect(ctx)
	}
	if rdb != nil {
		_ = rdb.Close()
	}

	logger.Info("服务器已关闭")
}

// migrate SQLite 使用 AutoMigrate，PostgreSQL 执行版本化迁移
func migrate(driver string, db *gorm.DB, logger *zap.Logger) error {
	if driver == config.DriverSQLite {
		return database.AutoMigrate(db)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	return database.RunMigrations(sqlDB, logger)
}
