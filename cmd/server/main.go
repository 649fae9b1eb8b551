package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/axelgear/design-integration/internal/config"
	"github.com/axelgear/design-integration/internal/design/entity"
	"github.com/axelgear/design-integration/internal/design/handler"
	"github.com/axelgear/design-integration/internal/design/repository"
	"github.com/axelgear/design-integration/internal/design/service"
	"github.com/axelgear/design-integration/internal/middleware"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting design-integration service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.User{},
		&entity.SalesOrder{},
		&entity.SalesOrderItem{},
		&entity.Item{},
		&entity.BOM{},
		&entity.DesignRequest{},
		&entity.DesignRequestItem{},
		&entity.DesignVersion{},
		&entity.StageTransition{},
		&entity.Comment{},
	); err != nil {
		zapLogger.Warn("AutoMigrate warning", zap.Error(err))
	}
	zapLogger.Info("Database migration completed")

	rdb := initRedis(cfg.Redis)

	uploader, err := initMinIO(cfg.MinIO)
	if err != nil {
		zapLogger.Warn("File storage unavailable, uploads disabled", zap.Error(err))
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(db, repos, rdb, cfg, zapLogger)
	handlers := handler.NewHandlers(services, cfg, uploader)

	// Daily sweep for items open past the overdue threshold.
	checkerCtx, stopChecker := context.WithCancel(context.Background())
	go services.Dashboard.RunOverdueChecker(checkerCtx, 24*time.Hour)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")
	stopChecker()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func initMinIO(cfg config.MinIOConfig) (*minio.Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint not configured")
	}
	return minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/users", h.Auth.ListUsers)

			salesOrders := authorized.Group("/sales-orders")
			{
				salesOrders.GET("/:orderId/eligible-items", h.Request.EligibleItems)
				salesOrders.POST("/:orderId/design-requests", h.Request.CreateFromOrder)
			}

			requests := authorized.Group("/design-requests")
			{
				requests.GET("", h.Request.List)
				requests.GET("/:id", h.Request.Get)
				requests.POST("/:id/close", h.Request.Close)
				requests.POST("/:id/reopen", h.Request.Reopen)
				requests.POST("/:id/assign", h.Request.Assign)
				requests.POST("/:id/comments", h.Request.AddComment)
			}

			items := authorized.Group("/design-items")
			{
				items.GET("", h.Item.List)
				items.GET("/:id", h.Item.Get)
				items.PUT("/:id/design-status", h.Item.UpdateDesignStatus)
				items.PUT("/:id/approval-status", h.Item.UpdateApprovalStatus)
				items.POST("/:id/revision", h.Item.MarkRevision)
				items.PUT("/:id/new-item-code", h.Item.SetNewItemCode)
				items.PUT("/:id/bom-name", h.Item.SetBOMName)
				items.POST("/:id/assign", h.Item.Assign)
				items.PUT("/:id/approval-remarks", h.Item.SetApprovalRemarks)
				items.GET("/:id/transitions", h.Item.Transitions)

				items.GET("/:id/versions", h.Version.List)
				items.POST("/:id/versions", h.Version.Create)
				items.GET("/:id/versions/next-tag", h.Version.NextTag)
				items.DELETE("/:id/versions/:versionId", h.Version.Delete)
			}

			authorized.GET("/design-versions/meta", h.Version.Meta)

			dashboard := authorized.Group("/dashboard")
			{
				dashboard.GET("", h.Dashboard.Get)
				dashboard.GET("/overdue", h.Dashboard.Overdue)
			}

			authorized.POST("/uploads", h.Upload.Upload)
			authorized.GET("/files/*object", h.Upload.Download)
		}
	}
}
