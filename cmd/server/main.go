package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cafe-team.backend/internal/config"
	"cafe-team.backend/internal/domain/entities"
	"cafe-team.backend/internal/infrastructure/datasources/postgres"
	"cafe-team.backend/internal/infrastructure/realtime"
	"cafe-team.backend/internal/infrastructure/repositories"
	"cafe-team.backend/internal/infrastructure/storage"
	"cafe-team.backend/internal/interfaces/http/handlers"
	"cafe-team.backend/internal/interfaces/http/middleware"
	"cafe-team.backend/internal/usecases"
	"cafe-team.backend/pkg/jwt"
	"cafe-team.backend/pkg/logger"
	"cafe-team.backend/pkg/redis"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	connectDB  = postgres.NewConnection
	migrateDB  = postgres.Migrate
	openDB     = func(sqlDB *sql.DB) (*gorm.DB, error) {
		return gorm.Open(gormpostgres.New(gormpostgres.Config{
			Conn:                 sqlDB,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	runServer = func(ctx context.Context, srv *http.Server, timeout time.Duration) error {
		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	ctx := context.Background()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
		logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	defer redis.Close()
	logger.Info(ctx, "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	sqlDB, err := connectDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer sqlDB.Close()

	if cfg.Database.AutoMigrate {
		if err := migrateDB(sqlDB); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Info(ctx, "Database migrated")
	}

	db, err := openDB(sqlDB)
	if err != nil {
		return fmt.Errorf("failed to open gorm: %w", err)
	}

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, 0)

	// Team member stack
	feed := realtime.NewFeed(splitOrigins(cfg.Server.AllowedOrigins))
	bucket := storage.NewLocalBucket(cfg.Storage.Root, entities.ImageBucket, cfg.Storage.PublicBaseURL)
	teamMemberRepo := repositories.NewTeamMemberRepository(db)
	teamMemberUsecase := usecases.NewTeamMemberUsecase(teamMemberRepo, bucket).WithPublisher(feed)
	teamMemberHandler := handlers.NewTeamMemberHandler(teamMemberUsecase, cfg.Storage.MaxUploadSize)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware())
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	applyCORSMiddleware(r, cfg.Server.AllowedOrigins)
	registerHealthRoute(r)
	registerAPIV1Routes(r, routeDeps{
		teamMemberHandler: teamMemberHandler,
		authMiddleware:    middleware.AuthMiddleware(jwtService),
		adminRole:         cfg.JWT.AdminRole,
		idempotency:       middleware.IdempotencyMiddleware(cfg.Redis.IdempotencyTTL),
		events:            feed,
		storageDir:        bucket.Dir(),
	})

	for _, route := range r.Routes() {
		logger.Debug(ctx, "Route registered", zap.String("method", route.Method), zap.String("path", route.Path))
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}
	logger.Info(ctx, "Cafe team backend starting",
		zap.String("port", cfg.Server.Port),
		zap.String("api", "http://localhost:"+cfg.Server.Port+"/api/v1"),
	)

	if err := runServer(runCtx, srv, cfg.Server.ShutdownTimeout); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	logger.Info(ctx, "Server stopped")
	return nil
}
