package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"cafe-team.backend/internal/config"
	plog "cafe-team.backend/pkg/logger"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func withMainHooks(t *testing.T) {
	t.Helper()
	origLoadDotenv := loadDotenv
	origLoadCfg := loadCfg
	origInitLog := initLog
	origInitRedis := initRedis
	origConnectDB := connectDB
	origMigrateDB := migrateDB
	origOpenDB := openDB
	origRunServer := runServer

	t.Cleanup(func() {
		loadDotenv = origLoadDotenv
		loadCfg = origLoadCfg
		initLog = origInitLog
		initRedis = origInitRedis
		connectDB = origConnectDB
		migrateDB = origMigrateDB
		openDB = origOpenDB
		runServer = origRunServer
	})

	loadDotenv = func(...string) error { return nil }
	loadCfg = baseTestConfig
	initLog = plog.Init
	initRedis = func(string, string) error { return nil }
}

func baseTestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:            "18080",
			Env:             "development",
			AllowedOrigins:  "*",
			ShutdownTimeout: time.Second,
		},
		Database: config.DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "postgres",
			DBName:   "cafe",
			SSLMode:  "disable",
		},
		Redis: config.RedisConfig{
			URL:            "redis://localhost:6379",
			IdempotencyTTL: time.Hour,
		},
		JWT: config.JWTConfig{
			Secret:    "secret",
			AdminRole: "authenticated",
		},
		Storage: config.StorageConfig{
			Root:          "",
			PublicBaseURL: "http://localhost:18080/storage/v1/object/public",
			MaxUploadSize: 1 << 20,
		},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

func useSQLite(t *testing.T) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)

	connectDB = func(config.DatabaseConfig) (*sql.DB, error) { return sqlDB, nil }
	openDB = func(*sql.DB) (*gorm.DB, error) { return gdb, nil }
}

func TestRunMainProcess_RedisInitError(t *testing.T) {
	withMainHooks(t)
	initRedis = func(string, string) error { return errors.New("redis down") }

	err := runMainProcess()
	require.ErrorContains(t, err, "failed to initialize redis")
}

func TestRunMainProcess_DBConnectError(t *testing.T) {
	withMainHooks(t)
	connectDB = func(config.DatabaseConfig) (*sql.DB, error) { return nil, errors.New("dial tcp refused") }

	err := runMainProcess()
	require.ErrorContains(t, err, "failed to connect to database")
}

func TestRunMainProcess_MigrateError(t *testing.T) {
	withMainHooks(t)
	useSQLite(t)
	loadCfg = func() *config.Config {
		cfg := baseTestConfig()
		cfg.Database.AutoMigrate = true
		return cfg
	}
	migrateDB = func(*sql.DB) error { return errors.New("goose up: dirty") }

	err := runMainProcess()
	require.ErrorContains(t, err, "failed to migrate database")
}

func TestRunMainProcess_GormOpenError(t *testing.T) {
	withMainHooks(t)
	useSQLite(t)
	openDB = func(*sql.DB) (*gorm.DB, error) { return nil, errors.New("bad dialector") }

	err := runMainProcess()
	require.ErrorContains(t, err, "failed to open gorm")
}

func TestRunMainProcess_ServerRunError(t *testing.T) {
	withMainHooks(t)
	useSQLite(t)
	runServer = func(context.Context, *http.Server, time.Duration) error { return errors.New("listen failed") }

	err := runMainProcess()
	require.ErrorContains(t, err, "failed to start server")
}

func TestRunMainProcess_SuccessPath(t *testing.T) {
	withMainHooks(t)
	useSQLite(t)
	var addr string
	runServer = func(_ context.Context, srv *http.Server, timeout time.Duration) error {
		addr = srv.Addr
		require.Equal(t, time.Second, timeout)
		require.NotNil(t, srv.Handler)
		return http.ErrServerClosed
	}

	require.NoError(t, runMainProcess())
	require.Equal(t, ":18080", addr)
}
