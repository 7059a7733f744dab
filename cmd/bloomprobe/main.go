package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bloomprobe/internal/config"
	"github.com/kailas-cloud/bloomprobe/internal/db"
	dbMemory "github.com/kailas-cloud/bloomprobe/internal/db/memory"
	dbMinio "github.com/kailas-cloud/bloomprobe/internal/db/minio"
	dbRedis "github.com/kailas-cloud/bloomprobe/internal/db/redis"
	"github.com/kailas-cloud/bloomprobe/internal/domain/bloom"
	logpkg "github.com/kailas-cloud/bloomprobe/internal/logger"
	"github.com/kailas-cloud/bloomprobe/internal/metrics"
	bucketrepo "github.com/kailas-cloud/bloomprobe/internal/repository/bucket"
	descriptorrepo "github.com/kailas-cloud/bloomprobe/internal/repository/descriptor"
	chiTransport "github.com/kailas-cloud/bloomprobe/internal/transport/chi"
	healthuc "github.com/kailas-cloud/bloomprobe/internal/usecase/health"
	lookupuc "github.com/kailas-cloud/bloomprobe/internal/usecase/lookup"
	"github.com/kailas-cloud/bloomprobe/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting bloomprobe API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := newStore(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterLookupMetrics()

	compression, err := bucketrepo.ParseCompression(cfg.Storage.Compression)
	if err != nil {
		logger.Fatal("Invalid storage config", zap.Error(err))
	}
	buckets := bucketrepo.New(store, cfg.Storage.KeyPrefix, compression)
	descriptors, err := descriptorrepo.New(store, cfg.Storage.KeyPrefix, bloom.SerialWidth(cfg.Storage.SerialWidth))
	if err != nil {
		logger.Fatal("Invalid storage config", zap.Error(err))
	}

	lookupSvc, err := lookupuc.New(buckets, descriptors, lookupuc.Options{
		MaxBuckets:  cfg.Pipeline.MaxBuckets,
		Concurrency: cfg.Pipeline.Concurrency,
		KeyKind:     lookupuc.KeyKind(cfg.Pipeline.KeyKind),
		Charset:     cfg.Pipeline.TextCharset,
		StrictText:  cfg.Pipeline.StrictText,
	}, logger)
	if err != nil {
		logger.Fatal("Invalid pipeline config", zap.Error(err))
	}
	logger.Info("Lookup pipeline ready",
		zap.Int("max_buckets", cfg.Pipeline.MaxBuckets),
		zap.Int("concurrency", cfg.Pipeline.Concurrency),
		zap.String("key_kind", cfg.Pipeline.KeyKind),
		zap.String("compression", compression.String()),
	)

	healthSvc := healthuc.New(store, descriptors)

	server := chiTransport.NewServer(lookupSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// newStore creates the database store for the configured driver.
// Redis and Valkey share the rueidis store.
func newStore(cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case config.DriverRedis, config.DriverValkey:
		return dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	case config.DriverMinio:
		return dbMinio.NewStore(dbMinio.Config{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			Prefix:    cfg.Minio.Prefix,
			Secure:    cfg.Minio.Secure,
		})
	case config.DriverMemory:
		return dbMemory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
