// Command server runs the accounts HTTP API.
//
// @title        Accounts API
// @version      1.0
// @description  Account signup, login and profile management.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/accounts-api/internal/api"
	"github.com/sirpyerre/accounts-api/internal/core/ports"
	"github.com/sirpyerre/accounts-api/internal/core/service"
	mongodb "github.com/sirpyerre/accounts-api/internal/infrastructure/db/mongo"
	redisdb "github.com/sirpyerre/accounts-api/internal/infrastructure/db/redis"
	"github.com/sirpyerre/accounts-api/internal/infrastructure/security"
	"github.com/sirpyerre/accounts-api/internal/infrastructure/storage"
	"github.com/sirpyerre/accounts-api/internal/pkg/config"
	"github.com/sirpyerre/accounts-api/pkg/logger"
)

const (
	shutdownTimeout = 10 * time.Second
	bodyLimit       = "10M"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "accounts-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- MongoDB ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = client.Disconnect(dctx)
	}()
	log.Info().Str("database", db.Name()).Msg("mongodb connected")

	hasher := security.NewBcryptHasher(security.DefaultCost)
	repo := mongodb.NewAccountRepository(db, hasher)
	if err := repo.EnsureIndexes(ctx); err != nil {
		// Existing duplicates prevent the unique indexes; the service pre-check still applies.
		log.Warn().Err(err).Msg("could not create account indexes")
	}

	// --- Redis (optional) ---
	var (
		rdb   *goredis.Client
		guard service.IdentityGuard
	)
	if cfg.Redis.Addr != "" {
		rdb, err = redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		guard = redisdb.NewIdentityGuard(rdb)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected, identity guard enabled")
	}

	// --- Image storage ---
	images, uploadDir, err := newImageStore(ctx, cfg.Uploads)
	if err != nil {
		return err
	}
	log.Info().Str("backend", cfg.Uploads.Backend).Msg("image storage ready")

	// --- HTTP ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc := service.NewAccountService(repo, hasher, images, guard, logger.Named("account_service"))
	e := api.NewRouter(api.Options{
		Service:   svc,
		Logger:    log,
		Registry:  reg,
		Mongo:     db,
		Redis:     rdb,
		StaticDir: cfg.StaticDir,
		UploadDir: uploadDir,
		BodyLimit: bodyLimit,
	})

	errCh := make(chan error, 1)
	go func() {
		addr := net.JoinHostPort("", cfg.Port)
		log.Info().Str("addr", addr).Msg("http server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}

// newImageStore returns the configured backend and, for the disk backend, the
// directory to expose under /uploads.
func newImageStore(ctx context.Context, cfg config.UploadConfig) (ports.ImageStore, string, error) {
	if cfg.Backend == config.BackendS3 {
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		return store, "", err
	}

	store, err := storage.NewDiskStore(cfg.Dir)
	if err != nil {
		return nil, "", err
	}
	return store, store.Dir(), nil
}
