package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/kevinaaaquil/bookstore/cache"
	"github.com/kevinaaaquil/bookstore/config"
	"github.com/kevinaaaquil/bookstore/handlers"
	"github.com/kevinaaaquil/bookstore/service"
	"github.com/kevinaaaquil/bookstore/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.LogDevMode {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.NewMongoDB(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		return err
	}
	if err := db.EnsureIndexes(ctx); err != nil {
		return err
	}
	rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	logger.Info("connected", zap.String("mongodb", cfg.DBName), zap.String("redis", rdb.Options().Addr))

	carts := service.NewCartService(db, logger)
	deps := handlers.Deps{
		Store:     db,
		Cache:     cache.New(rdb, cfg.CacheTTL, logger),
		Blacklist: cache.NewBlacklist(rdb),
		Tokens:    service.NewTokenManager(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		Carts:     carts,
		ISBN:      service.NewISBNLookup(cfg.GoogleBooksURL),
		Logger:    logger,

		RefreshTTL:         cfg.RefreshTokenTTL,
		CORSOrigins:        cfg.CORSOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		AllowBulkReset:     cfg.AllowBulkReset,
	}
	if cfg.FirebaseEnabled() {
		fb, err := service.NewFirebaseVerifier(ctx, cfg.FirebaseCredentialsFile)
		if err != nil {
			return err
		}
		deps.Firebase = fb
	} else {
		logger.Warn("FIREBASE_CREDENTIALS_FILE not set; /auth/firebase disabled")
	}
	if cfg.GoogleEnabled() {
		deps.Google = service.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL)
	} else {
		logger.Warn("Google OAuth not configured; /auth/google disabled")
	}
	if cfg.S3Enabled() {
		covers, err := service.NewCoverStorage(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3AccessKeyID, cfg.S3SecretKey)
		if err != nil {
			return err
		}
		deps.Covers = covers
	} else {
		logger.Warn("AWS_S3_BUCKET not set; book covers disabled")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		if derr := db.Disconnect(shutdownCtx); derr != nil {
			logger.Warn("mongodb disconnect", zap.Error(derr))
		}
		if cerr := rdb.Close(); cerr != nil {
			logger.Warn("redis close", zap.Error(cerr))
		}
		return err
	})
	return g.Wait()
}
