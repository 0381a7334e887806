package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iliyamo/local-services-api/internal/config"
	"github.com/iliyamo/local-services-api/internal/database"
	"github.com/iliyamo/local-services-api/internal/handler"
	"github.com/iliyamo/local-services-api/internal/logging"
	"github.com/iliyamo/local-services-api/internal/metrics"
	"github.com/iliyamo/local-services-api/internal/queue"
	"github.com/iliyamo/local-services-api/internal/repository"
	"github.com/iliyamo/local-services-api/internal/router"
	"github.com/iliyamo/local-services-api/internal/service"
	"github.com/iliyamo/local-services-api/internal/storage"
	"github.com/iliyamo/local-services-api/internal/validation"
)

func main() {
	_ = godotenv.Load() // .env is optional

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.IsProduction())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	os.Exit(exitCode(logger, run(cfg, logger)))
}

// exitCode logs a failed run and flushes the logger before the process
// exits; os.Exit skips deferred calls.
func exitCode(logger *zap.Logger, err error) int {
	code := 0
	if err != nil {
		logger.Error("server exited", zap.Error(err))
		code = 1
	}
	_ = logger.Sync()
	return code
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db, database.MySQL); err != nil {
			return err
		}
		logger.Info("schema applied")
	}

	rcfg := config.LoadRedisConfig()
	rdb, err := config.NewRedisClient(rcfg)
	if err != nil {
		// Redis only backs optional features; run without it.
		logger.Warn("redis unavailable, continuing without it", zap.Error(err))
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	var revoked service.RevocationStore = service.NewMemoryRevocationStore()
	if rdb != nil {
		revoked = service.NewRedisRevocationStore(rdb, "revoked:")
	}

	var events service.EventPublisher
	if cfg.EventsEnabled {
		pub := queue.NewPublisher(cfg.AMQPURL)
		defer pub.Close()
		events = pub
		consumer := &queue.Consumer{URL: cfg.AMQPURL, LogDir: cfg.BookingLogDir, Log: logger.Named("consumer")}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("booking consumer stopped", zap.Error(err))
			}
		}()
	}

	v := validation.New()
	m := metrics.New("local_services")
	customers := repository.NewCustomerRepo(db)
	pros := repository.NewProfessionalRepo(db)

	tokens := service.NewTokenService(cfg.JWTSecret, time.Duration(cfg.AccessTTLMin)*time.Minute, revoked)
	creds := service.NewCredentialStore(customers, pros, v, cfg.BcryptCost)
	dir := service.NewDirectory(repository.NewProfileRepo(db), v)
	ledger := service.NewLedger(repository.NewBookingRepo(db), customers, pros, v, events, m, logger)

	e := router.New(router.Deps{
		Config:    cfg,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
		DB:        db,
		Redis:     rdb,
		Log:       logger,
		Metrics:   m,
		Validator: v,
		Tokens:    tokens,
		Auth:      handler.NewAuthHandler(creds, tokens, logger),
		Pros:      handler.NewProfessionalHandler(dir, storage.NewDiskImageStore(cfg.UploadDir, 5<<20), logger),
		Bookings:  handler.NewBookingHandler(ledger, logger),
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
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

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
