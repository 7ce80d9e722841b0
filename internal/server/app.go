// Package server wires configuration, storage, domain services and both
// transports (HTTP and gRPC) into a runnable application with graceful
// shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophprofile/internal/logging"
	"github.com/dmitrijs2005/gophprofile/internal/server/auth"
	"github.com/dmitrijs2005/gophprofile/internal/server/cache"
	"github.com/dmitrijs2005/gophprofile/internal/server/config"
	"github.com/dmitrijs2005/gophprofile/internal/server/events"
	"github.com/dmitrijs2005/gophprofile/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophprofile/internal/server/services"
	"github.com/dmitrijs2005/gophprofile/internal/server/storage"

	gs "github.com/dmitrijs2005/gophprofile/internal/server/grpc"
	hs "github.com/dmitrijs2005/gophprofile/internal/server/http"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const startupTimeout = 10 * time.Second

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	closers    []func() error
	httpServer *hs.Server
	grpcServer *gs.GRPCServer
}

// openDB is a seam for tests.
var openDB = sql.Open

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(c.LogLevel, os.Stdout)
	logger.Info(ctx, "Loaded configuration", "config", c)

	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	app := &App{config: c, logger: logger}
	if err := app.init(ctx); err != nil {
		app.close(ctx)
		return nil, err
	}
	return app, nil
}

func (app *App) init(ctx context.Context) error {
	c := app.config

	rm, err := repomanager.New(c.DatabaseDriver)
	if err != nil {
		return err
	}

	db, err := openDatabase(ctx, c)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	app.db = db
	app.closers = append(app.closers, db.Close)

	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	codec, err := auth.NewTokenCodec([]byte(c.SecretKey), c.SigningAlgorithm)
	if err != nil {
		return err
	}
	hasher := auth.NewPasswordHasher(c.BcryptCost)

	avatars, err := storage.NewS3AvatarStore(ctx, storage.S3Options{
		User:         c.S3RootUser,
		Password:     c.S3RootPassword,
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
		URLValidity:  c.AvatarURLValidity,
	})
	if err != nil {
		return fmt.Errorf("avatar storage: %w", err)
	}

	profileCache := app.profileCache(ctx)
	publisher := app.publisher(ctx)

	authService := services.NewAuthService(db, rm, codec, hasher, publisher, app.logger, c)
	profileService := services.NewProfileService(db, rm, profileCache, avatars, app.logger)

	app.httpServer = hs.NewServer(c.HTTPAddr, app.logger, authService, profileService)
	app.grpcServer = gs.NewGRPCServer(c.GRPCAddr, app.logger, authService)
	return nil
}

func openDatabase(ctx context.Context, c *config.Config) (*sql.DB, error) {
	dsn := c.DatabaseDSN
	if c.DatabaseDriver == repomanager.DriverMySQL {
		var err error
		if dsn, err = repomanager.NormalizeMySQLDSN(dsn); err != nil {
			return nil, err
		}
	}

	db, err := openDB(c.DatabaseDriver, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(c.DatabaseMaxOpenConns)
	db.SetMaxIdleConns(c.DatabaseMaxIdleConns)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// profileCache returns the redis cache, or a no-op one when redis is not
// configured or unreachable.
func (app *App) profileCache(ctx context.Context) cache.ProfileCache {
	c := app.config
	if c.RedisAddr == "" {
		return cache.NopProfileCache{}
	}

	client, err := cache.NewRedisClient(ctx, c.RedisAddr, c.RedisPassword, c.RedisDB)
	if err != nil {
		app.logger.Warn(ctx, "redis unavailable, profile cache disabled", "error", err)
		return cache.NopProfileCache{}
	}
	app.closers = append(app.closers, client.Close)
	return cache.NewRedisProfileCache(client, c.ProfileCacheTTL, app.logger)
}

// publisher returns the AMQP publisher, or a no-op one when the broker is
// not configured or unreachable.
func (app *App) publisher(ctx context.Context) events.Publisher {
	c := app.config
	if c.AMQPURL == "" {
		return events.NopPublisher{}
	}

	p, err := events.NewAMQPPublisher(c.AMQPURL, c.EventsQueue)
	if err != nil {
		app.logger.Warn(ctx, "broker unavailable, events disabled", "error", err)
		return events.NopPublisher{}
	}
	app.closers = append(app.closers, p.Close)
	return p
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves both transports until a signal arrives, ctx is cancelled or one
// of the servers fails, then stops the other and releases resources.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	serve := func(run func(context.Context) error) {
		defer wg.Done()
		if err := run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			cancelFunc()
		}
	}

	wg.Add(2)
	go serve(app.httpServer.Run)
	go serve(app.grpcServer.Run)

	wg.Wait()

	app.close(ctx)
	app.logger.Info(ctx, "App stopped")

	return errors.Join(errs...)
}

func (app *App) close(ctx context.Context) {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.logger.Warn(ctx, "close", "error", err)
		}
	}
	app.closers = nil
}
