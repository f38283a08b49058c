package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/huproof/internal/huproof/http"
	"github.com/aussiebroadwan/huproof/internal/huproof/events"
	"github.com/aussiebroadwan/huproof/internal/huproof/proof"
	"github.com/aussiebroadwan/huproof/internal/huproof/service"
	"github.com/aussiebroadwan/huproof/internal/huproof/store"
	"github.com/aussiebroadwan/huproof/internal/huproof/store/drivers/postgres"
	"github.com/aussiebroadwan/huproof/internal/huproof/store/drivers/sqlite"
	"github.com/aussiebroadwan/huproof/pkg/cryptox"
	"github.com/aussiebroadwan/huproof/pkg/httpx"
	"github.com/aussiebroadwan/huproof/pkg/jwtx"
	"github.com/aussiebroadwan/huproof/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

// BuildVersion is overridden at link time:
//
//	go build -ldflags "-X github.com/aussiebroadwan/huproof/internal/huproof/app.BuildVersion=v1.2.3"
var BuildVersion = "dev"

const (
	// sessionKeyInfo separates the session signing key from anything else
	// derived from APP_SECRET.
	sessionKeyInfo = "huproof session v1"

	// reserveSlack is added to the verify timeout so a reservation always
	// outlives the verification it guards.
	reserveSlack = 5 * time.Second
)

// Application encapsulates the huproof server with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db        store.Store
	verifier  proof.Verifier
	keyPath   string
	redis     *redis.Client // nil unless a redis backend is configured
	publisher events.Publisher
	limiters  httpapi.Limiters

	// Services
	nonceLedger         *service.NonceLedger
	commitmentService   *service.CommitmentService
	sessionService      *service.SessionService
	enrollmentService   *service.EnrollmentService
	loginService        *service.LoginService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "huproof",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	ctx := context.Background()

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}

	steps := []func(context.Context) error{
		app.initVerifier,
		app.initRedis,
		app.initEvents,
		app.initLimiters,
		app.initServices,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			app.closeDependencies()
			return nil, err
		}
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("huproof starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"origin", app.cfg.Origin,
		"verifier", app.verifier.Name(),
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			app.closeDependencies()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down huproof...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	if err := app.closeDependencies(); err != nil {
		return err
	}

	app.logger.Info("huproof stopped")
	return nil
}

// closeDependencies releases everything New opened. The database goes last
// so in-flight publishes and limiter calls never see a closed store.
func (app *Application) closeDependencies() error {
	if app.publisher != nil {
		if err := app.publisher.Close(); err != nil {
			app.logger.Error("error closing event publisher", "error", err)
		}
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database", "error", err)
			return err
		}
	}
	return nil
}

// initDatabase opens the configured driver and applies migrations
func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.DBDriver {
	case "postgres":
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL)
	default:
		host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
		db, err = sqlite.NewStore(host)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		app.db = nil
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DBDriver)
	return nil
}

// initVerifier resolves the verification key and selects the proof backend.
// The key is resolved even in bypass mode so a misconfigured reference is
// caught before the bypass is switched off.
func (app *Application) initVerifier(ctx context.Context) error {
	if app.cfg.BypassZKVerify {
		bypass, err := proof.NewBypass(app.cfg.Env, app.logger)
		if err != nil {
			return err
		}
		app.verifier = bypass
		app.logger.Warn("zero-knowledge verification is bypassed, every proof is accepted", "env", app.cfg.Env)

		if path, err := proof.ResolveKey(ctx, app.cfg.VKeyRef, app.cfg.VKeyCacheDir, app.cfg.S3); err == nil {
			app.keyPath = path
		} else {
			app.logger.Warn("verification key unavailable", "ref", app.cfg.VKeyRef, "error", err)
		}
		return nil
	}

	path, err := proof.ResolveKey(ctx, app.cfg.VKeyRef, app.cfg.VKeyCacheDir, app.cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to resolve verification key %q: %w", app.cfg.VKeyRef, err)
	}
	app.keyPath = path

	snark := proof.NewSnarkJS(app.cfg.SnarkJSBinary, app.cfg.VerifyTimeout, app.logger)
	if err := snark.Ready(); err != nil {
		// readyz reports this until the binary appears; requests get 503
		app.logger.Error("proof verifier not ready", "error", err)
	}
	app.verifier = snark

	app.logger.Info("proof verifier configured", "verifier", snark.Name(), "key", path, "key_id", app.cfg.VKeyID)
	return nil
}

// initRedis connects to redis when either the limiter or the event bus uses it
func (app *Application) initRedis(ctx context.Context) error {
	if app.cfg.RateLimitBackend != "redis" && app.cfg.EventsBackend != "redis" {
		return nil
	}

	opts, err := redis.ParseURL(app.cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	app.redis = client
	app.logger.Info("redis connected", "addr", opts.Addr)
	return nil
}

// initEvents selects the domain event transport
func (app *Application) initEvents(_ context.Context) error {
	switch app.cfg.EventsBackend {
	case "redis":
		pub, err := events.NewRedisStreamPublisher(app.redis, app.cfg.EventsExchange+".")
		if err != nil {
			return fmt.Errorf("failed to create redis stream publisher: %w", err)
		}
		app.publisher = pub
	case "amqp":
		pub, err := events.NewAMQPPublisher(app.cfg.AMQPURL, app.cfg.EventsExchange)
		if err != nil {
			return fmt.Errorf("failed to create amqp publisher: %w", err)
		}
		app.publisher = pub
	default:
		app.publisher = events.Noop{}
	}

	app.logger.Info("event publisher configured", "backend", app.cfg.EventsBackend)
	return nil
}

// initLimiters builds the admission budgets on the configured backend
func (app *Application) initLimiters(_ context.Context) error {
	trusted, err := httpx.ParseTrustedProxies(app.cfg.TrustedProxies)
	if err != nil {
		return fmt.Errorf("failed to parse trusted proxies: %w", err)
	}
	key := httpx.ClientIPKeyExtractor(trusted)
	budgets := app.cfg.RateLimits

	if app.cfg.RateLimitBackend != "redis" {
		app.limiters = httpapi.MemoryLimiters(budgets, key)
		return nil
	}

	app.limiters = httpapi.Limiters{
		EnrollStart: httpx.NewRedisLimiter(app.redis, "enroll_start", budgets.EnrollStart),
		LoginStart:  httpx.NewRedisLimiter(app.redis, "login_start", budgets.LoginStart),
		Finish:      httpx.NewRedisLimiter(app.redis, "finish", budgets.Finish),
		Lenient:     httpx.NewRedisLimiter(app.redis, "lenient", budgets.Lenient),
		Key:         key,
	}
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices(_ context.Context) error {
	key, err := cryptox.DeriveKey([]byte(app.cfg.AppSecret), sessionKeyInfo, 32)
	if err != nil {
		return fmt.Errorf("failed to derive session key: %w", err)
	}
	signer, err := jwtx.NewHS256(key)
	if err != nil {
		return fmt.Errorf("failed to create session signer: %w", err)
	}

	gate := &service.Gate{
		Verifier: app.verifier,
		KeyPath:  app.keyPath,
		KeyID:    app.cfg.VKeyID,
		Timeout:  app.cfg.VerifyTimeout,
	}

	app.nonceLedger = &service.NonceLedger{
		Store:      app.db,
		TTL:        app.cfg.NonceTTL,
		ReserveFor: app.cfg.VerifyTimeout + reserveSlack,
	}
	app.commitmentService = &service.CommitmentService{Store: app.db}
	app.sessionService = &service.SessionService{
		Store:  app.db,
		Signer: signer,
		TTL:    app.cfg.SessionTTL,
		Events: app.publisher,
	}
	app.enrollmentService = &service.EnrollmentService{
		Store:       app.db,
		Nonces:      app.nonceLedger,
		Commitments: app.commitmentService,
		Gate:        gate,
		Events:      app.publisher,
		TauDefault:  app.cfg.TauDefault,
		TauMax:      app.cfg.TauMax,
	}
	app.loginService = &service.LoginService{
		Store:       app.db,
		Nonces:      app.nonceLedger,
		Commitments: app.commitmentService,
		Sessions:    app.sessionService,
		Gate:        gate,
		Events:      app.publisher,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.HousekeepingRetention,
	)
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.cfg.Origin,
		BuildVersion,
		app.db,
		app.verifier,
		app.limiters,
		app.logger,
	)

	// Wire services to router
	router.EnrollmentService = app.enrollmentService
	router.LoginService = app.loginService
	router.SessionService = app.sessionService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
