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

	membershiphttp "github.com/aussiebroadwan/membership/internal/membership/http"
	"github.com/aussiebroadwan/membership/internal/membership/mail"
	"github.com/aussiebroadwan/membership/internal/membership/metrics"
	"github.com/aussiebroadwan/membership/internal/membership/service"
	"github.com/aussiebroadwan/membership/internal/membership/store/drivers/sqlite"
	"github.com/aussiebroadwan/membership/internal/membership/telemetry"
	"github.com/aussiebroadwan/membership/pkg/cryptox"
	"github.com/aussiebroadwan/membership/pkg/jwtx"
	"github.com/aussiebroadwan/membership/pkg/slogx"
)

const serviceName = "membership-service"

// BuildVersion is overridden at build time via ldflags.
var BuildVersion = "v0.1.0"

// Application holds the membership service and all of its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db      *sqlite.Store
	signer  *jwtx.HS256
	metrics *metrics.Metrics
	mailer  *mail.Mailer

	// Services
	tokenService     *service.TokenService
	authService      *service.AuthService
	otpService       *service.OTPService
	inviteService    *service.InviteService
	memberService    *service.MemberService
	rolesService     *service.RolesService
	bootstrapService *service.BootstrapService

	shutdownTelemetry func(context.Context) error

	// HTTP server
	server *http.Server
	router *membershiphttp.Router
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: serviceName,
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}

// OpenStore opens the database named in cfg and applies pending migrations.
func OpenStore(cfg Config, logger *slog.Logger) (*sqlite.Store, error) {
	db, err := sqlite.NewStore(fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", cfg.DatabaseFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}

	logger.Info("database migrations applied successfully")
	return db, nil
}

// New creates an Application with every dependency initialised.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg:     cfg,
		logger:  NewLogger(cfg),
		signer:  jwtx.NewHS256(cfg.JWTSecret, cfg.JWTIssuer),
		metrics: metrics.New(),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(cfg.PepperFile)

	if !app.signer.Ready() {
		app.logger.Warn("JWT_SECRET is not set, logins will fail until it is configured")
	}

	shutdown, err := telemetry.Init(context.Background(), serviceName, BuildVersion, cfg.OTLPEndpoint)
	if err != nil {
		return nil, err
	}
	app.shutdownTelemetry = shutdown

	if app.db, err = OpenStore(cfg, app.logger); err != nil {
		return nil, err
	}

	if app.mailer, err = mail.New(newSender(cfg), cfg.MailConfig()); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// newSender picks SMTP delivery when mail is switched on.
func newSender(cfg Config) mail.Sender {
	if !cfg.SendStatus {
		return mail.DisabledSender{}
	}
	return &mail.SMTPSender{
		Server:   cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		FromName: cfg.EmailFromName,
	}
}

// Run starts the HTTP server and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("membership service starting",
		slog.Int("port", app.cfg.Port),
		slog.String("version", BuildVersion),
		slog.Bool("api_guard", app.cfg.APIGuard),
		slog.Bool("send_status", app.cfg.SendStatus),
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains the HTTP server, flushes traces and closes the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down membership service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", slog.Any("error", err))
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", slog.Any("error", err))
		}
	}

	if err := app.shutdownTelemetry(ctx); err != nil {
		app.logger.Error("error flushing traces", slog.Any("error", err))
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", slog.Any("error", err))
		return err
	}

	app.logger.Info("membership service stopped")
	return nil
}

// Handler returns the fully wired HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Signer:           app.signer,
		TTL:              app.cfg.TokenTTL,
		RefreshThreshold: app.cfg.TokenRefreshThreshold,
	}

	app.authService = &service.AuthService{
		Store:         app.db,
		Tokens:        app.tokenService,
		Mail:          app.mailer,
		Metrics:       app.metrics,
		StrictMail:    app.cfg.SendStatus,
		DefaultRoleID: app.cfg.DefaultRoleID,
		PhoneRegion:   app.cfg.PhoneRegion,
		ResetTTL:      app.cfg.ResetTTL,
	}
	app.otpService = &service.OTPService{
		Store:       app.db,
		Mail:        app.mailer,
		Metrics:     app.metrics,
		StrictMail:  app.cfg.SendStatus,
		TTL:         app.cfg.OTPTTL,
		MaxAttempts: app.cfg.OTPMaxAttempts,
	}
	app.inviteService = &service.InviteService{
		Store:       app.db,
		Mail:        app.mailer,
		Metrics:     app.metrics,
		StrictMail:  app.cfg.SendStatus,
		TTL:         app.cfg.InviteTTL,
		PhoneRegion: app.cfg.PhoneRegion,
	}
	app.memberService = &service.MemberService{Store: app.db}
	app.rolesService = &service.RolesService{Store: app.db}
	app.bootstrapService = &service.BootstrapService{
		Store:       app.db,
		Token:       app.cfg.BootstrapToken,
		PhoneRegion: app.cfg.PhoneRegion,
	}
}

func (app *Application) initHTTP() {
	router := membershiphttp.NewRouter(app.signer, BuildVersion, app.db, app.logger)
	router.Use(telemetry.Middleware(serviceName))

	router.Guard = app.cfg.APIGuard
	router.Limits = app.cfg.Limits()
	router.Metrics = app.metrics
	router.SignerReady = app.signer.Ready

	// Wire services to router
	router.AuthService = app.authService
	router.OTPService = app.otpService
	router.InviteService = app.inviteService
	router.MemberService = app.memberService
	router.RolesService = app.rolesService
	router.BootstrapService = app.bootstrapService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
