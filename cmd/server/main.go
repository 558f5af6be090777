package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/uptrace/bun"

	auth "github.com/viabilize/viabilize-auth"
	"github.com/viabilize/viabilize-auth/config"
	"github.com/viabilize/viabilize-auth/mailer"
	"github.com/viabilize/viabilize-auth/migrations"
	"github.com/viabilize/viabilize-auth/persistence"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	config   *config.Config
	db       *bun.DB
	repo     auth.RepositoryManager
	runner   *auth.TaskRunner
	sessions *auth.SessionResolver
	srv      router.Server[*fiber.App]
	fiber    *fiber.App
	logger   *glog.BaseLogger
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("app"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg, err := config.Load()
	if err != nil {
		lgr.Error("configuration error", "error", err)
		os.Exit(1)
	}

	if cfg.Debug {
		fmt.Println("============")
		fmt.Println(print.MaybePrettyJSON(redacted(cfg)))
		fmt.Println("============")
	}

	ctx := context.Background()
	app := &App{config: cfg, logger: lgr}

	if err := WithPersistence(ctx, app); err != nil {
		lgr.Error("persistence setup failed", "error", err)
		os.Exit(1)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		lgr.Error("http setup failed", "error", err)
		os.Exit(1)
	}

	if err := WithAuth(ctx, app); err != nil {
		lgr.Error("auth setup failed", "error", err)
		os.Exit(1)
	}

	app.srv.Serve(cfg.Address())
	lgr.Info("listening", "address", cfg.Address())

	sig := WaitExitSignal()
	lgr.Info("shutting down", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.fiber.ShutdownWithContext(shutdownCtx); err != nil {
		lgr.Error("http shutdown", "error", err)
	}

	if err := app.runner.Close(shutdownCtx); err != nil {
		lgr.Error("background tasks did not drain", "error", err)
	}

	if err := app.db.Close(); err != nil {
		lgr.Error("database close", "error", err)
	}
}

func WithPersistence(ctx context.Context, app *App) error {
	db, err := persistence.Open(ctx, app.config.DatabaseURL,
		persistence.WithQueryDebug(app.config.Debug),
	)
	if err != nil {
		return err
	}

	if err := migrations.Up(ctx, db.DB, db.Dialect().Name()); err != nil {
		db.Close()
		return err
	}

	app.db = db
	app.repo = auth.NewRepositoryManager(db)
	return nil
}

func WithHTTPServer(_ context.Context, app *App) error {
	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		f := router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			EnablePrintRoutes: app.config.Debug,
			StrictRouting:     false,
		}))
		f.Use(cors.New(cors.Config{
			AllowOrigins:     strings.Join(app.config.CORSAllowOrigins, ","),
			AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
			AllowCredentials: true,
		}))
		app.fiber = f
		return f
	})

	srv.Router().WithLogger(app.GetLogger("router"))
	app.srv = srv
	return nil
}

func WithAuth(_ context.Context, app *App) error {
	cfg := app.config

	app.runner = auth.NewTaskRunner(cfg.WorkerCount, cfg.WorkerQueueSize,
		auth.WithTaskRunnerLogger(app.GetLogger("worker")),
		auth.WithRetryPolicy(auth.RetryPolicy{
			MaxAttempts:     cfg.NotifyMaxAttempts,
			InitialInterval: cfg.NotifyBackoff,
			MaxInterval:     cfg.NotifyMaxDelay,
		}),
	)

	tokens, err := auth.NewTokenService(cfg, auth.WithTokenLogger(app.GetLogger("auth:token")))
	if err != nil {
		return err
	}

	delivery, err := newMailer(app)
	if err != nil {
		return err
	}

	notifier := auth.NewQueuedNotifier(delivery, app.runner).
		WithLogger(app.GetLogger("auth:notify"))

	activity := auth.NewActivityLogger(app.repo.ActivityLogs(), app.runner).
		WithLogger(app.GetLogger("auth:activity"))

	cache := auth.NewSessionCache(cfg.GetSessionCacheSize(), cfg.GetSessionCacheTTL())
	app.sessions = auth.NewSessionResolver(tokens, app.repo.Users(), cache).
		WithLogger(app.GetLogger("auth:session"))

	accounts := auth.NewOTPManager(app.repo, notifier,
		auth.WithOTPTTL(cfg.GetOTPTTL()),
		auth.WithSessionInvalidator(app.sessions),
		auth.WithOTPActivitySink(activity),
		auth.WithOTPLogger(app.GetLogger("auth:otp")),
	)

	verifier := auth.NewCredentialVerifier(app.repo.Users()).
		WithLogger(app.GetLogger("auth:credentials"))

	auther := auth.NewAuthenticator(verifier, tokens).
		WithLogger(app.GetLogger("auth:authz")).
		WithActivitySink(activity)

	httpAuth := auth.NewHTTPAuthenticator(app.sessions, cfg)
	httpAuth.Logger = app.GetLogger("auth:http")

	auth.RegisterAuthRoutes(app.srv.Router(),
		func(c *auth.AuthController) *auth.AuthController {
			c.Debug = cfg.Debug
			c.Accounts = accounts
			c.Auther = auther
			c.Sessions = app.sessions
			c.Users = app.repo.Users()
			c.ActivityLog = app.repo.ActivityLogs()
			c.Protected = httpAuth.ProtectedRoute()
			return c.WithLogger(app.GetLogger("auth:ctrl"))
		},
	)

	return nil
}

func newMailer(app *App) (auth.Notifier, error) {
	mcfg := app.config.Mail
	if !mcfg.Enabled() {
		app.GetLogger("mailer").Warn("SMTP credentials not configured, mail will only be logged")
		return mailer.NewLogMailer(app.GetLogger("mailer")), nil
	}

	return mailer.NewSMTPMailer(mailer.Config{
		Host:     mcfg.Host,
		Port:     mcfg.Port,
		Username: mcfg.Username,
		Password: mcfg.Password,
		FromName: mcfg.FromName,
		Language: mcfg.Language,
		CodeTTL:  app.config.GetOTPTTL(),
	}, mailer.WithLogger(app.GetLogger("mailer")))
}

func redacted(cfg *config.Config) config.Config {
	out := *cfg
	out.SigningKey = "***"
	out.PreviousSigningKeys = nil
	out.Mail.Password = "***"
	return out
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
