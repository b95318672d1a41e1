// Command pinto serves the authentication API over HTTP.
//
// Configuration comes from the environment (and .env when present); see
// internal/config for the recognised variables.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"

	"github.com/lborres/pinto"
	fiberadapter "github.com/lborres/pinto/adapters/fiber"
	"github.com/lborres/pinto/adapters/mail"
	redisadapter "github.com/lborres/pinto/adapters/redis"
	"github.com/lborres/pinto/internal/config"
	"github.com/lborres/pinto/internal/logging"
)

// outbox receives console-mailer output. It is kept off stdout so live
// tokens never interleave with the structured log.
var outbox io.Writer = os.Stderr

func logFormat() string {
	format := []string{
		// Timestamp & Request ID
		"${time}|${respHeader:X-Request-ID}",

		// Response metadata
		"${status}|${latency}",

		// Request details; bodies and auth headers carry secrets and stay out
		"${ip}|${method}|${path}",

		"${error}",
	}
	return strings.Join(format, "|") + "\n"
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("pinto: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	appLog := logging.New(os.Stdout, cfg.LogLevel, cfg.Production())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.UsingPlaceholderSecrets() {
		appLog.Warn(ctx, "using development placeholder secrets; set JWT_SECRET and SESSION_SECRET")
	}

	deps, err := buildDeps(cfg, appLog)
	if err != nil {
		return err
	}
	defer deps.close()

	app := fiber.New(fiber.Config{AppName: "pinto"})
	app.Use(recoverer.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format:     logFormat(),
		TimeFormat: "2006/01/02 15:04:05",
	}))

	app.Get("/healthz", func(c fiber.Ctx) error {
		if err := deps.ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	p, err := pinto.New(pinto.Config{
		Secret:         cfg.JWTSecret,
		SessionSecret:  cfg.SessionSecret,
		Production:     cfg.Production(),
		HTTP:           fiberadapter.New(app),
		Sessions:       deps.sessions,
		CacheAdapter:   deps.cache,
		PasswordHasher: newHasher(cfg),
		Mailer:         deps.mailer,
		Logger:         appLog,
		BearerTTL:      cfg.BearerTTL,
		ExposeTokens:   cfg.ExposeTokens,
		SessionConfig: &pinto.SessionConfig{
			MaxAge:        cfg.SessionMaxAge,
			PruneInterval: cfg.SessionPruneInterval,
		},
	})
	if err != nil {
		return fmt.Errorf("could not create pinto instance: %w", err)
	}

	stopPruning := p.Sessions.StartPruning(ctx)
	defer stopPruning()

	appLog.Info(ctx, "listening",
		"addr", cfg.HTTPAddr,
		"env", cfg.Env,
		"session_store", cfg.SessionStore,
		"mail_provider", cfg.MailProvider,
		"expose_tokens", cfg.ExposeTokens,
	)

	err = app.Listen(cfg.HTTPAddr, fiber.ListenConfig{
		GracefulContext:       ctx,
		ShutdownTimeout:       10 * time.Second,
		DisableStartupMessage: true,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("app.Listen: %w", err)
	}

	p.Drain()
	appLog.Info(context.Background(), "shut down")
	return nil
}

func newHasher(cfg *config.Config) pinto.PasswordHasher {
	if cfg.PasswordHasher == "argon2" {
		return pinto.NewArgon2()
	}
	return pinto.NewBcrypt(cfg.BcryptCost)
}

// backends holds the backing services selected by configuration.
type backends struct {
	sessions pinto.SessionStore // nil selects the in-memory store
	cache    pinto.Cache
	mailer   pinto.Mailer
	ping     func(ctx context.Context) error
	close    func()
}

func buildDeps(cfg *config.Config, appLog logging.Logger) (*backends, error) {
	d := &backends{
		ping:  func(context.Context) error { return nil },
		close: func() {},
	}

	if cfg.SessionStore == "redis" {
		client, err := redisadapter.NewClient(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		store := redisadapter.NewSessionStore(client, redisadapter.DefaultKeyPrefix)
		d.sessions = store
		d.cache = pinto.CacheFor(cfg.SessionCacheTTL, cfg.SessionCacheSize)
		d.ping = store.Ping
		d.close = func() { _ = client.Close() }
	}

	switch cfg.MailProvider {
	case "sendgrid":
		d.mailer = mail.NewSendGridMailer(mail.SendGridConfig{
			APIKey: cfg.SendGridAPIKey,
			From:   cfg.MailFrom,
			AppURL: cfg.AppURL,
		}, appLog)
	default:
		d.mailer = mail.NewConsoleMailer(cfg.AppURL, outbox, appLog)
	}

	return d, nil
}
