package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/qsautiere/mailer-api/internal/app"
)

func main() {
	// NestJS-style layered env files: .env.<mode> first, then .env.
	// Missing files are fine, real env vars always win.
	mode := os.Getenv("APP_ENV")
	if mode == "" {
		mode = "development"
	}
	_ = godotenv.Load(".env." + mode)
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:  "mailer-api",
		Usage: "Contact-form mailer API with API-key and admin-JWT auth",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Value:   ":3000",
				Sources: cli.EnvVars("ADDR"),
				Usage:   "HTTP listen address",
			},
			&cli.StringFlag{
				Name:    "db-path",
				Value:   "./mailer.sqlite",
				Sources: cli.EnvVars("DATABASE_URL"),
				Usage:   "SQLite file path",
			},
			&cli.StringFlag{
				Name:    "env",
				Value:   mode,
				Sources: cli.EnvVars("APP_ENV"),
				Usage:   "Runtime mode: development, production or test",
			},
			&cli.StringFlag{
				Name:    "jwt-secret",
				Sources: cli.EnvVars("JWT_SECRET"),
				Usage:   "HS256 signing secret for admin tokens (required)",
			},
			&cli.StringFlag{
				Name:    "smtp-host",
				Sources: cli.EnvVars("SMTP_HOST"),
				Usage:   "SMTP server host",
			},
			&cli.IntFlag{
				Name:    "smtp-port",
				Value:   587,
				Sources: cli.EnvVars("SMTP_PORT"),
				Usage:   "SMTP server port",
			},
			&cli.StringFlag{
				Name:    "smtp-user",
				Sources: cli.EnvVars("SMTP_USER"),
				Usage:   "SMTP username",
			},
			&cli.StringFlag{
				Name:    "smtp-pass",
				Sources: cli.EnvVars("SMTP_PASS"),
				Usage:   "SMTP password",
			},
			&cli.BoolFlag{
				Name:    "smtp-secure",
				Sources: cli.EnvVars("SMTP_SECURE"),
				Usage:   "Require TLS on the SMTP connection",
			},
			&cli.StringFlag{
				Name:    "mail-to",
				Sources: cli.EnvVars("MAIL_TO"),
				Usage:   "Recipient address for contact mails",
			},
			&cli.StringFlag{
				Name:    "template-path",
				Value:   "./views/mail.html.tmpl",
				Sources: cli.EnvVars("MAIL_TEMPLATE_PATH"),
				Usage:   "Contact mail HTML template",
			},
			&cli.StringFlag{
				Name:    "bootstrap-api-key",
				Sources: cli.EnvVars("BOOTSTRAP_API_KEY"),
				Usage:   "Optional API key to seed at startup",
			},
			&cli.StringFlag{
				Name:    "bootstrap-key-name",
				Value:   "bootstrap",
				Sources: cli.EnvVars("BOOTSTRAP_KEY_NAME"),
				Usage:   "Name for the seeded API key",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, c *cli.Command) error {
	cfg := app.Config{
		Addr:             c.String("addr"),
		DBPath:           c.String("db-path"),
		Env:              c.String("env"),
		JWTSecret:        c.String("jwt-secret"),
		SMTPHost:         c.String("smtp-host"),
		SMTPPort:         int(c.Int("smtp-port")),
		SMTPUser:         c.String("smtp-user"),
		SMTPPass:         c.String("smtp-pass"),
		SMTPSecure:       c.Bool("smtp-secure"),
		MailTo:           c.String("mail-to"),
		TemplatePath:     c.String("template-path"),
		BootstrapAPIKey:  c.String("bootstrap-api-key"),
		BootstrapKeyName: c.String("bootstrap-key-name"),
	}

	logger, err := buildLogger(cfg.Env)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	server, closer, err := app.NewServer(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	defer func() {
		if closeErr := closer.Close(); closeErr != nil {
			logger.Warn("close resources", zap.Error(closeErr))
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr), zap.String("env", cfg.Env))
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-ctx.Done():
		return shutdown(server)
	case sig := <-sigCh:
		logger.Info("received signal", zap.String("signal", sig.String()))
		return shutdown(server)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

func buildLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
