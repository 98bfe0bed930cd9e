package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qsautiere/mailer-api/internal/adapters/httpapi"
	"github.com/qsautiere/mailer-api/internal/adapters/smtp"
	sqliteadapter "github.com/qsautiere/mailer-api/internal/adapters/sqlite"
	"github.com/qsautiere/mailer-api/internal/adapters/sqlite/gormsqlite"
	"github.com/qsautiere/mailer-api/internal/auth"
	"github.com/qsautiere/mailer-api/internal/core/domain"
	"github.com/qsautiere/mailer-api/internal/core/usecase"
	"github.com/qsautiere/mailer-api/migrations"
)

type Config struct {
	Addr         string
	DBPath       string
	Env          string
	JWTSecret    string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPass     string
	SMTPSecure   bool
	MailTo       string
	TemplatePath string

	// BootstrapAPIKey seeds an initial key at startup so a fresh
	// deployment can be exercised before an admin issues real keys.
	BootstrapAPIKey  string
	BootstrapKeyName string
}

type resourceCloser struct {
	closers []io.Closer
}

func (r resourceCloser) Close() error {
	var firstErr error
	for _, c := range r.closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func NewServer(ctx context.Context, cfg Config, logger *zap.Logger) (*http.Server, io.Closer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Fail closed: a deployment without a signing secret must die here,
	// not serve admin routes against unverifiable tokens.
	verifier, err := auth.NewAdminVerifier(cfg.JWTSecret)
	if err != nil {
		return nil, nil, err
	}

	db, err := gormsqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}

	writeSQLDB, err := db.WriteSQLDB()
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("resolve writer sql db: %w", err)
	}

	migrateCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := migrations.Up(migrateCtx, writeSQLDB); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	transport, err := smtp.New(smtpConfig(cfg))
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	apiKeyRepo := sqliteadapter.NewAPIKeyRepository(db)
	auditRepo := sqliteadapter.NewAuditLogRepository(db)

	auditService := usecase.NewAuditService(auditRepo, logger)
	authService := usecase.NewAuthService(apiKeyRepo, auditService, logger)
	mailService := usecase.NewMailService(transport, cfg.TemplatePath, cfg.MailTo, auditService, logger)

	if cfg.BootstrapAPIKey != "" {
		if err := bootstrapKey(ctx, apiKeyRepo, cfg); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("bootstrap api key: %w", err)
		}
	}

	handler := httpapi.NewHandler(authService, mailService, verifier, logger)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return server, resourceCloser{closers: []io.Closer{db}}, nil
}

func smtpConfig(cfg Config) smtp.Config {
	if cfg.Env == "test" {
		return smtp.Config{Host: "localhost", Port: 1025, TestMode: true}
	}
	return smtp.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		Secure:   cfg.SMTPSecure,
	}
}

func bootstrapKey(ctx context.Context, repo *sqliteadapter.APIKeyRepository, cfg Config) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := repo.FindActiveByKey(ctx, cfg.BootstrapAPIKey)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	name := cfg.BootstrapKeyName
	if name == "" {
		name = "bootstrap"
	}
	now := time.Now().UTC()
	_, err = repo.Create(ctx, domain.APIKey{
		ID:        uuid.NewString(),
		Key:       cfg.BootstrapAPIKey,
		Name:      name,
		Active:    true,
		RateLimit: domain.DefaultRateLimit,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return err
}
