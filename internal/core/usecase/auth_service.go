package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qsautiere/mailer-api/internal/core/domain"
	"github.com/qsautiere/mailer-api/internal/core/ports"
)

var ErrUnauthorized = errors.New("unauthorized")

// apiKeyBytes is the entropy of a generated key. Predictable keys are
// a full authentication bypass, so this only ever goes up.
const apiKeyBytes = 32

type CreateAPIKeyRequest struct {
	Name        string
	Description string
	Active      *bool
	RateLimit   int
	ExpiresAt   *time.Time
}

type AuthService struct {
	repo   ports.APIKeyRepository
	audit  *AuditService
	logger *zap.Logger
}

func NewAuthService(repo ports.APIKeyRepository, audit *AuditService, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{repo: repo, audit: audit, logger: logger}
}

// ValidateAPIKey returns the stored record for an active, unexpired
// key. Expiration is checked against the wall clock on every call; an
// active flag alone is never trusted.
func (s *AuthService) ValidateAPIKey(ctx context.Context, key string) (domain.APIKey, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.APIKey{}, ErrUnauthorized
	}

	apiKey, err := s.repo.FindActiveByKey(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.APIKey{}, ErrUnauthorized
		}
		return domain.APIKey{}, err
	}
	if apiKey.Expired(time.Now()) {
		return domain.APIKey{}, ErrUnauthorized
	}
	return apiKey, nil
}

// CreateAPIKey generates a fresh key and persists it. The returned
// record carries the raw key; this is the only moment it is surfaced
// in full, listings mask it.
func (s *AuthService) CreateAPIKey(ctx context.Context, req CreateAPIKeyRequest) (domain.APIKey, error) {
	raw, err := generateKey()
	if err != nil {
		return domain.APIKey{}, err
	}

	now := time.Now().UTC()
	apiKey := domain.APIKey{
		ID:          uuid.NewString(),
		Key:         raw,
		Name:        req.Name,
		Description: req.Description,
		Active:      true,
		RateLimit:   req.RateLimit,
		ExpiresAt:   req.ExpiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Active != nil {
		apiKey.Active = *req.Active
	}
	if apiKey.RateLimit <= 0 {
		apiKey.RateLimit = domain.DefaultRateLimit
	}

	created, err := s.repo.Create(ctx, apiKey)
	if err != nil {
		return domain.APIKey{}, err
	}

	s.audit.Record(ctx, domain.AuditKeyCreated, "admin", created.ID)
	s.logger.Info("api key created",
		zap.String("id", created.ID),
		zap.String("name", created.Name))
	return created, nil
}

func (s *AuthService) ListAPIKeys(ctx context.Context) ([]domain.APIKey, error) {
	return s.repo.List(ctx)
}

// RevokeAPIKey flips the active flag off. Revoking twice is harmless;
// the record is re-fetched and re-saved each time.
func (s *AuthService) RevokeAPIKey(ctx context.Context, id string) error {
	apiKey, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	apiKey.Active = false
	apiKey.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, apiKey); err != nil {
		return err
	}

	s.audit.Record(ctx, domain.AuditKeyRevoked, "admin", id)
	s.logger.Info("api key revoked", zap.String("id", id))
	return nil
}

func generateKey() (string, error) {
	buf := make([]byte, apiKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
