package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/qsautiere/mailer-api/internal/core/domain"
)

type stubAPIKeyRepo struct {
	findActiveFn func(ctx context.Context, key string) (domain.APIKey, error)
	findByIDFn   func(ctx context.Context, id string) (domain.APIKey, error)
	createFn     func(ctx context.Context, key domain.APIKey) (domain.APIKey, error)
	saveFn       func(ctx context.Context, key domain.APIKey) error
	listFn       func(ctx context.Context) ([]domain.APIKey, error)

	findActiveCalls int
	saveCalls       int
}

func (s *stubAPIKeyRepo) FindActiveByKey(ctx context.Context, key string) (domain.APIKey, error) {
	s.findActiveCalls++
	if s.findActiveFn != nil {
		return s.findActiveFn(ctx, key)
	}
	return domain.APIKey{}, domain.ErrNotFound
}

func (s *stubAPIKeyRepo) FindByID(ctx context.Context, id string) (domain.APIKey, error) {
	if s.findByIDFn != nil {
		return s.findByIDFn(ctx, id)
	}
	return domain.APIKey{}, domain.ErrNotFound
}

func (s *stubAPIKeyRepo) Create(ctx context.Context, key domain.APIKey) (domain.APIKey, error) {
	if s.createFn != nil {
		return s.createFn(ctx, key)
	}
	return key, nil
}

func (s *stubAPIKeyRepo) Save(ctx context.Context, key domain.APIKey) error {
	s.saveCalls++
	if s.saveFn != nil {
		return s.saveFn(ctx, key)
	}
	return nil
}

func (s *stubAPIKeyRepo) List(ctx context.Context) ([]domain.APIKey, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, nil
}

func TestValidateAPIKeySuccess(t *testing.T) {
	stored := domain.APIKey{ID: "id-1", Key: "key-1", Name: "client", Active: true}
	repo := &stubAPIKeyRepo{findActiveFn: func(_ context.Context, key string) (domain.APIKey, error) {
		require.Equal(t, "key-1", key)
		return stored, nil
	}}

	svc := NewAuthService(repo, nil, nil)
	got, err := svc.ValidateAPIKey(context.Background(), "key-1")
	require.NoError(t, err)
	require.Equal(t, stored, got)
}

func TestValidateAPIKeyFutureExpiry(t *testing.T) {
	expires := time.Now().Add(time.Hour)
	repo := &stubAPIKeyRepo{findActiveFn: func(context.Context, string) (domain.APIKey, error) {
		return domain.APIKey{ID: "id-1", Active: true, ExpiresAt: &expires}, nil
	}}

	svc := NewAuthService(repo, nil, nil)
	_, err := svc.ValidateAPIKey(context.Background(), "key-1")
	require.NoError(t, err)
}

func TestValidateAPIKeyExpired(t *testing.T) {
	expired := time.Now().Add(-time.Minute)
	repo := &stubAPIKeyRepo{findActiveFn: func(context.Context, string) (domain.APIKey, error) {
		return domain.APIKey{ID: "id-1", Active: true, ExpiresAt: &expired}, nil
	}}

	svc := NewAuthService(repo, nil, nil)
	_, err := svc.ValidateAPIKey(context.Background(), "key-1")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestValidateAPIKeyUnknown(t *testing.T) {
	svc := NewAuthService(&stubAPIKeyRepo{}, nil, nil)
	_, err := svc.ValidateAPIKey(context.Background(), "nope")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestValidateAPIKeyEmptySkipsRepo(t *testing.T) {
	repo := &stubAPIKeyRepo{}
	svc := NewAuthService(repo, nil, nil)

	_, err := svc.ValidateAPIKey(context.Background(), "  ")
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Zero(t, repo.findActiveCalls)
}

func TestCreateAPIKeyDefaults(t *testing.T) {
	svc := NewAuthService(&stubAPIKeyRepo{}, nil, nil)

	created, err := svc.CreateAPIKey(context.Background(), CreateAPIKeyRequest{Name: "ci"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Len(t, created.Key, 64)
	require.True(t, created.Active)
	require.Equal(t, domain.DefaultRateLimit, created.RateLimit)
	require.Nil(t, created.ExpiresAt)
}

func TestCreateAPIKeyHonorsRequest(t *testing.T) {
	inactive := false
	expires := time.Now().Add(24 * time.Hour).UTC()
	svc := NewAuthService(&stubAPIKeyRepo{}, nil, nil)

	created, err := svc.CreateAPIKey(context.Background(), CreateAPIKeyRequest{
		Name:        "ci",
		Description: "deploy pipeline",
		Active:      &inactive,
		RateLimit:   10,
		ExpiresAt:   &expires,
	})
	require.NoError(t, err)
	require.False(t, created.Active)
	require.Equal(t, 10, created.RateLimit)
	require.Equal(t, &expires, created.ExpiresAt)
}

func TestCreateAPIKeyNeverRepeats(t *testing.T) {
	svc := NewAuthService(&stubAPIKeyRepo{}, nil, nil)

	first, err := svc.CreateAPIKey(context.Background(), CreateAPIKeyRequest{Name: "a"})
	require.NoError(t, err)
	second, err := svc.CreateAPIKey(context.Background(), CreateAPIKeyRequest{Name: "b"})
	require.NoError(t, err)
	require.NotEqual(t, first.Key, second.Key)
}

func TestRevokeAPIKeyUnknown(t *testing.T) {
	svc := NewAuthService(&stubAPIKeyRepo{}, nil, nil)
	err := svc.RevokeAPIKey(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRevokeAPIKeyPersistsInactive(t *testing.T) {
	var saved domain.APIKey
	repo := &stubAPIKeyRepo{
		findByIDFn: func(_ context.Context, id string) (domain.APIKey, error) {
			return domain.APIKey{ID: id, Active: true}, nil
		},
		saveFn: func(_ context.Context, key domain.APIKey) error {
			saved = key
			return nil
		},
	}

	svc := NewAuthService(repo, nil, nil)
	require.NoError(t, svc.RevokeAPIKey(context.Background(), "id-1"))
	require.False(t, saved.Active)
	require.Equal(t, 1, repo.saveCalls)
}
