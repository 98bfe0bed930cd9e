package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/qsautiere/mailer-api/internal/adapters/sqlite/gormsqlite"
	"github.com/qsautiere/mailer-api/internal/core/domain"
	"github.com/qsautiere/mailer-api/migrations"
)

func openTestDB(t *testing.T) *gormsqlite.DB {
	t.Helper()
	ctx := context.Background()

	db, err := gormsqlite.Open(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sqlDB, err := db.WriteSQLDB()
	require.NoError(t, err)
	require.NoError(t, migrations.Up(ctx, sqlDB))
	return db
}

func seedKey(t *testing.T, repo *APIKeyRepository, key domain.APIKey) domain.APIKey {
	t.Helper()
	if key.ID == "" {
		key.ID = uuid.NewString()
	}
	now := time.Now().UTC().Truncate(time.Second)
	if key.CreatedAt.IsZero() {
		key.CreatedAt = now
	}
	if key.UpdatedAt.IsZero() {
		key.UpdatedAt = now
	}
	created, err := repo.Create(context.Background(), key)
	require.NoError(t, err)
	return created
}

func TestAPIKeyRepositoryFindActiveByKey(t *testing.T) {
	ctx := context.Background()
	repo := NewAPIKeyRepository(openTestDB(t))

	active := seedKey(t, repo, domain.APIKey{Key: "active-key", Name: "active", Active: true, RateLimit: 600})
	seedKey(t, repo, domain.APIKey{Key: "revoked-key", Name: "revoked", Active: false, RateLimit: 600})

	found, err := repo.FindActiveByKey(ctx, "active-key")
	require.NoError(t, err)
	require.Equal(t, active.ID, found.ID)
	require.Equal(t, "active", found.Name)

	_, err = repo.FindActiveByKey(ctx, "revoked-key")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.FindActiveByKey(ctx, "unknown-key")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAPIKeyRepositorySaveRevokes(t *testing.T) {
	ctx := context.Background()
	repo := NewAPIKeyRepository(openTestDB(t))

	created := seedKey(t, repo, domain.APIKey{Key: "k1", Name: "ci", Active: true, RateLimit: 10})

	created.Active = false
	created.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.Save(ctx, created))

	stored, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, stored.Active)

	_, err = repo.FindActiveByKey(ctx, "k1")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAPIKeyRepositoryList(t *testing.T) {
	ctx := context.Background()
	repo := NewAPIKeyRepository(openTestDB(t))

	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	seedKey(t, repo, domain.APIKey{Key: "k1", Name: "one", Active: true, RateLimit: 600})
	seedKey(t, repo, domain.APIKey{Key: "k2", Name: "two", Active: true, RateLimit: 10, ExpiresAt: &expires, Description: "short lived"})

	keys, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 2)
}

func TestAPIKeyRepositoryFindByIDUnknown(t *testing.T) {
	repo := NewAPIKeyRepository(openTestDB(t))
	_, err := repo.FindByID(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAuditLogRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewAuditLogRepository(db)

	require.NoError(t, repo.Log(ctx, domain.AuditEvent{Action: domain.AuditKeyCreated, Actor: "admin", Subject: "id-1"}))
	require.NoError(t, repo.Log(ctx, domain.AuditEvent{Action: domain.AuditKeyRevoked, Actor: "admin", Subject: "id-1"}))

	events, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, domain.AuditKeyRevoked, events[0].Action)
	require.False(t, events[0].At.IsZero())
}
