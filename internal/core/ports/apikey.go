package ports

import (
	"context"

	"github.com/qsautiere/mailer-api/internal/core/domain"
)

type APIKeyRepository interface {
	// FindActiveByKey returns the record whose key column matches and
	// whose active flag is set. Returns domain.ErrNotFound otherwise.
	FindActiveByKey(ctx context.Context, key string) (domain.APIKey, error)
	FindByID(ctx context.Context, id string) (domain.APIKey, error)
	Create(ctx context.Context, key domain.APIKey) (domain.APIKey, error)
	Save(ctx context.Context, key domain.APIKey) error
	List(ctx context.Context) ([]domain.APIKey, error)
}
