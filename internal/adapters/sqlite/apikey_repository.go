package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/qsautiere/mailer-api/internal/adapters/sqlite/gormsqlite"
	"github.com/qsautiere/mailer-api/internal/core/domain"
)

type apiKeyModel struct {
	ID          string     `gorm:"column:id;primaryKey"`
	Key         string     `gorm:"column:key;not null;uniqueIndex"`
	Name        string     `gorm:"column:name;not null"`
	Description string     `gorm:"column:description"`
	Active      bool       `gorm:"column:active;not null"`
	RateLimit   int        `gorm:"column:rate_limit;not null"`
	ExpiresAt   *time.Time `gorm:"column:expires_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;not null"`
}

func (apiKeyModel) TableName() string {
	return "api_keys"
}

type APIKeyRepository struct {
	db *gormsqlite.DB
}

func NewAPIKeyRepository(db *gormsqlite.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

func (r *APIKeyRepository) FindActiveByKey(ctx context.Context, key string) (domain.APIKey, error) {
	var model apiKeyModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("key = ? AND active = ?", key, true).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.APIKey{}, domain.ErrNotFound
		}
		return domain.APIKey{}, fmt.Errorf("find api key: %w", err)
	}
	return toDomain(model), nil
}

func (r *APIKeyRepository) FindByID(ctx context.Context, id string) (domain.APIKey, error) {
	var model apiKeyModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("id = ?", id).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.APIKey{}, domain.ErrNotFound
		}
		return domain.APIKey{}, fmt.Errorf("find api key by id: %w", err)
	}
	return toDomain(model), nil
}

func (r *APIKeyRepository) Create(ctx context.Context, key domain.APIKey) (domain.APIKey, error) {
	model := toModel(key)
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Create(&model).Error
	})
	if err != nil {
		return domain.APIKey{}, fmt.Errorf("create api key: %w", err)
	}
	return toDomain(model), nil
}

func (r *APIKeyRepository) Save(ctx context.Context, key domain.APIKey) error {
	model := toModel(key)
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Save(&model).Error
	})
	if err != nil {
		return fmt.Errorf("save api key: %w", err)
	}
	return nil
}

func (r *APIKeyRepository) List(ctx context.Context) ([]domain.APIKey, error) {
	var models []apiKeyModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}

	keys := make([]domain.APIKey, 0, len(models))
	for _, model := range models {
		keys = append(keys, toDomain(model))
	}
	return keys, nil
}

func toModel(key domain.APIKey) apiKeyModel {
	return apiKeyModel{
		ID:          key.ID,
		Key:         key.Key,
		Name:        key.Name,
		Description: key.Description,
		Active:      key.Active,
		RateLimit:   key.RateLimit,
		ExpiresAt:   key.ExpiresAt,
		CreatedAt:   key.CreatedAt,
		UpdatedAt:   key.UpdatedAt,
	}
}

func toDomain(model apiKeyModel) domain.APIKey {
	return domain.APIKey{
		ID:          model.ID,
		Key:         model.Key,
		Name:        model.Name,
		Description: model.Description,
		Active:      model.Active,
		RateLimit:   model.RateLimit,
		ExpiresAt:   model.ExpiresAt,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}
