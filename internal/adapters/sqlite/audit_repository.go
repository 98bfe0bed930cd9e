package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/qsautiere/mailer-api/internal/adapters/sqlite/gormsqlite"
	"github.com/qsautiere/mailer-api/internal/core/domain"
)

type auditModel struct {
	ID      uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Action  string    `gorm:"column:action;not null"`
	Actor   string    `gorm:"column:actor;not null"`
	Subject string    `gorm:"column:subject;not null"`
	At      time.Time `gorm:"column:at;not null"`
}

func (auditModel) TableName() string {
	return "audit_logs"
}

type AuditLogRepository struct {
	db *gormsqlite.DB
}

func NewAuditLogRepository(db *gormsqlite.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Log(ctx context.Context, event domain.AuditEvent) error {
	model := auditModel{
		Action:  event.Action,
		Actor:   event.Actor,
		Subject: event.Subject,
		At:      event.At,
	}
	if model.At.IsZero() {
		model.At = time.Now().UTC()
	}

	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Create(&model).Error
	})
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (r *AuditLogRepository) List(ctx context.Context, limit int) ([]domain.AuditEvent, error) {
	var models []auditModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Order("id DESC").Limit(limit).Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}

	events := make([]domain.AuditEvent, 0, len(models))
	for _, model := range models {
		events = append(events, domain.AuditEvent{
			Action:  model.Action,
			Actor:   model.Actor,
			Subject: model.Subject,
			At:      model.At,
		})
	}
	return events, nil
}
