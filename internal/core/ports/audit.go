package ports

import (
	"context"

	"github.com/qsautiere/mailer-api/internal/core/domain"
)

type AuditLogRepository interface {
	Log(ctx context.Context, event domain.AuditEvent) error
	List(ctx context.Context, limit int) ([]domain.AuditEvent, error)
}
