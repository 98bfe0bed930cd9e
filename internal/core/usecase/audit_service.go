package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/qsautiere/mailer-api/internal/core/domain"
	"github.com/qsautiere/mailer-api/internal/core/ports"
)

// AuditService writes a best-effort trail of key lifecycle changes and
// mail dispatches. A failed write is logged and never fails the
// operation being audited.
type AuditService struct {
	repo   ports.AuditLogRepository
	logger *zap.Logger
}

func NewAuditService(repo ports.AuditLogRepository, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, logger: logger}
}

func (s *AuditService) Record(ctx context.Context, action, actor, subject string) {
	if s == nil || s.repo == nil {
		return
	}
	event := domain.AuditEvent{
		Action:  action,
		Actor:   actor,
		Subject: subject,
		At:      time.Now().UTC(),
	}
	if err := s.repo.Log(ctx, event); err != nil {
		s.logger.Warn("audit log write failed",
			zap.String("action", action),
			zap.Error(err))
	}
}

func (s *AuditService) Recent(ctx context.Context, limit int) ([]domain.AuditEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}
	return s.repo.List(ctx, limit)
}
