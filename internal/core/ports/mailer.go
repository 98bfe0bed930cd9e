package ports

import (
	"context"

	"github.com/qsautiere/mailer-api/internal/core/domain"
)

// MailTransport dispatches a composed message and returns its
// transport-assigned message id.
type MailTransport interface {
	Send(ctx context.Context, mail domain.OutboundMail) (string, error)
}
