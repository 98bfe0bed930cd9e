package usecase

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"path/filepath"
	"time"

	"github.com/Masterminds/sprig/v3"
	"go.uber.org/zap"

	"github.com/qsautiere/mailer-api/internal/core/domain"
	"github.com/qsautiere/mailer-api/internal/core/ports"
)

const (
	defaultRecipient = "contact@example.com"
	contactSubject   = "Nouveau message de contact"
)

// MailService turns a validated contact submission into a sent email.
// The template is re-read on every send so it can be edited without a
// restart; when it cannot be read or rendered, a minimal inline body
// is used instead. A broken template must never block delivery.
type MailService struct {
	transport    ports.MailTransport
	templatePath string
	to           string
	audit        *AuditService
	logger       *zap.Logger
}

func NewMailService(transport ports.MailTransport, templatePath, to string, audit *AuditService, logger *zap.Logger) *MailService {
	if to == "" {
		to = defaultRecipient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MailService{
		transport:    transport,
		templatePath: templatePath,
		to:           to,
		audit:        audit,
		logger:       logger,
	}
}

type mailContext struct {
	Name        string
	Email       string
	Company     string
	Message     string
	Title       string
	CurrentYear int
}

func (s *MailService) SendContactMail(ctx context.Context, msg domain.ContactMessage) (domain.SentMessageInfo, error) {
	mail := domain.OutboundMail{
		From:    msg.Email,
		To:      s.to,
		Subject: contactSubject,
		HTML:    s.renderBody(msg),
	}

	id, err := s.transport.Send(ctx, mail)
	if err != nil {
		s.logger.Error("send contact mail",
			zap.String("from", msg.Email),
			zap.Error(err))
		return domain.SentMessageInfo{}, err
	}

	s.logger.Info("message sent", zap.String("message_id", id))
	s.audit.Record(ctx, domain.AuditMailSent, msg.Email, id)
	return domain.SentMessageInfo{MessageID: id}, nil
}

func (s *MailService) renderBody(msg domain.ContactMessage) string {
	tctx := mailContext{
		Name:        msg.Name,
		Email:       msg.Email,
		Company:     msg.Company,
		Message:     msg.Message,
		Title:       "Message de contact de " + msg.Name,
		CurrentYear: time.Now().Year(),
	}

	tmpl, err := template.New(filepath.Base(s.templatePath)).
		Funcs(sprig.HtmlFuncMap()).
		ParseFiles(s.templatePath)
	if err != nil {
		return s.fallbackBody(msg, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, tctx); err != nil {
		return s.fallbackBody(msg, err)
	}
	return buf.String()
}

func (s *MailService) fallbackBody(msg domain.ContactMessage, err error) string {
	s.logger.Error("read mail template", zap.Error(err))
	s.logger.Warn("falling back to inline mail body")
	return fmt.Sprintf("<h1>Message de %s</h1><p>%s</p>",
		template.HTMLEscapeString(msg.Name),
		template.HTMLEscapeString(msg.Message))
}
