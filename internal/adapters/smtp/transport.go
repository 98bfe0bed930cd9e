// Package smtp adapts the go-mail client to the MailTransport port.
package smtp

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"

	"github.com/qsautiere/mailer-api/internal/core/domain"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	Secure   bool

	// TestMode targets a local relay (MailHog and friends) without
	// TLS or credentials.
	TestMode bool
}

type Transport struct {
	client *mail.Client
	host   string
}

func New(cfg Config) (*Transport, error) {
	opts := []mail.Option{mail.WithPort(cfg.Port)}

	if cfg.TestMode {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	} else {
		policy := mail.TLSOpportunistic
		if cfg.Secure {
			policy = mail.TLSMandatory
		}
		opts = append(opts, mail.WithTLSPolicy(policy))
		if cfg.Username != "" {
			opts = append(opts,
				mail.WithSMTPAuth(mail.SMTPAuthPlain),
				mail.WithUsername(cfg.Username),
				mail.WithPassword(cfg.Password))
		}
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return &Transport{client: client, host: cfg.Host}, nil
}

func (t *Transport) Send(ctx context.Context, outbound domain.OutboundMail) (string, error) {
	msg := mail.NewMsg()
	if err := msg.From(outbound.From); err != nil {
		return "", fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(outbound.To); err != nil {
		return "", fmt.Errorf("set to address: %w", err)
	}
	msg.Subject(outbound.Subject)
	msg.SetBodyString(mail.TypeTextHTML, outbound.HTML)

	id := newMessageID(t.host)
	msg.SetMessageIDWithValue(id)

	if err := t.client.DialAndSendWithContext(ctx, msg); err != nil {
		return "", fmt.Errorf("send mail: %w", err)
	}
	return id, nil
}

func newMessageID(host string) string {
	return uuid.NewString() + "@" + host
}
