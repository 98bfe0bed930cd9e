package domain

import "time"

const (
	AuditKeyCreated = "api_key.created"
	AuditKeyRevoked = "api_key.revoked"
	AuditMailSent   = "mail.sent"
)

type AuditEvent struct {
	Action  string
	Actor   string
	Subject string
	At      time.Time
}
