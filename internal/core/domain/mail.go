package domain

// ContactMessage is a single contact-form submission. It is never
// persisted; it lives for the duration of one request.
type ContactMessage struct {
	Name    string
	Email   string
	Company string
	Message string
}

// OutboundMail is a fully composed message ready for the SMTP
// transport.
type OutboundMail struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// SentMessageInfo carries the transport-assigned identifier of a
// dispatched message.
type SentMessageInfo struct {
	MessageID string
}
