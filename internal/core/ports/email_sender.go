package ports

import "context"

// CompiledEmail is a fully rendered message ready for transport.
type CompiledEmail struct {
	Subject string
	HTML    string
	Text    string
}

// EmailSender abstracts the SMTP transport so the service can be tested
// without a mail server.
type EmailSender interface {
	Send(ctx context.Context, to, recipientName string, email CompiledEmail) error
}
