package ports

import (
	"context"

	"github.com/piyushAgrawal44/ka-kha-ga/internal/core/domain"
)

// SendEmailInput carries everything needed to render and send one email.
// Variable keys are case-insensitive; the compiler uppercases them before
// matching __KEY__ placeholders.
type SendEmailInput struct {
	To              string
	RecipientName   string
	TemplateType    domain.TemplateType
	Variables       map[string]string
	SubjectOverride string
}

// EmailService defines the transactional email use cases.
type EmailService interface {
	SendEmail(ctx context.Context, input SendEmailInput) error
	// RetryFailed replays up to limit FAILED sends with their persisted
	// variables, returning how many succeeded.
	RetryFailed(ctx context.Context, limit int) (int, error)
}
