package ports

import (
	"context"

	"github.com/piyushAgrawal44/ka-kha-ga/internal/core/domain"
)

// EmailRepository defines persistence for templates and the send audit trail.
type EmailRepository interface {
	// TemplateByType returns the active template for the given type.
	TemplateByType(ctx context.Context, t domain.TemplateType) (*domain.EmailTemplate, error)
	// GlobalTemplate returns the active global header/footer wrapper.
	GlobalTemplate(ctx context.Context) (*domain.GlobalTemplate, error)
	CreateLog(ctx context.Context, log *domain.EmailLog) error
	// FailedLogs returns up to limit FAILED rows not yet replayed, oldest
	// first.
	FailedLogs(ctx context.Context, limit int) ([]*domain.EmailLog, error)
	// MarkLogRetried stamps a FAILED row as replayed so it is not picked up
	// again; a failed replay produces its own fresh FAILED row.
	MarkLogRetried(ctx context.Context, id string) error
}
