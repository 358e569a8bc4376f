package ports

import (
	"context"
	"time"

	"github.com/piyushAgrawal44/ka-kha-ga/internal/core/domain"
)

// ListInvitationsFilter carries all query parameters for listing invitations.
// PartnerID is always enforced by the service layer.
type ListInvitationsFilter struct {
	PartnerID  string
	Status     domain.InvitationStatus // optional: filter by stored status
	ParentName string                  // optional: case-insensitive substring on parent_name
	DateFrom   time.Time               // optional: created_at >= DateFrom
	DateTo     time.Time               // optional: created_at <= DateTo
	SortField  string                  // mongo field name, validated by the service
	SortAsc    bool
	Page       int // 1-based
	Limit      int // capped at 100 by the service
}

// CountInvitationsFilter selects a single statistic bucket.
type CountInvitationsFilter struct {
	PartnerID string
	Status    domain.InvitationStatus // optional
	// ExpiredBefore counts rows with expiry_at < t (used with Status PENDING
	// to count derived-EXPIRED rows). ActiveAfter counts expiry_at >= t.
	ExpiredBefore time.Time
	ActiveAfter   time.Time
}

// InvitationRepository defines persistence operations for invitations.
type InvitationRepository interface {
	Create(ctx context.Context, inv *domain.Invitation) (*domain.Invitation, error)
	FindByID(ctx context.Context, id string) (*domain.Invitation, error)
	// UpdateStatusIfPending flips status only when the stored row is still
	// PENDING and not soft-deleted. Returns false when another request won.
	UpdateStatusIfPending(ctx context.Context, id string, status domain.InvitationStatus, actionAt time.Time) (bool, error)
	// List returns a page of invitations matching filter and the total count.
	List(ctx context.Context, filter ListInvitationsFilter) ([]*domain.Invitation, int64, error)
	Count(ctx context.Context, filter CountInvitationsFilter) (int64, error)
}
