package ports

import (
	"context"
	"time"
)

// CreateInvitationInput carries the data needed to invite a parent.
type CreateInvitationInput struct {
	PartnerID   string
	PartnerName string
	ParentEmail string
}

// CreateInvitationResult is returned after creating an invitation. InviteID is
// the opaque (encrypted) id safe to embed in an email link.
type CreateInvitationResult struct {
	InviteID    string
	ParentID    string
	ParentName  string
	ParentEmail string
	ExpiryAt    time.Time
}

// ValidateInvitationResult is the public view a parent sees before deciding.
type ValidateInvitationResult struct {
	PartnerName string
	ParentID    string
	Status      string
	ExpiryAt    time.Time
}

// ListInvitationsInput carries all parameters for the dashboard list endpoint.
type ListInvitationsInput struct {
	PartnerID  string
	Status     string
	ParentName string
	StartDate  time.Time
	EndDate    time.Time
	SortBy     string
	SortOrder  string
	Page       int
	Limit      int
}

// InvitationListItem is a single decorated row in the dashboard list.
type InvitationListItem struct {
	InviteID        string
	Status          string
	ParentName      string
	ParentEmail     string
	SentAt          time.Time
	ExpiryAt        time.Time
	ParentActionAt  *time.Time
	IsExpired       bool
	DaysUntilExpiry *int
}

// InvitationStatistics aggregates counts over the partner's whole invitation
// set, ignoring list filters. AcceptanceRate is a rounded percentage over
// decided invitations only.
type InvitationStatistics struct {
	Total          int64
	Pending        int64
	Accepted       int64
	Rejected       int64
	Expired        int64
	AcceptanceRate int
}

// PaginationMeta describes the page window of a list response.
type PaginationMeta struct {
	CurrentPage int
	TotalPages  int
	TotalCount  int64
	Limit       int
	HasNextPage bool
	HasPrevPage bool
}

// ListInvitationsResult is returned by List.
type ListInvitationsResult struct {
	Items      []InvitationListItem
	Statistics InvitationStatistics
	Pagination PaginationMeta
}

// InvitationService defines the invitation lifecycle use cases.
type InvitationService interface {
	Create(ctx context.Context, input CreateInvitationInput) (*CreateInvitationResult, error)
	Validate(ctx context.Context, inviteID string) (*ValidateInvitationResult, error)
	Accept(ctx context.Context, inviteID string) error
	Reject(ctx context.Context, inviteID string) error
	List(ctx context.Context, input ListInvitationsInput) (*ListInvitationsResult, error)
}
