package domain

import (
	"errors"
	"fmt"
	"time"
)

// InvitationStatus represents the lifecycle state of a parent invitation.
// EXPIRED is derived (PENDING past its expiry), never stored.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationRejected InvitationStatus = "REJECTED"
	InvitationExpired  InvitationStatus = "EXPIRED"
)

// InvitationTTL is how long an invitation stays actionable after creation.
const InvitationTTL = 48 * time.Hour

var ErrInvitationNotFound = errors.New("invitation not found")
var ErrInvitationGone = errors.New("invitation no longer available")
var ErrInvitationExpired = errors.New("invitation expired")
var ErrInvalidInviteID = errors.New("invalid invite id")
var ErrParentNotFound = errors.New("parent not found")

// AlreadyProcessedError is returned when a parent acts on an invitation that
// has already been accepted or rejected. The stored status is carried so the
// response can name it.
type AlreadyProcessedError struct {
	Status InvitationStatus
}

func (e *AlreadyProcessedError) Error() string {
	return fmt.Sprintf("invitation already %s", e.Status)
}

// Invitation is the partner→parent invitation aggregate. Parent name/email
// and partner name are denormalized at creation time so the dashboard list
// can filter and render without joins.
type Invitation struct {
	ID             string           `json:"id"`
	PartnerID      string           `json:"partner_id"`
	PartnerName    string           `json:"partner_name"`
	ParentID       string           `json:"parent_id"`
	ParentName     string           `json:"parent_name"`
	ParentEmail    string           `json:"parent_email"`
	Status         InvitationStatus `json:"status"`
	CreatedAt      time.Time        `json:"created_at"`
	ExpiryAt       time.Time        `json:"expiry_at"`
	ParentActionAt *time.Time       `json:"parent_action_at,omitempty"`
	DeletedAt      *time.Time       `json:"deleted_at,omitempty"`
}

// IsExpired reports whether the invitation is past its expiry while still
// stored as PENDING.
func (i *Invitation) IsExpired(now time.Time) bool {
	return i.Status == InvitationPending && now.After(i.ExpiryAt)
}

// EffectiveStatus resolves the derived EXPIRED state on top of the stored one.
func (i *Invitation) EffectiveStatus(now time.Time) InvitationStatus {
	if i.IsExpired(now) {
		return InvitationExpired
	}
	return i.Status
}
