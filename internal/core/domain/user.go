package domain

import (
	"errors"
	"time"
)

const (
	RolePartner = "PARTNER"
	RoleParent  = "PARENT"
)

var ErrUserExists = errors.New("user already exists")
var ErrUserNotFound = errors.New("user not found")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInvalidRole = errors.New("invalid role")
var ErrRateLimited = errors.New("rate limited")

// User models an authenticated actor. Exactly one of PartnerID/ParentID is
// set depending on Role.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	PartnerID    string    `json:"partner_id,omitempty"`
	ParentID     string    `json:"parent_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
