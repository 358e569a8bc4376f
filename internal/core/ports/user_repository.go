package ports

import (
	"context"

	"github.com/piyushAgrawal44/ka-kha-ga/internal/core/domain"
)

// UserRepository defines persistence for users and their role profiles.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// CreatePartnerProfile inserts a partner profile and returns its id.
	CreatePartnerProfile(ctx context.Context, userID, companyName string) (string, error)
	// CreateParentProfile inserts a parent profile and returns its id.
	CreateParentProfile(ctx context.Context, userID, name string) (string, error)
	// LinkProfile stores the created profile id back onto the user row.
	LinkProfile(ctx context.Context, userID, role, profileID string) error
}
