package ports

import (
	"context"

	"github.com/estetica/salon-booking/internal/core/domain"
)

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	// Create stores a new user. It returns domain.ErrDuplicateEmail when the
	// email is already taken; the check and the insert are atomic.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
