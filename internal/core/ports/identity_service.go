package ports

import (
	"context"

	"github.com/estetica/salon-booking/internal/core/domain"
)

// IdentityService registers clients and opens sessions. Both operations
// return a signed session token along with the user.
type IdentityService interface {
	Register(ctx context.Context, name, email, password string) (string, *domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	// Profile returns the user behind a session.
	Profile(ctx context.Context, actor domain.Actor) (*domain.User, error)
}
