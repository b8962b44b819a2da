package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/estetica/salon-booking/internal/core/domain"
	"github.com/estetica/salon-booking/internal/core/ports"
)

// userRecord is the flat JSON shape kept in the app_users array.
type userRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

func (r userRecord) toDomain() (*domain.User, error) {
	role, err := domain.ParseRole(r.Role)
	if err != nil {
		return nil, fmt.Errorf("decode user %s: %w", r.ID, err)
	}
	return &domain.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.Password,
		Role:         role,
		CreatedAt:    r.CreatedAt,
	}, nil
}

// UserRepository stores every user as one JSON array under app_users.
type UserRepository struct {
	client *redis.Client
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepository(client *redis.Client) *UserRepository {
	return &UserRepository{client: client}
}

// Create appends the user inside a watched transaction; the email check
// sees the same snapshot that gets written.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	rec := userRecord{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Password:  user.PasswordHash,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	}

	err := updateCollection(ctx, r.client, keyUsers, func(users []userRecord) ([]userRecord, error) {
		for _, u := range users {
			if u.Email == rec.Email {
				return nil, domain.ErrDuplicateEmail
			}
		}
		return append(users, rec), nil
	})
	if err != nil {
		return nil, err
	}

	created := *user
	return &created, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.find(ctx, func(u userRecord) bool { return u.Email == email })
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.find(ctx, func(u userRecord) bool { return u.ID == id })
}

func (r *UserRepository) find(ctx context.Context, match func(userRecord) bool) (*domain.User, error) {
	users, err := loadCollection[userRecord](ctx, r.client, keyUsers)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if match(u) {
			return u.toDomain()
		}
	}
	return nil, domain.ErrUserNotFound
}
