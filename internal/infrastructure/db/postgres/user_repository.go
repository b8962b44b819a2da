package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/estetica/salon-booking/internal/core/domain"
	"github.com/estetica/salon-booking/internal/core/ports"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create relies on the unique email constraint for atomic duplicate detection.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO app_users (id, name, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *u
	return &created, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, role, created_at
		FROM app_users
		WHERE email = $1
	`, email))
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, role, created_at
		FROM app_users
		WHERE id = $1
	`, id))
}

func (r *UserRepository) scanOne(row pgx.Row) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	parsed, err := domain.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("decode user %s: %w", u.ID, err)
	}
	u.Role = parsed
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}
