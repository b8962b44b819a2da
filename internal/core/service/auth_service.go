package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/estetica/salon-booking/internal/api/metrics"
	"github.com/estetica/salon-booking/internal/core/domain"
	"github.com/estetica/salon-booking/internal/core/ports"
)

// AdminAccount is the configured administrator. It is never persisted;
// login with these credentials yields a synthetic admin user.
type AdminAccount struct {
	ID       string
	Name     string
	Email    string
	Password string
}

func (a AdminAccount) matches(email, password string) bool {
	if a.Email == "" || a.Password == "" {
		return false
	}
	return email == a.Email && subtle.ConstantTimeCompare([]byte(password), []byte(a.Password)) == 1
}

func (a AdminAccount) user() *domain.User {
	return &domain.User{ID: a.ID, Name: a.Name, Email: a.Email, Role: domain.RoleAdmin}
}

// AuthService implements registration and login.
type AuthService struct {
	repo      ports.UserRepository
	admin     AdminAccount
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, admin AdminAccount, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{repo: repo, admin: admin, jwtSecret: jwtSecret, tokenTTL: tokenTTL, logger: logger}
}

// Register creates a client account and opens a session for it.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (string, *domain.User, error) {
	switch {
	case name == "":
		return "", nil, domain.MissingField("name")
	case email == "":
		return "", nil, domain.MissingField("email")
	case password == "":
		return "", nil, domain.MissingField("password")
	}
	// the admin address is reserved even though the admin is not stored
	if s.admin.Email != "" && email == s.admin.Email {
		metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		return "", nil, domain.ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("register: hash password: %w", err)
	}

	user := &domain.User{
		ID:           newID(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleClient,
		CreatedAt:    time.Now().UTC(),
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
			return "", nil, domain.ErrDuplicateEmail
		}
		s.logger.Error().Err(err).Msg("failed to create user")
		return "", nil, fmt.Errorf("register: %w", err)
	}

	token, err := s.generateToken(created)
	if err != nil {
		return "", nil, err
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	s.logger.Info().Str("user_id", created.ID).Msg("client registered")
	return token, created, nil
}

// Login matches the credentials against the configured admin first, then
// against the stored users.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return "", nil, domain.ErrInvalidCredentials
	}

	var user *domain.User
	if s.admin.matches(email, password) {
		user = s.admin.user()
	} else {
		found, err := s.repo.FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				metrics.LoginsTotal.WithLabelValues("invalid").Inc()
				return "", nil, domain.ErrInvalidCredentials
			}
			return "", nil, fmt.Errorf("login: %w", err)
		}
		if bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(password)) != nil {
			metrics.LoginsTotal.WithLabelValues("invalid").Inc()
			return "", nil, domain.ErrInvalidCredentials
		}
		user = found
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	metrics.LoginsTotal.WithLabelValues(string(user.Role)).Inc()
	s.logger.Debug().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("login")
	return token, user, nil
}

// Profile resolves the session user. The admin is answered from config.
func (s *AuthService) Profile(ctx context.Context, actor domain.Actor) (*domain.User, error) {
	if actor.IsAdmin() {
		if actor.UserID != s.admin.ID {
			return nil, domain.ErrUserNotFound
		}
		return s.admin.user(), nil
	}
	u, err := s.repo.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	return u, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"name": user.Name,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
