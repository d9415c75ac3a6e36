package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/joinup-app/joinup/internal/user"
	"github.com/joinup-app/joinup/pkg/clock"
)

// Common errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserSuspended      = errors.New("account suspended")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already registered")
)

// UserStore is the account persistence surface the service needs.
type UserStore interface {
	GetByLogin(ctx context.Context, login string) (*user.User, error)
	FindConflict(ctx context.Context, username, email string) (*user.User, error)
	Create(ctx context.Context, u *user.User) (*user.User, error)
}

// Service handles registration and credential verification
type Service struct {
	users    UserStore
	secret   []byte
	tokenTTL time.Duration
	clock    clock.Clock
}

// NewService creates a new auth service with dependencies injected
func NewService(users UserStore, secret string, tokenTTL time.Duration, clk clock.Clock) *Service {
	return &Service{users: users, secret: []byte(secret), tokenTTL: tokenTTL, clock: clk}
}

// Register creates a new account with a hashed password
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*user.User, error) {
	existing, err := s.users.FindConflict(ctx, req.Username, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Username == req.Username {
			return nil, ErrUsernameTaken
		}
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	aboutMe := req.AboutMe
	if aboutMe == "" {
		aboutMe = user.DefaultAboutMe
	}

	return s.users.Create(ctx, &user.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hash),
		AboutMe:  aboutMe,
		Avatar:   user.Avatar{URL: user.DefaultAvatarURL},
		IsActive: true,
	})
}

// Login verifies credentials and issues a signed token. Suspended
// accounts are rejected even with valid credentials.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*user.User, string, error) {
	u, err := s.users.GetByLogin(ctx, req.Username)
	if err != nil {
		return nil, "", err
	}
	if u == nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if !u.IsActive {
		return nil, "", ErrUserSuspended
	}

	now := s.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": u.ID.Hex(),
		"iat":     now.Unix(),
		"exp":     now.Add(s.tokenTTL).Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign token: %w", err)
	}
	return u, signed, nil
}

// TokenTTL exposes the configured token lifetime for the cookie.
func (s *Service) TokenTTL() time.Duration { return s.tokenTTL }
