package service

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/taskdeck/taskdeck-go/internal/crypto"
	"github.com/taskdeck/taskdeck-go/internal/model"
	"github.com/taskdeck/taskdeck-go/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrEmailRequired      = errors.New("email is required")
	ErrEmailInvalid       = errors.New("email is not a valid address")
	ErrPasswordRequired   = errors.New("password is required")
	ErrEmailTaken         = errors.New("email already registered")
)

// AuthService handles registration, login, and token resolution.
type AuthService struct {
	repo      *repository.UserRepository
	jwtSecret string
	jwtExpiry time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo *repository.UserRepository, secret string, expiry time.Duration) *AuthService {
	return &AuthService{
		repo:      repo,
		jwtSecret: secret,
		jwtExpiry: expiry,
	}
}

// TokenExpiry returns the configured access token lifetime.
func (s *AuthService) TokenExpiry() time.Duration {
	return s.jwtExpiry
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.UserPublic, error) {
	if req.Email == "" {
		return model.UserPublic{}, ErrEmailRequired
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return model.UserPublic{}, ErrEmailInvalid
	}
	if req.Password == "" {
		return model.UserPublic{}, ErrPasswordRequired
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return model.UserPublic{}, err
	}

	user := &model.User{
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.UserPublic{}, ErrEmailTaken
		}
		return model.UserPublic{}, err
	}

	return model.UserPublic{ID: user.ID, Email: user.Email}, nil
}

// Login verifies credentials and issues an access token. Unknown
// email and wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (model.TokenResponse, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.TokenResponse{}, ErrInvalidCredentials
		}
		return model.TokenResponse{}, err
	}

	if !crypto.VerifyPassword(password, user.PasswordHash) {
		return model.TokenResponse{}, ErrInvalidCredentials
	}

	token, err := crypto.GenerateToken(user.Email, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return model.TokenResponse{}, err
	}

	return model.TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}

// ResolveToken validates a bearer token and resolves its subject to a
// live user. A bad token and a token for a deleted user fail with the
// same error so the two cases cannot be told apart.
func (s *AuthService) ResolveToken(ctx context.Context, token string) (model.UserPublic, error) {
	subject, err := crypto.ValidateToken(token, s.jwtSecret)
	if err != nil {
		return model.UserPublic{}, crypto.ErrInvalidToken
	}

	user, err := s.repo.GetByEmail(ctx, subject)
	if err != nil {
		return model.UserPublic{}, crypto.ErrInvalidToken
	}

	return model.UserPublic{ID: user.ID, Email: user.Email}, nil
}
