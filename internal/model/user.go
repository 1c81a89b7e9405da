package model

import "time"

// User represents a user row in the database.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents an API login request. The field is named
// username for OAuth2 password-flow compatibility but carries the
// user's email.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserPublic represents user data safe for API responses.
type UserPublic struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// TokenResponse represents a successful login response.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
