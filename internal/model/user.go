package model

import "time"

// User represents a user account in the store.
type User struct {
	ID           string
	UserName     string
	PasswordHash string
	Email        string
	Favourites   []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	UserName  string `json:"userName"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
	Email     string `json:"email"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

// FavouriteRequest carries an item id in a request body.
type FavouriteRequest struct {
	ID string `json:"id"`
}

// MessageResponse is the acknowledgment returned by registration and by every error.
type MessageResponse struct {
	Message string `json:"message"`
}

// LoginResponse carries the bearer token issued at login.
type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// UserResponse represents user data safe for API responses (no password hash).
type UserResponse struct {
	ID         string    `json:"id"`
	UserName   string    `json:"userName"`
	Email      string    `json:"email"`
	Favourites []string  `json:"favourites"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	ID       string
	UserName string
}
