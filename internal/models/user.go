package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID     `json:"id"`
	Username     string        `json:"username"`
	Email        *string       `json:"email"`
	PasswordHash string        `json:"-"`
	CreatedAt    time.Time     `json:"created_at"`
	LastLoginAt  *time.Time    `json:"last_login_at"`
	Profile      PlayerProfile `json:"profile"`
}

type PlayerProfile struct {
	TotalGames   int `json:"total_games"`
	BestScore    int `json:"best_score"`
	TotalCorrect int `json:"total_correct"`
	TotalWrong   int `json:"total_wrong"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=150,username"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
