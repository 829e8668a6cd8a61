package user

import "time"

type User struct {
	ID           int       `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100" example:"Mia Novak"`
	Email    string `json:"email" validate:"required,email" example:"mia@example.com"`
	Password string `json:"password" validate:"required,min=8" example:"secret123"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"mia@example.com"`
	Password string `json:"password" validate:"required" example:"secret123"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	User         User   `json:"user"`
}
