package models

import (
	"time"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// PublicUser то, что отдаётся клиенту после регистрации и логина
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResult struct {
	User  PublicUser `json:"user"`
	Token string     `json:"token"`
}
