package service

import (
	"errors"
)

// Ошибки сервиса
var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrTokenMissing = errors.New("access token required")
	ErrTokenInvalid = errors.New("invalid or expired token")

	ErrMissingURL   = errors.New("original url is required")
	ErrInvalidURL   = errors.New("invalid url")
	ErrInvalidCode  = errors.New("invalid custom code")
	ErrCodeTaken    = errors.New("short code already exists")
	ErrLinkNotFound = errors.New("link not found")
)
