package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/SergeiKhy/link-tracker/internal/models"
	"github.com/SergeiKhy/link-tracker/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// AuthService регистрация, логин и проверка сессионных токенов
type AuthService interface {
	Register(ctx context.Context, creds models.Credentials) (*models.AuthResult, error)
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error)
	Authenticate(ctx context.Context, token string) (*Claims, error)
}

type authService struct {
	userRepo   repository.UserRepository
	tokens     *TokenManager
	bcryptCost int
	logger     *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, tokens *TokenManager, logger *zap.Logger) AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &authService{
		userRepo:   userRepo,
		tokens:     tokens,
		bcryptCost: bcrypt.DefaultCost,
		logger:     logger,
	}
}

// Register создаёт пользователя и сразу выдаёт токен
func (s *authService) Register(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return nil, ErrMissingCredentials
	}
	if utf8.RuneCountInString(creds.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword(prehash(creds.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        creds.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID))

	return s.issue(user)
}

// Login сверяет пароль с хешем; неизвестный email и неверный пароль неотличимы
func (s *authService) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), prehash(creds.Password)); err != nil {
		s.logger.Debug("Password mismatch", zap.String("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// Authenticate проверяет токен и что его владелец всё ещё существует
func (s *authService) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByID(ctx, claims.ID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: unknown user %s", ErrTokenInvalid, claims.ID)
		}
		return nil, err
	}

	return claims, nil
}

func (s *authService) issue(user *models.User) (*models.AuthResult, error) {
	public := models.PublicUser{ID: user.ID, Email: user.Email}

	token, err := s.tokens.Issue(public)
	if err != nil {
		return nil, err
	}

	return &models.AuthResult{User: public, Token: token}, nil
}

// prehash сводит пароль любой длины к 44 байтам: bcrypt не принимает больше 72
func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}
