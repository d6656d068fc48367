package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/SergeiKhy/link-tracker/internal/models"
	"github.com/SergeiKhy/link-tracker/internal/service"
	"github.com/SergeiKhy/link-tracker/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthService() (service.AuthService, *mocks.MockUserRepository) {
	userRepo := mocks.NewMockUserRepository()
	tokens := service.NewTokenManager("test-secret", time.Hour)
	return service.NewAuthService(userRepo, tokens, nil), userRepo
}

// TestAuthService_Register_Success проверяет регистрацию и выдачу токена
func TestAuthService_Register_Success(t *testing.T) {
	auth, userRepo := setupAuthService()
	ctx := context.Background()

	result, err := auth.Register(ctx, models.Credentials{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	assert.NotEmpty(t, result.User.ID)
	assert.Equal(t, "a@x.com", result.User.Email)
	assert.NotEmpty(t, result.Token)

	// Пароль хранится только в виде хеша
	stored, err := userRepo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash)

	claims, err := auth.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User, claims.User())
}

// TestAuthService_Register_Validation проверяет ошибки валидации
func TestAuthService_Register_Validation(t *testing.T) {
	auth, userRepo := setupAuthService()

	tests := []struct {
		name  string
		creds models.Credentials
		err   error
	}{
		{"пустой email", models.Credentials{Password: "secret1"}, service.ErrMissingCredentials},
		{"пустой пароль", models.Credentials{Email: "a@x.com"}, service.ErrMissingCredentials},
		{"короткий пароль", models.Credentials{Email: "a@x.com", Password: "12345"}, service.ErrPasswordTooShort},
		{"3 символа в 6 байтах", models.Credentials{Email: "a@x.com", Password: "ééé"}, service.ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Register(context.Background(), tt.creds)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	assert.Equal(t, 0, userRepo.Count())
}

// TestAuthService_Register_DuplicateEmail проверяет, что email уникален
func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	auth, userRepo := setupAuthService()
	ctx := context.Background()

	_, err := auth.Register(ctx, models.Credentials{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = auth.Register(ctx, models.Credentials{Email: "a@x.com", Password: "another"})
	assert.ErrorIs(t, err, service.ErrEmailTaken)
	assert.Equal(t, 1, userRepo.Count())
}

// TestAuthService_Login проверяет логин с верными и неверными данными
func TestAuthService_Login(t *testing.T) {
	auth, _ := setupAuthService()
	ctx := context.Background()

	registered, err := auth.Register(ctx, models.Credentials{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	result, err := auth.Login(ctx, models.Credentials{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, registered.User, result.User)
	assert.NotEmpty(t, result.Token)

	_, err = auth.Login(ctx, models.Credentials{Email: "a@x.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = auth.Login(ctx, models.Credentials{Email: "nobody@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = auth.Login(ctx, models.Credentials{Email: "a@x.com"})
	assert.ErrorIs(t, err, service.ErrMissingCredentials)
}

// TestAuthService_UnicodePassword проверяет, что длина пароля считается в символах
func TestAuthService_UnicodePassword(t *testing.T) {
	auth, _ := setupAuthService()
	ctx := context.Background()

	creds := models.Credentials{Email: "u@x.com", Password: "пароль"}
	_, err := auth.Register(ctx, creds)
	require.NoError(t, err)

	_, err = auth.Login(ctx, creds)
	assert.NoError(t, err)
}

// TestAuthService_LongPassword проверяет пароли длиннее лимита bcrypt в 72 байта
func TestAuthService_LongPassword(t *testing.T) {
	auth, _ := setupAuthService()
	ctx := context.Background()

	long := strings.Repeat("a", 80)
	_, err := auth.Register(ctx, models.Credentials{Email: "long@x.com", Password: long})
	require.NoError(t, err)

	result, err := auth.Login(ctx, models.Credentials{Email: "long@x.com", Password: long})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	// Отличие после 72-го байта тоже имеет значение
	_, err = auth.Login(ctx, models.Credentials{Email: "long@x.com", Password: strings.Repeat("a", 79) + "b"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

// TestAuthService_Authenticate_UnknownUser проверяет токен пользователя, которого нет в базе
func TestAuthService_Authenticate_UnknownUser(t *testing.T) {
	auth, _ := setupAuthService()
	tokens := service.NewTokenManager("test-secret", time.Hour)

	token, err := tokens.Issue(models.PublicUser{ID: "ghost", Email: "ghost@x.com"})
	require.NoError(t, err)

	_, err = auth.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, service.ErrTokenInvalid)

	_, err = auth.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, service.ErrTokenMissing)
}
