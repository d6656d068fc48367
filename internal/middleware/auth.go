package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/SergeiKhy/link-tracker/internal/models"
	"github.com/SergeiKhy/link-tracker/internal/service"
	"github.com/gin-gonic/gin"
)

const (
	userContextKey = "auth_user"
	bearerPrefix   = "Bearer "
)

// TokenAuthenticator проверяет сессионный токен
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*service.Claims, error)
}

// RequireAuth пропускает запрос только с валидным Bearer токеном.
// Нет токена: 401. Токен невалиден, истёк или его пользователя нет: 403.
func RequireAuth(auth TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
			return
		}

		claims, err := auth.Authenticate(c.Request.Context(), token)
		switch {
		case err == nil:
		case errors.Is(err, service.ErrTokenMissing):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
			return
		case errors.Is(err, service.ErrTokenInvalid):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid or expired token"})
			return
		default:
			// Ошибка хранилища
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		// Устанавливаем пользователя в контекст для последующих handlers
		c.Set(userContextKey, claims.User())
		c.Next()
	}
}

// CurrentUser извлекает пользователя, установленного RequireAuth
func CurrentUser(c *gin.Context) (models.PublicUser, bool) {
	value, exists := c.Get(userContextKey)
	if !exists {
		return models.PublicUser{}, false
	}
	user, ok := value.(models.PublicUser)
	return user, ok
}

func bearerToken(header string) string {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}
