package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/SergeiKhy/link-tracker/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type apiError struct {
	status  int
	message string
}

// Сопоставление ошибок сервиса со статусом и текстом ответа
var apiErrors = map[error]apiError{
	service.ErrMissingCredentials: {http.StatusBadRequest, "Email and password are required"},
	service.ErrPasswordTooShort:   {http.StatusBadRequest, "Password must be at least 6 characters"},
	service.ErrEmailTaken:         {http.StatusBadRequest, "Email already registered"},
	service.ErrInvalidCredentials: {http.StatusUnauthorized, "Invalid credentials"},
	service.ErrTokenMissing:       {http.StatusUnauthorized, "Access token required"},
	service.ErrTokenInvalid:       {http.StatusForbidden, "Invalid or expired token"},
	service.ErrMissingURL:         {http.StatusBadRequest, "Original URL is required"},
	service.ErrInvalidURL:         {http.StatusBadRequest, "Invalid URL format"},
	service.ErrInvalidCode:        {http.StatusBadRequest, "Custom code must be 3-32 letters, digits, '-' or '_'"},
	service.ErrCodeTaken:          {http.StatusBadRequest, "Short code already exists"},
	service.ErrLinkNotFound:       {http.StatusNotFound, "Link not found"},
}

// classifyError возвращает статус и сообщение; неизвестные ошибки дают 500
// с исходным текстом
func classifyError(err error) (int, string) {
	for sentinel, apiErr := range apiErrors {
		if errors.Is(err, sentinel) {
			return apiErr.status, apiErr.message
		}
	}
	return http.StatusInternalServerError, err.Error()
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

// respondServiceError отвечает ошибкой сервиса; 5xx логируются как ошибки
func respondServiceError(c *gin.Context, logger *zap.Logger, msg string, err error) {
	status, message := classifyError(err)
	if status >= http.StatusInternalServerError {
		logger.Error(msg, zap.Error(err))
	} else {
		logger.Debug(msg, zap.Error(err))
	}
	respondError(c, status, message)
}

// bindJSON разбирает тело запроса; пустое тело не ошибка, его поля
// проверяет сервис
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
