package handler

import (
	"github.com/SergeiKhy/link-tracker/internal/models"
	"github.com/SergeiKhy/link-tracker/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	service service.AuthService
	logger  *zap.Logger
}

func NewAuthHandler(service service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger,
	}
}

// Register godoc
// @Summary Register a user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.Credentials true "Email and password"
// @Success 200 {object} SuccessResponse{data=models.AuthResult}
// @Failure 400 {object} ErrorResponse
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.Credentials
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, h.logger, "Registration failed", err)
		return
	}

	respondOK(c, result)
}

// Login godoc
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.Credentials true "Email and password"
// @Success 200 {object} SuccessResponse{data=models.AuthResult}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.Credentials
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, h.logger, "Login failed", err)
		return
	}

	respondOK(c, result)
}
