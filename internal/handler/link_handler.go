package handler

import (
	"net/http"
	"strings"

	"github.com/SergeiKhy/link-tracker/internal/middleware"
	"github.com/SergeiKhy/link-tracker/internal/models"
	"github.com/SergeiKhy/link-tracker/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LinkHandler struct {
	service        service.LinkService
	analytics      service.AnalyticsService
	clickProcessor service.ClickProcessor
	baseURL        string
	logger         *zap.Logger
}

func NewLinkHandler(
	service service.LinkService,
	analytics service.AnalyticsService,
	clickProcessor service.ClickProcessor,
	baseURL string,
	logger *zap.Logger,
) *LinkHandler {
	return &LinkHandler{
		service:        service,
		analytics:      analytics,
		clickProcessor: clickProcessor,
		baseURL:        strings.TrimRight(baseURL, "/"),
		logger:         logger,
	}
}

type CreateLinkResponse struct {
	ID          string  `json:"id"`
	OriginalURL string  `json:"originalUrl"`
	ShortCode   string  `json:"shortCode"`
	ShortURL    string  `json:"shortUrl"`
	Title       *string `json:"title"`
}

// CreateLink godoc
// @Summary Create a short link
// @Description Create a new shortened URL owned by the caller
// @Tags links
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateLinkInput true "Link creation request"
// @Success 200 {object} SuccessResponse{data=CreateLinkResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/links [post]
func (h *LinkHandler) CreateLink(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Access token required")
		return
	}

	var req models.CreateLinkInput
	if !bindJSON(c, &req) {
		return
	}

	link, err := h.service.CreateLink(c.Request.Context(), user.ID, &req)
	if err != nil {
		respondServiceError(c, h.logger, "Failed to create link", err)
		return
	}

	respondOK(c, CreateLinkResponse{
		ID:          link.ID,
		OriginalURL: link.OriginalURL,
		ShortCode:   link.ShortCode,
		ShortURL:    h.shortURL(c, link.ShortCode),
		Title:       link.Title,
	})
}

// ListLinks godoc
// @Summary List the caller's links
// @Tags links
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SuccessResponse{data=[]models.Link}
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/links [get]
func (h *LinkHandler) ListLinks(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Access token required")
		return
	}

	links, err := h.service.ListLinks(c.Request.Context(), user.ID)
	if err != nil {
		respondServiceError(c, h.logger, "Failed to list links", err)
		return
	}

	respondOK(c, links)
}

// Redirect godoc
// @Summary Redirect to original URL
// @Description Redirect to the original URL by short code and record a click
// @Tags links
// @Param shortCode path string true "Short code"
// @Success 302
// @Failure 404 {object} ErrorResponse
// @Router /{shortCode} [get]
func (h *LinkHandler) Redirect(c *gin.Context) {
	code := c.Param("shortCode")

	link, err := h.service.ResolveLink(c.Request.Context(), code)
	if err != nil {
		respondServiceError(c, h.logger, "Failed to resolve link", err)
		return
	}

	// Асинхронная запись статистики
	h.clickProcessor.RecordClick(&models.ClickEvent{
		LinkID:    link.ID,
		ShortCode: link.ShortCode,
		UserAgent: c.Request.UserAgent(),
		Referer:   c.Request.Referer(),
	})

	c.Redirect(http.StatusFound, link.OriginalURL)
}

// GetAnalytics godoc
// @Summary Get click analytics for a link
// @Description Total clicks, active days and per-day counts for the last 7 active days
// @Tags links
// @Produce json
// @Param id path string true "Link ID"
// @Success 200 {object} SuccessResponse{data=models.LinkAnalytics}
// @Failure 404 {object} ErrorResponse
// @Router /api/links/{id}/analytics [get]
func (h *LinkHandler) GetAnalytics(c *gin.Context) {
	analytics, err := h.analytics.GetAnalytics(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, h.logger, "Failed to get analytics", err)
		return
	}

	respondOK(c, analytics)
}

// shortURL берёт базовый адрес из конфига, иначе собирает его из запроса
func (h *LinkHandler) shortURL(c *gin.Context, code string) string {
	if h.baseURL != "" {
		return h.baseURL + "/" + code
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	return scheme + "://" + c.Request.Host + "/" + code
}
