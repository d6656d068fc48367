package handler

import (
	"net/http"
	"time"

	"github.com/SergeiKhy/link-tracker/internal/middleware"
	"github.com/SergeiKhy/link-tracker/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps зависимости роутера, собираются один раз при старте
type Deps struct {
	Auth      service.AuthService
	Links     service.LinkService
	Analytics service.AnalyticsService
	Clicks    service.ClickProcessor
	BaseURL   string
	Logger    *zap.Logger
}

func NewRouter(deps Deps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))

	authHandler := NewAuthHandler(deps.Auth, logger)
	linkHandler := NewLinkHandler(deps.Links, deps.Analytics, deps.Clicks, deps.BaseURL, logger)
	healthHandler := NewHealthHandler(deps.Clicks)

	requireAuth := middleware.RequireAuth(deps.Auth)

	api := router.Group("/api")
	{
		api.GET("/health", healthHandler.HealthCheck)

		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		api.POST("/links", requireAuth, linkHandler.CreateLink)
		api.GET("/links", requireAuth, linkHandler.ListLinks)
		api.GET("/links/:id/analytics", linkHandler.GetAnalytics)
	}

	// Редирект (корневой путь) - без аутентификации
	router.GET("/:shortCode", linkHandler.Redirect)

	router.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "Not found")
	})

	return router
}

type HealthHandler struct {
	clicks service.ClickProcessor
	now    func() time.Time
}

func NewHealthHandler(clicks service.ClickProcessor) *HealthHandler {
	return &HealthHandler{clicks: clicks, now: time.Now}
}

type HealthResponse struct {
	Status     string                `json:"status"`
	Timestamp  time.Time             `json:"timestamp"`
	ClickQueue *service.ChannelStats `json:"click_queue,omitempty"`
}

// HealthCheck godoc
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} SuccessResponse{data=HealthResponse}
// @Router /api/health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		Timestamp: h.now().UTC(),
	}
	if h.clicks != nil {
		stats := h.clicks.Stats()
		resp.ClickQueue = &stats
	}

	respondOK(c, resp)
}
