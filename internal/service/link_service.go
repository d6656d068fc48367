package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/SergeiKhy/link-tracker/internal/models"
	"github.com/SergeiKhy/link-tracker/internal/repository"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

// Константы сервиса
const (
	codeLength       = 6
	idLength         = 10
	maxCodeAttempts  = 5
	defaultCacheTTL  = 24 * time.Hour
	reservedCodeName = "api"
)

var customCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,32}$`)

// LinkService интерфейс сервиса ссылок
type LinkService interface {
	CreateLink(ctx context.Context, ownerID string, input *models.CreateLinkInput) (*models.Link, error)
	ListLinks(ctx context.Context, ownerID string) ([]models.Link, error)
	ResolveLink(ctx context.Context, code string) (*models.Link, error)
	SetLinkActive(ctx context.Context, id string, active bool) (*models.Link, error)
}

// linkService реализация сервиса ссылок
type linkService struct {
	linkRepo  repository.LinkRepository
	cacheRepo repository.CacheRepository
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// NewLinkService создаёт новый экземпляр сервиса
func NewLinkService(
	linkRepo repository.LinkRepository,
	cacheRepo repository.CacheRepository,
	cacheTTL time.Duration,
	logger *zap.Logger,
) LinkService {
	if cacheRepo == nil {
		cacheRepo = repository.NewNoopCache()
	}
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &linkService{
		linkRepo:  linkRepo,
		cacheRepo: cacheRepo,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// CreateLink создаёт новую короткую ссылку от имени владельца
func (s *linkService) CreateLink(ctx context.Context, ownerID string, input *models.CreateLinkInput) (*models.Link, error) {
	originalURL := strings.TrimSpace(input.OriginalURL)
	if originalURL == "" {
		return nil, ErrMissingURL
	}
	if err := validateURL(originalURL); err != nil {
		return nil, err
	}

	custom := ""
	if input.CustomCode != nil {
		custom = strings.TrimSpace(*input.CustomCode)
	}
	if custom != "" {
		if err := validateCustomCode(custom); err != nil {
			return nil, err
		}
	}

	var title *string
	if input.Title != nil && strings.TrimSpace(*input.Title) != "" {
		t := strings.TrimSpace(*input.Title)
		title = &t
	}

	id, err := gonanoid.New(idLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate link id: %w", err)
	}

	link := &models.Link{
		ID:          id,
		UserID:      ownerID,
		OriginalURL: originalURL,
		Title:       title,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}

	// Кастомный код пробуем ровно один раз; сгенерированный при коллизии
	// заменяем новым
	attempts := maxCodeAttempts
	if custom != "" {
		attempts = 1
	}

	for i := 0; i < attempts; i++ {
		link.ShortCode = custom
		if custom == "" {
			if link.ShortCode, err = gonanoid.New(codeLength); err != nil {
				return nil, fmt.Errorf("failed to generate code: %w", err)
			}
		}

		err = s.linkRepo.Create(ctx, link)
		if err == nil {
			s.logger.Info("Link created",
				zap.String("link_id", link.ID),
				zap.String("short_code", link.ShortCode),
				zap.String("user_id", ownerID),
			)
			return link, nil
		}
		if !errors.Is(err, repository.ErrCodeExists) {
			return nil, err
		}

		s.logger.Debug("Short code collision", zap.String("short_code", link.ShortCode), zap.Int("attempt", i+1))
	}

	return nil, ErrCodeTaken
}

// ListLinks возвращает ссылки владельца, новые первыми
func (s *linkService) ListLinks(ctx context.Context, ownerID string) ([]models.Link, error) {
	return s.linkRepo.ListByUser(ctx, ownerID)
}

// ResolveLink ищет активную ссылку по короткому коду (сначала кэш, затем БД)
func (s *linkService) ResolveLink(ctx context.Context, code string) (*models.Link, error) {
	link, err := s.cacheRepo.Get(ctx, code)
	if err == nil && link.IsActive {
		return link, nil
	}
	if err != nil && !errors.Is(err, repository.ErrCacheMiss) {
		s.logger.Warn("Cache read failed", zap.String("short_code", code), zap.Error(err))
	}

	link, err = s.linkRepo.GetActiveByShortCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}

	if err := s.cacheRepo.Set(ctx, code, link, s.cacheTTL); err != nil {
		s.logger.Warn("Cache write failed", zap.String("short_code", code), zap.Error(err))
	}

	return link, nil
}

// SetLinkActive включает или выключает ссылку и сбрасывает её из кэша
func (s *linkService) SetLinkActive(ctx context.Context, id string, active bool) (*models.Link, error) {
	if err := s.linkRepo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}

	link, err := s.linkRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cacheRepo.Delete(ctx, link.ShortCode); err != nil {
		s.logger.Warn("Cache invalidation failed", zap.String("short_code", link.ShortCode), zap.Error(err))
	}

	return link, nil
}

// validateURL принимает только абсолютные http(s) адреса
func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidURL
	}
	return nil
}

// validateCustomCode проверяет алфавит и длину, код "api" занят роутером
func validateCustomCode(code string) error {
	if !customCodePattern.MatchString(code) || strings.EqualFold(code, reservedCodeName) {
		return ErrInvalidCode
	}
	return nil
}
