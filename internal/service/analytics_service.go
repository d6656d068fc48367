package service

import (
	"context"
	"errors"

	"github.com/SergeiKhy/link-tracker/internal/models"
	"github.com/SergeiKhy/link-tracker/internal/repository"
)

// dailyWindow сколько последних дней с кликами попадает в daily
const dailyWindow = 7

type AnalyticsService interface {
	GetAnalytics(ctx context.Context, linkID string) (*models.LinkAnalytics, error)
}

type analyticsService struct {
	linkRepo  repository.LinkRepository
	clickRepo repository.ClickRepository
}

func NewAnalyticsService(linkRepo repository.LinkRepository, clickRepo repository.ClickRepository) AnalyticsService {
	return &analyticsService{
		linkRepo:  linkRepo,
		clickRepo: clickRepo,
	}
}

// GetAnalytics считает агрегаты по ссылке, в том числе неактивной
func (s *analyticsService) GetAnalytics(ctx context.Context, linkID string) (*models.LinkAnalytics, error) {
	link, err := s.linkRepo.GetByID(ctx, linkID)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}

	summary, err := s.clickRepo.GetSummary(ctx, linkID)
	if err != nil {
		return nil, err
	}

	daily, err := s.clickRepo.GetDailyStats(ctx, linkID, dailyWindow)
	if err != nil {
		return nil, err
	}
	if daily == nil {
		daily = []models.DailyClickStats{}
	}

	return &models.LinkAnalytics{
		Link:         *link,
		ClickSummary: *summary,
		Daily:        daily,
	}, nil
}
