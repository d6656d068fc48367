package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/SergeiKhy/link-tracker/internal/models"
	"github.com/SergeiKhy/link-tracker/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *DB) repository.UserRepository {
	return &userRepository{db: db.Gorm}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	row := userRow{
		ID:           user.ID,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt.UTC(),
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return repository.ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "email = ?", email)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *userRepository) getOne(ctx context.Context, where string, arg string) (*models.User, error) {
	var row userRow
	if err := r.db.WithContext(ctx).Where(where, arg).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &models.User{
		ID:           row.ID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
	}, nil
}

type linkRepository struct {
	db *gorm.DB
}

func NewLinkRepository(db *DB) repository.LinkRepository {
	return &linkRepository{db: db.Gorm}
}

func (r *linkRepository) Create(ctx context.Context, link *models.Link) error {
	row := linkRow{
		ID:          link.ID,
		UserID:      link.UserID,
		OriginalURL: link.OriginalURL,
		ShortCode:   link.ShortCode,
		Title:       link.Title,
		IsActive:    link.IsActive,
		CreatedAt:   link.CreatedAt.UTC(),
	}

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return repository.ErrCodeExists
		}
		return fmt.Errorf("failed to create link: %w", err)
	}

	return nil
}

func (r *linkRepository) GetByID(ctx context.Context, id string) (*models.Link, error) {
	return r.getOne(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *linkRepository) GetActiveByShortCode(ctx context.Context, code string) (*models.Link, error) {
	return r.getOne(r.db.WithContext(ctx).Where("short_code = ? AND is_active = ?", code, true))
}

func (r *linkRepository) ListByUser(ctx context.Context, userID string) ([]models.Link, error) {
	var rows []linkRow
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}

	links := make([]models.Link, 0, len(rows))
	for _, row := range rows {
		links = append(links, toLink(row))
	}

	return links, nil
}

func (r *linkRepository) SetActive(ctx context.Context, id string, active bool) error {
	result := r.db.WithContext(ctx).
		Model(&linkRow{}).
		Where("id = ?", id).
		Update("is_active", active)
	if result.Error != nil {
		return fmt.Errorf("failed to update link: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return repository.ErrLinkNotFound
	}

	return nil
}

func (r *linkRepository) getOne(query *gorm.DB) (*models.Link, error) {
	var row linkRow
	if err := query.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	link := toLink(row)
	return &link, nil
}

func toLink(row linkRow) models.Link {
	return models.Link{
		ID:          row.ID,
		UserID:      row.UserID,
		OriginalURL: row.OriginalURL,
		ShortCode:   row.ShortCode,
		Title:       row.Title,
		IsActive:    row.IsActive,
		CreatedAt:   row.CreatedAt,
	}
}

type clickRepository struct {
	db *gorm.DB
}

func NewClickRepository(db *DB) repository.ClickRepository {
	return &clickRepository{db: db.Gorm}
}

func (r *clickRepository) RecordClick(ctx context.Context, click *models.Click) error {
	row := clickRow{
		ID:        click.ID,
		LinkID:    click.LinkID,
		UserAgent: click.UserAgent,
		Referer:   click.Referer,
		Country:   click.Country,
		CreatedAt: click.CreatedAt.UTC(),
	}

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to record click: %w", err)
	}

	return nil
}

// Время пишется в UTC, поэтому первые 10 символов created_at и есть дата UTC
const clickDay = "substr(created_at, 1, 10)"

func (r *clickRepository) GetSummary(ctx context.Context, linkID string) (*models.ClickSummary, error) {
	var summary models.ClickSummary
	err := r.db.WithContext(ctx).
		Model(&clickRow{}).
		Select("COUNT(*) AS total_clicks, COUNT(DISTINCT "+clickDay+") AS active_days").
		Where("link_id = ?", linkID).
		Scan(&summary).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get click summary: %w", err)
	}

	return &summary, nil
}

func (r *clickRepository) GetDailyStats(ctx context.Context, linkID string, days int) ([]models.DailyClickStats, error) {
	stats := []models.DailyClickStats{}
	err := r.db.WithContext(ctx).
		Model(&clickRow{}).
		Select(clickDay+" AS date, COUNT(*) AS clicks").
		Where("link_id = ?", linkID).
		Group(clickDay).
		Order("date DESC").
		Limit(days).
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stats: %w", err)
	}

	return stats, nil
}
