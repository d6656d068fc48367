package repository

import (
	"context"
	"fmt"

	"github.com/SergeiKhy/link-tracker/internal/models"
)

type ClickRepository interface {
	RecordClick(ctx context.Context, click *models.Click) error
	GetSummary(ctx context.Context, linkID string) (*models.ClickSummary, error)
	GetDailyStats(ctx context.Context, linkID string, days int) ([]models.DailyClickStats, error)
}

type clickRepository struct {
	db *PostgresDB
}

func NewClickRepository(db *PostgresDB) ClickRepository {
	return &clickRepository{db: db}
}

func (r *clickRepository) RecordClick(ctx context.Context, click *models.Click) error {
	query := `
		INSERT INTO clicks (id, link_id, user_agent, referer, country, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		click.ID,
		click.LinkID,
		click.UserAgent,
		click.Referer,
		click.Country,
		click.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record click: %w", err)
	}

	return nil
}

// Календарные дни считаются в UTC
func (r *clickRepository) GetSummary(ctx context.Context, linkID string) (*models.ClickSummary, error) {
	query := `
		SELECT
			COUNT(*) AS total_clicks,
			COUNT(DISTINCT (created_at AT TIME ZONE 'UTC')::date) AS active_days
		FROM clicks
		WHERE link_id = $1
	`

	summary := &models.ClickSummary{}
	err := r.db.Pool.QueryRow(ctx, query, linkID).Scan(
		&summary.TotalClicks,
		&summary.ActiveDays,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get click summary: %w", err)
	}

	return summary, nil
}

// GetDailyStats возвращает последние days дней, в которые были клики (а не
// последние days календарных дней), от новых к старым.
func (r *clickRepository) GetDailyStats(ctx context.Context, linkID string, days int) ([]models.DailyClickStats, error) {
	query := `
		SELECT
			to_char((created_at AT TIME ZONE 'UTC')::date, 'YYYY-MM-DD') AS date,
			COUNT(*) AS clicks
		FROM clicks
		WHERE link_id = $1
		GROUP BY 1
		ORDER BY 1 DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, linkID, days)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stats: %w", err)
	}
	defer rows.Close()

	stats := []models.DailyClickStats{}
	for rows.Next() {
		var dailyStat models.DailyClickStats
		if err := rows.Scan(&dailyStat.Date, &dailyStat.Clicks); err != nil {
			return nil, fmt.Errorf("failed to scan daily stat: %w", err)
		}
		stats = append(stats, dailyStat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily stats: %w", err)
	}

	return stats, nil
}
