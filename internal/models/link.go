package models

import (
	"time"
)

type Link struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	OriginalURL string    `json:"original_url"`
	ShortCode   string    `json:"short_code"`
	Title       *string   `json:"title"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateLinkInput struct {
	OriginalURL string  `json:"originalUrl"`
	Title       *string `json:"title,omitempty"`
	CustomCode  *string `json:"customCode,omitempty"`
}

// LinkAnalytics строка ссылки вместе с агрегатами по кликам
type LinkAnalytics struct {
	Link
	ClickSummary
	Daily []DailyClickStats `json:"daily"`
}
