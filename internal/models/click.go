package models

import (
	"time"
)

type Click struct {
	ID        string    `json:"id"`
	LinkID    string    `json:"link_id"`
	UserAgent *string   `json:"user_agent"`
	Referer   *string   `json:"referer"`
	Country   *string   `json:"country"`
	CreatedAt time.Time `json:"created_at"`
}

type ClickEvent struct {
	LinkID    string
	ShortCode string
	UserAgent string
	Referer   string
}

type ClickSummary struct {
	TotalClicks int64 `json:"total_clicks"`
	ActiveDays  int64 `json:"active_days"`
}

type DailyClickStats struct {
	Date   string `json:"date"`
	Clicks int64  `json:"clicks"`
}
