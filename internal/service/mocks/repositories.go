package mocks

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/SergeiKhy/link-tracker/internal/models"
	"github.com/SergeiKhy/link-tracker/internal/repository"
)

// MockUserRepository in-memory реализация repository.UserRepository для тестов
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User // email -> user
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*models.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[user.Email]; exists {
		return repository.ErrEmailExists
	}

	stored := *user
	m.users[user.Email] = &stored
	return nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *MockUserRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}

// MockLinkRepository in-memory реализация repository.LinkRepository для тестов
type MockLinkRepository struct {
	mu    sync.RWMutex
	links map[string]*models.Link // short_code -> link

	// CreateErr, если задана, возвращается из Create
	CreateErr error
}

func NewMockLinkRepository() *MockLinkRepository {
	return &MockLinkRepository{
		links: make(map[string]*models.Link),
	}
}

func (m *MockLinkRepository) Create(ctx context.Context, link *models.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateErr != nil {
		return m.CreateErr
	}
	if _, exists := m.links[link.ShortCode]; exists {
		return repository.ErrCodeExists
	}

	stored := *link
	m.links[link.ShortCode] = &stored
	return nil
}

func (m *MockLinkRepository) GetByID(ctx context.Context, id string) (*models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, link := range m.links {
		if link.ID == id {
			copied := *link
			return &copied, nil
		}
	}
	return nil, repository.ErrLinkNotFound
}

func (m *MockLinkRepository) GetActiveByShortCode(ctx context.Context, code string) (*models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, exists := m.links[code]
	if !exists || !link.IsActive {
		return nil, repository.ErrLinkNotFound
	}
	copied := *link
	return &copied, nil
}

func (m *MockLinkRepository) ListByUser(ctx context.Context, userID string) ([]models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	links := []models.Link{}
	for _, link := range m.links {
		if link.UserID == userID {
			links = append(links, *link)
		}
	}
	sort.Slice(links, func(i, j int) bool {
		return links[i].CreatedAt.After(links[j].CreatedAt)
	})
	return links, nil
}

func (m *MockLinkRepository) SetActive(ctx context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, link := range m.links {
		if link.ID == id {
			link.IsActive = active
			return nil
		}
	}
	return repository.ErrLinkNotFound
}

func (m *MockLinkRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.links)
}

// MockCacheRepository in-memory реализация repository.CacheRepository для тестов
type MockCacheRepository struct {
	mu    sync.RWMutex
	cache map[string]*models.Link
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		cache: make(map[string]*models.Link),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) (*models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, exists := m.cache[key]
	if !exists {
		return nil, repository.ErrCacheMiss
	}
	copied := *link
	return &copied, nil
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, link *models.Link, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *link
	m.cache[key] = &copied
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, key)
	return nil
}

// MockClickRepository in-memory реализация repository.ClickRepository для тестов
type MockClickRepository struct {
	mu     sync.RWMutex
	clicks map[string][]*models.Click // link_id -> clicks

	// RecordErr, если задана, возвращается из RecordClick
	RecordErr error
}

func NewMockClickRepository() *MockClickRepository {
	return &MockClickRepository{
		clicks: make(map[string][]*models.Click),
	}
}

func (m *MockClickRepository) RecordClick(ctx context.Context, click *models.Click) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.RecordErr != nil {
		return m.RecordErr
	}
	m.clicks[click.LinkID] = append(m.clicks[click.LinkID], click)
	return nil
}

func (m *MockClickRepository) GetSummary(ctx context.Context, linkID string) (*models.ClickSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	days := make(map[string]bool)
	for _, click := range m.clicks[linkID] {
		days[click.CreatedAt.UTC().Format(time.DateOnly)] = true
	}

	return &models.ClickSummary{
		TotalClicks: int64(len(m.clicks[linkID])),
		ActiveDays:  int64(len(days)),
	}, nil
}

func (m *MockClickRepository) GetDailyStats(ctx context.Context, linkID string, days int) ([]models.DailyClickStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int64)
	for _, click := range m.clicks[linkID] {
		counts[click.CreatedAt.UTC().Format(time.DateOnly)]++
	}

	stats := make([]models.DailyClickStats, 0, len(counts))
	for date, clicks := range counts {
		stats = append(stats, models.DailyClickStats{Date: date, Clicks: clicks})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Date > stats[j].Date })
	if len(stats) > days {
		stats = stats[:days]
	}
	return stats, nil
}

func (m *MockClickRepository) Clicks(linkID string) []*models.Click {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*models.Click(nil), m.clicks[linkID]...)
}

// ErrUnavailable имитирует упавшую базу
var ErrUnavailable = errors.New("database unavailable")
