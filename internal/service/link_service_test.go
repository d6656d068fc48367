package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/SergeiKhy/link-tracker/internal/models"
	"github.com/SergeiKhy/link-tracker/internal/repository"
	"github.com/SergeiKhy/link-tracker/internal/service"
	"github.com/SergeiKhy/link-tracker/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupTestService создаёт тестовое окружение с моковыми репозиториями
func setupTestService() (service.LinkService, *mocks.MockLinkRepository, *mocks.MockCacheRepository) {
	linkRepo := mocks.NewMockLinkRepository()
	cacheRepo := mocks.NewMockCacheRepository()
	logger, _ := zap.NewDevelopment()
	linkService := service.NewLinkService(linkRepo, cacheRepo, time.Hour, logger)
	return linkService, linkRepo, cacheRepo
}

func strPtr(s string) *string {
	return &s
}

// TestLinkService_CreateLink_Success проверяет создание ссылки со случайным кодом
func TestLinkService_CreateLink_Success(t *testing.T) {
	linkService, _, _ := setupTestService()

	input := &models.CreateLinkInput{
		OriginalURL: "https://example.com/test",
		Title:       strPtr("Example"),
	}

	link, err := linkService.CreateLink(context.Background(), "user-1", input)

	require.NoError(t, err)
	assert.NotEmpty(t, link.ID)
	assert.Len(t, link.ShortCode, 6)
	assert.Equal(t, "user-1", link.UserID)
	assert.Equal(t, input.OriginalURL, link.OriginalURL)
	assert.Equal(t, "Example", *link.Title)
	assert.True(t, link.IsActive)
	assert.False(t, link.CreatedAt.IsZero())
}

// TestLinkService_CreateLink_WithCustomCode проверяет создание ссылки с кастомным кодом
func TestLinkService_CreateLink_WithCustomCode(t *testing.T) {
	linkService, _, _ := setupTestService()

	input := &models.CreateLinkInput{
		OriginalURL: "https://example.com",
		CustomCode:  strPtr("abc123"),
	}

	link, err := linkService.CreateLink(context.Background(), "user-1", input)

	require.NoError(t, err)
	assert.Equal(t, "abc123", link.ShortCode)
	assert.Nil(t, link.Title)
}

// TestLinkService_CreateLink_Validation проверяет отклонение некорректного ввода
func TestLinkService_CreateLink_Validation(t *testing.T) {
	linkService, linkRepo, _ := setupTestService()

	tests := []struct {
		name  string
		input models.CreateLinkInput
		err   error
	}{
		{"пустой URL", models.CreateLinkInput{}, service.ErrMissingURL},
		{"URL из пробелов", models.CreateLinkInput{OriginalURL: "   "}, service.ErrMissingURL},
		{"без схемы", models.CreateLinkInput{OriginalURL: "example.com"}, service.ErrInvalidURL},
		{"чужая схема", models.CreateLinkInput{OriginalURL: "ftp://example.com"}, service.ErrInvalidURL},
		{"короткий код", models.CreateLinkInput{OriginalURL: "https://example.com", CustomCode: strPtr("ab")}, service.ErrInvalidCode},
		{"недопустимые символы", models.CreateLinkInput{OriginalURL: "https://example.com", CustomCode: strPtr("a/b/c")}, service.ErrInvalidCode},
		{"зарезервированный код", models.CreateLinkInput{OriginalURL: "https://example.com", CustomCode: strPtr("api")}, service.ErrInvalidCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := linkService.CreateLink(context.Background(), "user-1", &tt.input)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	assert.Equal(t, 0, linkRepo.Count())
}

// TestLinkService_CreateLink_DuplicateCustomCode проверяет, что занятый код не перезаписывается
func TestLinkService_CreateLink_DuplicateCustomCode(t *testing.T) {
	linkService, linkRepo, _ := setupTestService()
	ctx := context.Background()

	input := &models.CreateLinkInput{OriginalURL: "https://example.com", CustomCode: strPtr("abc123")}
	_, err := linkService.CreateLink(ctx, "user-1", input)
	require.NoError(t, err)

	input = &models.CreateLinkInput{OriginalURL: "https://other.com", CustomCode: strPtr("abc123")}
	_, err = linkService.CreateLink(ctx, "user-2", input)
	assert.ErrorIs(t, err, service.ErrCodeTaken)

	assert.Equal(t, 1, linkRepo.Count())
	link, err := linkService.ResolveLink(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", link.OriginalURL)
}

// TestLinkService_CreateLink_RepositoryError проверяет проброс ошибок БД
func TestLinkService_CreateLink_RepositoryError(t *testing.T) {
	linkService, linkRepo, _ := setupTestService()
	linkRepo.CreateErr = mocks.ErrUnavailable

	_, err := linkService.CreateLink(context.Background(), "user-1", &models.CreateLinkInput{OriginalURL: "https://example.com"})
	assert.ErrorIs(t, err, mocks.ErrUnavailable)
}

// TestLinkService_CreateLink_GeneratedCodeCollision проверяет ограниченное число повторов
func TestLinkService_CreateLink_GeneratedCodeCollision(t *testing.T) {
	linkService, linkRepo, _ := setupTestService()
	linkRepo.CreateErr = repository.ErrCodeExists

	_, err := linkService.CreateLink(context.Background(), "user-1", &models.CreateLinkInput{OriginalURL: "https://example.com"})
	assert.ErrorIs(t, err, service.ErrCodeTaken)
}

// TestLinkService_CreateLink_UniqueCodes проверяет уникальность сгенерированных кодов
func TestLinkService_CreateLink_UniqueCodes(t *testing.T) {
	linkService, _, _ := setupTestService()
	ctx := context.Background()

	codes := make(map[string]bool)
	for i := 0; i < 100; i++ {
		input := &models.CreateLinkInput{OriginalURL: fmt.Sprintf("https://example.com/%d", i)}
		link, err := linkService.CreateLink(ctx, "user-1", input)
		require.NoError(t, err)

		assert.False(t, codes[link.ShortCode], "duplicate short code: %s", link.ShortCode)
		codes[link.ShortCode] = true
	}
}

// TestLinkService_ListLinks проверяет, что пользователь видит только свои ссылки
func TestLinkService_ListLinks(t *testing.T) {
	linkService, _, _ := setupTestService()
	ctx := context.Background()

	for _, url := range []string{"https://a.com", "https://b.com"} {
		_, err := linkService.CreateLink(ctx, "user-1", &models.CreateLinkInput{OriginalURL: url})
		require.NoError(t, err)
	}
	_, err := linkService.CreateLink(ctx, "user-2", &models.CreateLinkInput{OriginalURL: "https://c.com"})
	require.NoError(t, err)

	links, err := linkService.ListLinks(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, links, 2)
	for _, link := range links {
		assert.Equal(t, "user-1", link.UserID)
	}

	links, err = linkService.ListLinks(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, links)
}

// TestLinkService_ResolveLink_CachesResult проверяет запись в кэш после чтения из БД
func TestLinkService_ResolveLink_CachesResult(t *testing.T) {
	linkService, _, cacheRepo := setupTestService()
	ctx := context.Background()

	created, err := linkService.CreateLink(ctx, "user-1", &models.CreateLinkInput{OriginalURL: "https://example.com"})
	require.NoError(t, err)

	_, err = cacheRepo.Get(ctx, created.ShortCode)
	assert.ErrorIs(t, err, repository.ErrCacheMiss)

	link, err := linkService.ResolveLink(ctx, created.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, created.ID, link.ID)

	cached, err := cacheRepo.Get(ctx, created.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, created.OriginalURL, cached.OriginalURL)
}

// TestLinkService_ResolveLink_NotFound проверяет обработку несуществующего кода
func TestLinkService_ResolveLink_NotFound(t *testing.T) {
	linkService, _, _ := setupTestService()

	_, err := linkService.ResolveLink(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, service.ErrLinkNotFound)
}

// TestLinkService_SetLinkActive проверяет, что выключенная ссылка не резолвится даже из кэша
func TestLinkService_SetLinkActive(t *testing.T) {
	linkService, _, cacheRepo := setupTestService()
	ctx := context.Background()

	created, err := linkService.CreateLink(ctx, "user-1", &models.CreateLinkInput{OriginalURL: "https://example.com"})
	require.NoError(t, err)
	_, err = linkService.ResolveLink(ctx, created.ShortCode)
	require.NoError(t, err)

	link, err := linkService.SetLinkActive(ctx, created.ID, false)
	require.NoError(t, err)
	assert.False(t, link.IsActive)

	_, err = cacheRepo.Get(ctx, created.ShortCode)
	assert.ErrorIs(t, err, repository.ErrCacheMiss)

	_, err = linkService.ResolveLink(ctx, created.ShortCode)
	assert.ErrorIs(t, err, service.ErrLinkNotFound)

	_, err = linkService.SetLinkActive(ctx, created.ID, true)
	require.NoError(t, err)
	_, err = linkService.ResolveLink(ctx, created.ShortCode)
	assert.NoError(t, err)

	_, err = linkService.SetLinkActive(ctx, "missing", true)
	assert.ErrorIs(t, err, service.ErrLinkNotFound)
}

// TestLinkService_ResolveLink_IgnoresStaleInactiveCache проверяет, что неактивная запись в кэше не используется
func TestLinkService_ResolveLink_IgnoresStaleInactiveCache(t *testing.T) {
	linkService, _, cacheRepo := setupTestService()
	ctx := context.Background()

	stale := &models.Link{ID: "l1", ShortCode: "stale1", OriginalURL: "https://example.com", IsActive: false}
	require.NoError(t, cacheRepo.Set(ctx, "stale1", stale, time.Hour))

	_, err := linkService.ResolveLink(ctx, "stale1")
	assert.ErrorIs(t, err, service.ErrLinkNotFound)
}

// TestLinkService_CreateLink_ConcurrentCustomCode проверяет, что параллельные запросы одного кода дают одну ссылку
func TestLinkService_CreateLink_ConcurrentCustomCode(t *testing.T) {
	linkService, linkRepo, _ := setupTestService()

	const requests = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	var created, taken int

	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			input := &models.CreateLinkInput{
				OriginalURL: fmt.Sprintf("https://example.com/%d", i),
				CustomCode:  strPtr("shared"),
			}
			_, err := linkService.CreateLink(context.Background(), "user-1", input)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, service.ErrCodeTaken):
				taken++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, requests-1, taken)
	assert.Equal(t, 1, linkRepo.Count())
}
