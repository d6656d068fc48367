// Package app собирает конфиг, хранилище, сервисы и HTTP роутер
package app

import (
	"context"
	"fmt"

	"github.com/SergeiKhy/link-tracker/internal/config"
	"github.com/SergeiKhy/link-tracker/internal/handler"
	"github.com/SergeiKhy/link-tracker/internal/repository"
	"github.com/SergeiKhy/link-tracker/internal/repository/sqlite"
	"github.com/SergeiKhy/link-tracker/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Storage набор репозиториев выбранного бэкенда
type Storage struct {
	Users   repository.UserRepository
	Links   repository.LinkRepository
	Clicks  repository.ClickRepository
	migrate func(ctx context.Context) error
	closers []func()
}

func (s *Storage) Migrate(ctx context.Context) error {
	return s.migrate(ctx)
}

func (s *Storage) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// OpenStorage подключается к PostgreSQL или SQLite в зависимости от DB_DRIVER
func OpenStorage(cfg config.DBConfig, logger *zap.Logger) (*Storage, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("Connected to SQLite", zap.String("path", cfg.SQLitePath))

		return &Storage{
			Users:   sqlite.NewUserRepository(db),
			Links:   sqlite.NewLinkRepository(db),
			Clicks:  sqlite.NewClickRepository(db),
			migrate: func(context.Context) error { return db.Migrate() },
			closers: []func(){func() { _ = db.Close() }},
		}, nil

	case config.DriverPostgres:
		db, err := repository.NewPostgresDB(cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("Connected to PostgreSQL", zap.String("host", cfg.Host), zap.String("db", cfg.Name))

		return &Storage{
			Users:   repository.NewUserRepository(db),
			Links:   repository.NewLinkRepository(db),
			Clicks:  repository.NewClickRepository(db),
			migrate: db.Migrate,
			closers: []func(){db.Close},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// App собранное приложение: хранилище, сервисы и роутер
type App struct {
	Storage *Storage
	Links   service.LinkService
	Clicks  service.ClickProcessor
	Router  *gin.Engine

	closeCache func()
}

// New собирает приложение. Процессор кликов не запущен: это делает Start.
func New(cfg *config.Config, storage *Storage, logger *zap.Logger) (*App, error) {
	cache := repository.NewNoopCache()
	closeCache := func() {}
	if cfg.Redis.Enabled() {
		redis, err := repository.NewRedisClient(cfg.Redis)
		if err != nil {
			return nil, err
		}
		logger.Info("Connected to Redis")
		cache = repository.NewCacheRepository(redis)
		closeCache = func() { _ = redis.Close() }
	}

	tokens := service.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := service.NewAuthService(storage.Users, tokens, logger)
	linkService := service.NewLinkService(storage.Links, cache, cfg.Cache.TTL, logger)
	analyticsService := service.NewAnalyticsService(storage.Links, storage.Clicks)
	clickProcessor := service.NewClickProcessor(storage.Clicks, cfg.Clicks.Workers, cfg.Clicks.BufferSize, logger)

	router := handler.NewRouter(handler.Deps{
		Auth:      authService,
		Links:     linkService,
		Analytics: analyticsService,
		Clicks:    clickProcessor,
		BaseURL:   cfg.App.BaseURL,
		Logger:    logger,
	})

	return &App{
		Storage:    storage,
		Links:      linkService,
		Clicks:     clickProcessor,
		Router:     router,
		closeCache: closeCache,
	}, nil
}

func (a *App) Start() {
	a.Clicks.Start()
}

// Close дописывает очередь кликов до закрытия хранилища
func (a *App) Close() {
	a.Clicks.Stop()
	a.closeCache()
	a.Storage.Close()
}
