// Package sqlite репозитории поверх встроенной SQLite через GORM.
// Используется для локальной разработки и e2e тестов, в production PostgreSQL.
package sqlite

import (
	"errors"
	"fmt"
	"strings"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DB struct {
	Gorm *gorm.DB
}

type userRow struct {
	ID           string    `gorm:"primaryKey"`
	Email        string    `gorm:"not null;uniqueIndex:idx_users_email"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (userRow) TableName() string { return "users" }

type linkRow struct {
	ID          string    `gorm:"primaryKey"`
	UserID      string    `gorm:"not null;index:idx_links_user_id"`
	User        userRow   `gorm:"foreignKey:UserID;references:ID"`
	OriginalURL string    `gorm:"not null"`
	ShortCode   string    `gorm:"not null;uniqueIndex:idx_links_short_code"`
	Title       *string
	IsActive    bool      `gorm:"not null"` // без default: gorm пропустил бы false при вставке
	CreatedAt   time.Time `gorm:"not null;index"`
}

func (linkRow) TableName() string { return "links" }

type clickRow struct {
	ID        string    `gorm:"primaryKey"`
	LinkID    string    `gorm:"not null;index:idx_clicks_link_id"`
	Link      linkRow   `gorm:"foreignKey:LinkID;references:ID"`
	UserAgent *string
	Referer   *string
	Country   *string
	CreatedAt time.Time `gorm:"not null"`
}

func (clickRow) TableName() string { return "clicks" }

// Open открывает (или создаёт) файл базы. Внешние ключи включаются прагмой,
// иначе SQLite их не проверяет.
func Open(path string) (*DB, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	// Один писатель: воркеры кликов и HTTP-запросы иначе ловят SQLITE_BUSY
	sqlDB.SetMaxOpenConns(1)

	return &DB{Gorm: db}, nil
}

func (db *DB) Migrate() error {
	if err := db.Gorm.AutoMigrate(&userRow{}, &linkRow{}, &clickRow{}); err != nil {
		return fmt.Errorf("failed to migrate sqlite schema: %w", err)
	}
	return nil
}

func (db *DB) Close() error {
	sqlDB, err := db.Gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}
