package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/SergeiKhy/link-tracker/internal/models"
	"github.com/jackc/pgx/v5"
)

type LinkRepository interface {
	Create(ctx context.Context, link *models.Link) error
	GetByID(ctx context.Context, id string) (*models.Link, error)
	GetActiveByShortCode(ctx context.Context, code string) (*models.Link, error)
	ListByUser(ctx context.Context, userID string) ([]models.Link, error)
	SetActive(ctx context.Context, id string, active bool) error
}

const linkColumns = `id, user_id, original_url, short_code, title, is_active, created_at`

type linkRepository struct {
	db *PostgresDB
}

func NewLinkRepository(db *PostgresDB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) Create(ctx context.Context, link *models.Link) error {
	query := `
		INSERT INTO links (id, user_id, original_url, short_code, title, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		link.ID,
		link.UserID,
		link.OriginalURL,
		link.ShortCode,
		link.Title,
		link.IsActive,
		link.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrCodeExists
		}
		return fmt.Errorf("failed to create link: %w", err)
	}

	return nil
}

func (r *linkRepository) GetByID(ctx context.Context, id string) (*models.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *linkRepository) GetActiveByShortCode(ctx context.Context, code string) (*models.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE short_code = $1 AND is_active = TRUE`
	return r.getOne(ctx, query, code)
}

func (r *linkRepository) ListByUser(ctx context.Context, userID string) ([]models.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	links := []models.Link{}
	for rows.Next() {
		var link models.Link
		if err := scanLink(rows, &link); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}

	return links, nil
}

func (r *linkRepository) SetActive(ctx context.Context, id string, active bool) error {
	query := `UPDATE links SET is_active = $2 WHERE id = $1`

	result, err := r.db.Pool.Exec(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("failed to update link: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrLinkNotFound
	}

	return nil
}

func (r *linkRepository) getOne(ctx context.Context, query string, arg string) (*models.Link, error) {
	link := &models.Link{}
	if err := scanLink(r.db.Pool.QueryRow(ctx, query, arg), link); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	return link, nil
}

func scanLink(row pgx.Row, link *models.Link) error {
	return row.Scan(
		&link.ID,
		&link.UserID,
		&link.OriginalURL,
		&link.ShortCode,
		&link.Title,
		&link.IsActive,
		&link.CreatedAt,
	)
}
