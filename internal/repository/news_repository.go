package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nbwschool/admission-backend/internal/model"
)

// NewsRepository handles news data access.
type NewsRepository struct {
	pool *pgxpool.Pool
}

// NewNewsRepository creates a new NewsRepository.
func NewNewsRepository(pool *pgxpool.Pool) *NewsRepository {
	return &NewsRepository{pool: pool}
}

const newsColumns = `id, title, content, image_url, is_published, published_at, created_at, updated_at`

func scanNews(row pgx.Row) (*model.News, error) {
	n := &model.News{}
	err := row.Scan(&n.ID, &n.Title, &n.Content, &n.ImageURL, &n.IsPublished, &n.PublishedAt, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return n, nil
}

// List returns one page of news, newest first, and the total count.
func (r *NewsRepository) List(ctx context.Context, publishedOnly bool, page, perPage int) ([]model.News, int, error) {
	where := ""
	if publishedOnly {
		where = " WHERE is_published = TRUE"
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM news`+where).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := 0
	if page > 1 {
		offset = (page - 1) * perPage
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+newsColumns+` FROM news`+where+
			` ORDER BY COALESCE(published_at, created_at) DESC, id DESC LIMIT $1 OFFSET $2`,
		perPage, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []model.News{}
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *n)
	}
	return items, total, rows.Err()
}

// GetByID retrieves a news item by ID.
func (r *NewsRepository) GetByID(ctx context.Context, id int) (*model.News, error) {
	return scanNews(r.pool.QueryRow(ctx, `SELECT `+newsColumns+` FROM news WHERE id = $1`, id))
}

// Create inserts a news item. published_at is stamped when it is published.
func (r *NewsRepository) Create(ctx context.Context, n *model.News) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO news (title, content, image_url, is_published, published_at)
		 VALUES ($1, $2, $3, $4, CASE WHEN $4 THEN NOW() END)
		 RETURNING id, published_at, created_at, updated_at`,
		n.Title, n.Content, n.ImageURL, n.IsPublished,
	).Scan(&n.ID, &n.PublishedAt, &n.CreatedAt, &n.UpdatedAt)
}

// Update saves a news item. published_at is kept from the first publication.
func (r *NewsRepository) Update(ctx context.Context, n *model.News) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE news SET title = $1, content = $2, image_url = $3, is_published = $4,
			published_at = CASE WHEN $4 THEN COALESCE(published_at, NOW()) ELSE published_at END,
			updated_at = NOW()
		 WHERE id = $5
		 RETURNING published_at, created_at, updated_at`,
		n.Title, n.Content, n.ImageURL, n.IsPublished, n.ID,
	).Scan(&n.PublishedAt, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// Delete removes a news item and returns it.
func (r *NewsRepository) Delete(ctx context.Context, id int) (*model.News, error) {
	return scanNews(r.pool.QueryRow(ctx, `DELETE FROM news WHERE id = $1 RETURNING `+newsColumns, id))
}

