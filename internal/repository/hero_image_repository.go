package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nbwschool/admission-backend/internal/model"
)

// HeroImageRepository handles landing page carousel data access.
type HeroImageRepository struct {
	pool *pgxpool.Pool
}

func NewHeroImageRepository(pool *pgxpool.Pool) *HeroImageRepository {
	return &HeroImageRepository{pool: pool}
}

const heroColumns = `id, image_url, caption, link_url, sort_order, is_active, created_at, updated_at`

func scanHero(row pgx.Row) (*model.HeroImage, error) {
	h := &model.HeroImage{}
	err := row.Scan(&h.ID, &h.ImageURL, &h.Caption, &h.LinkURL, &h.SortOrder, &h.IsActive, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return h, nil
}

// List returns carousel slides in display order.
func (r *HeroImageRepository) List(ctx context.Context, activeOnly bool) ([]model.HeroImage, error) {
	query := `SELECT ` + heroColumns + ` FROM hero_images`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	rows, err := r.pool.Query(ctx, query+` ORDER BY sort_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := []model.HeroImage{}
	for rows.Next() {
		h, err := scanHero(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, *h)
	}
	return images, rows.Err()
}

func (r *HeroImageRepository) GetByID(ctx context.Context, id int) (*model.HeroImage, error) {
	return scanHero(r.pool.QueryRow(ctx, `SELECT `+heroColumns+` FROM hero_images WHERE id = $1`, id))
}

func (r *HeroImageRepository) Create(ctx context.Context, h *model.HeroImage) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO hero_images (image_url, caption, link_url, sort_order, is_active)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		h.ImageURL, h.Caption, h.LinkURL, h.SortOrder, h.IsActive,
	).Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt)
}

func (r *HeroImageRepository) Update(ctx context.Context, h *model.HeroImage) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE hero_images SET image_url = $1, caption = $2, link_url = $3, sort_order = $4,
			is_active = $5, updated_at = NOW()
		 WHERE id = $6
		 RETURNING created_at, updated_at`,
		h.ImageURL, h.Caption, h.LinkURL, h.SortOrder, h.IsActive, h.ID,
	).Scan(&h.CreatedAt, &h.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// Delete removes a slide and returns it so its image can be cleaned up.
func (r *HeroImageRepository) Delete(ctx context.Context, id int) (*model.HeroImage, error) {
	return scanHero(r.pool.QueryRow(ctx, `DELETE FROM hero_images WHERE id = $1 RETURNING `+heroColumns, id))
}
