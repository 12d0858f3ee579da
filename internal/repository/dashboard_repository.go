package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nbwschool/admission-backend/internal/model"
)

// DashboardRepository handles admin dashboard data access.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// CountBy groups registrations by one dimension. dim is "status",
// "grade_level" or "program".
func (r *DashboardRepository) CountBy(ctx context.Context, dim string) (map[string]int, error) {
	var expr string
	switch dim {
	case "status":
		expr = "status"
	case "grade_level":
		expr = "grade_level"
	case "program":
		expr = "CASE WHEN is_special_ism THEN 'ism' ELSE 'regular' END"
	default:
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT `+expr+`, COUNT(*) FROM registrations GROUP BY 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			key   string
			count int
		)
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		counts[key] = count
	}
	return counts, rows.Err()
}

// GetRecent returns the latest registrations as summary rows.
func (r *DashboardRepository) GetRecent(ctx context.Context, limit int) ([]model.RegistrationSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id::text, title, first_name_th, last_name_th, grade_level, is_special_ism, status, created_at
		 FROM registrations
		 ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recent := []model.RegistrationSummary{}
	for rows.Next() {
		var (
			s                  model.RegistrationSummary
			title, first, last string
		)
		if err := rows.Scan(&s.ID, &title, &first, &last, &s.GradeLevel, &s.IsSpecialISM, &s.Status, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.ReferenceCode = model.ReferenceCode(s.ID)
		s.Name = (&model.Registration{Title: title, FirstNameTH: first, LastNameTH: last}).FullName()
		recent = append(recent, s)
	}
	return recent, rows.Err()
}
