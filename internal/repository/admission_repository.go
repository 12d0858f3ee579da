package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nbwschool/admission-backend/internal/model"
	"github.com/nbwschool/admission-backend/internal/registration"
)

// AdmissionRepository is the Admission Settings Store, one row per grade level.
type AdmissionRepository struct {
	pool *pgxpool.Pool
}

func NewAdmissionRepository(pool *pgxpool.Pool) *AdmissionRepository {
	return &AdmissionRepository{pool: pool}
}

const admissionColumns = `grade_level, is_open, allow_ism, allow_regular, open_at, close_at,
	schedule, requirements, announcement, updated_at`

func scanAdmission(row pgx.Row) (*model.AdmissionSettings, error) {
	s := &model.AdmissionSettings{}
	err := row.Scan(&s.GradeLevel, &s.IsOpen, &s.AllowISM, &s.AllowRegular, &s.OpenAt, &s.CloseAt,
		&s.Schedule, &s.Requirements, &s.Announcement, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByGrade returns the settings for level, inserting the defaults first if
// the row does not exist yet.
func (r *AdmissionRepository) GetByGrade(ctx context.Context, level registration.GradeLevel) (*model.AdmissionSettings, error) {
	s, err := scanAdmission(r.pool.QueryRow(ctx,
		`SELECT `+admissionColumns+` FROM admission_settings WHERE grade_level = $1`, string(level)))
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	def := model.DefaultAdmissionSettings(level)
	if _, err := r.pool.Exec(ctx,
		`INSERT INTO admission_settings (grade_level, is_open, allow_ism, allow_regular)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (grade_level) DO NOTHING`,
		string(level), def.IsOpen, def.AllowISM, def.AllowRegular); err != nil {
		return nil, err
	}
	return scanAdmission(r.pool.QueryRow(ctx,
		`SELECT `+admissionColumns+` FROM admission_settings WHERE grade_level = $1`, string(level)))
}

// Upsert stores s and refreshes its UpdatedAt.
func (r *AdmissionRepository) Upsert(ctx context.Context, s *model.AdmissionSettings) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO admission_settings (`+admissionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		 ON CONFLICT (grade_level) DO UPDATE SET
			is_open = EXCLUDED.is_open,
			allow_ism = EXCLUDED.allow_ism,
			allow_regular = EXCLUDED.allow_regular,
			open_at = EXCLUDED.open_at,
			close_at = EXCLUDED.close_at,
			schedule = EXCLUDED.schedule,
			requirements = EXCLUDED.requirements,
			announcement = EXCLUDED.announcement,
			updated_at = NOW()
		 RETURNING updated_at`,
		string(s.GradeLevel), s.IsOpen, s.AllowISM, s.AllowRegular, s.OpenAt, s.CloseAt,
		s.Schedule, s.Requirements, s.Announcement,
	).Scan(&s.UpdatedAt)
}
