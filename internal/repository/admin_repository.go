package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nbwschool/admission-backend/internal/model"
)

var ErrDuplicateEmail = errors.New("admin with this email already exists")

// AdminRepository handles admin data access.
type AdminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository creates a new AdminRepository.
func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

const adminColumns = `id, email, name, password_hash, role, created_at, updated_at`

func scanAdmin(row pgx.Row) (*model.Admin, error) {
	a := &model.Admin{}
	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.Role, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// GetByID retrieves an admin by ID.
func (r *AdminRepository) GetByID(ctx context.Context, id int) (*model.Admin, error) {
	return scanAdmin(r.pool.QueryRow(ctx, `SELECT `+adminColumns+` FROM admins WHERE id = $1`, id))
}

// GetByEmail retrieves an admin by their unique email.
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	return scanAdmin(r.pool.QueryRow(ctx, `SELECT `+adminColumns+` FROM admins WHERE LOWER(email) = LOWER($1)`, email))
}

// List returns every admin ordered by name.
func (r *AdminRepository) List(ctx context.Context) ([]model.Admin, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+adminColumns+` FROM admins ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	admins := []model.Admin{}
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		admins = append(admins, *a)
	}
	return admins, rows.Err()
}

// Create inserts a new admin.
func (r *AdminRepository) Create(ctx context.Context, a *model.Admin) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO admins (email, name, password_hash, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		a.Email, a.Name, a.PasswordHash, string(a.Role),
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

// Update saves email, name and role. The password hash is updated only when
// non-empty.
func (r *AdminRepository) Update(ctx context.Context, a *model.Admin) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE admins
		 SET email = $1, name = $2, role = $3,
		     password_hash = COALESCE(NULLIF($4, ''), password_hash),
		     updated_at = NOW()
		 WHERE id = $5
		 RETURNING created_at, updated_at`,
		a.Email, a.Name, string(a.Role), a.PasswordHash, a.ID,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case isUniqueViolation(err):
		return ErrDuplicateEmail
	}
	return err
}

// UpdatePassword replaces the password hash.
func (r *AdminRepository) UpdatePassword(ctx context.Context, id int, hash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE admins SET password_hash = $1, updated_at = NOW() WHERE id = $2`, hash, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByRole returns how many admins hold role.
func (r *AdminRepository) CountByRole(ctx context.Context, role model.Role) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM admins WHERE role = $1`, string(role)).Scan(&n)
	return n, err
}

// Delete removes an admin.
func (r *AdminRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM admins WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
